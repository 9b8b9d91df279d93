package main

import "github.com/sharepad/sharepad/cmd"

func main() {
	cmd.Execute()
}
