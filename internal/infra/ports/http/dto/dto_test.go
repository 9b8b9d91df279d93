package dto

import (
	"strings"
	"testing"
)

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"valid", RegisterRequest{Username: "alice", Email: "a@b.io", Password: "secret1"}, false},
		{"short username", RegisterRequest{Username: "al", Email: "a@b.io", Password: "secret1"}, true},
		{"bad email", RegisterRequest{Username: "alice", Email: "nonsense", Password: "secret1"}, true},
		{"short password", RegisterRequest{Username: "alice", Email: "a@b.io", Password: "pw"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateRoomRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRoomRequest
		wantErr bool
	}{
		{"valid", CreateRoomRequest{Name: "pairing", MaxUsers: 4}, false},
		{"empty name", CreateRoomRequest{Name: "", MaxUsers: 4}, true},
		{"name too long", CreateRoomRequest{Name: strings.Repeat("x", 33), MaxUsers: 4}, true},
		{"zero capacity", CreateRoomRequest{Name: "pairing", MaxUsers: 0}, true},
		{"capacity over limit", CreateRoomRequest{Name: "pairing", MaxUsers: 33}, true},
		{"capacity at limit", CreateRoomRequest{Name: "pairing", MaxUsers: 32}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
