package server

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/sharepad/sharepad/internal/application/config"
	"github.com/sharepad/sharepad/internal/infra/ports/http/handlers"
	"github.com/sharepad/sharepad/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	roomHandler *handlers.RoomHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
		}

		v1 := api.Group("/v1")
		{
			// The directory listing is public; everything else needs
			// a valid token.
			v1.GET("/rooms", roomHandler.ListRoomsHandler)

			auth := v1.Group("", middleware.JWTAuthMiddleware(cfg.JWTSecret))
			{
				auth.GET("/me", authHandler.GetMe)

				auth.POST("/rooms", roomHandler.CreateRoomHandler)
				auth.GET("/rooms/:id", roomHandler.GetRoomHandler)
				auth.PATCH("/rooms/:id", roomHandler.UpdateRoomHandler)
				auth.DELETE("/rooms/:id", roomHandler.DeleteRoomHandler)

				auth.PATCH("/rooms/enter/:id", roomHandler.EnterRoomHandler)
				auth.PATCH("/rooms/leave/:id", roomHandler.LeaveRoomHandler)
				auth.GET("/rooms/verify/:id", roomHandler.VerifyUserHandler)

				auth.GET("/rooms/:id/ws", wsHandler.Handle)
			}
		}
	}

	e.Static("/", "web")

	return e
}
