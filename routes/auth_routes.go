package routes

import (
	"github.com/radiquiz/backend/handlers"
	"github.com/radiquiz/backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/register/verify", handlers.VerifyRegistration)
	auth.Post("/login", handlers.LoginUser)
	// Registration and login converge on the same upsert for Google accounts.
	auth.Post("/register/google", handlers.GoogleAuth)
	auth.Post("/login/google", handlers.GoogleAuth)
	auth.Post("/forgot-password", handlers.ForgotPassword)
	auth.Post("/reset-password", handlers.ResetPassword)

	auth.Get("/session", middleware.Protected(), handlers.GetSession)
	auth.Post("/session/refresh", middleware.Protected(), handlers.RefreshSession)
	auth.Post("/logout", middleware.Protected(), handlers.Logout)
}
