package routes

import (
	"github.com/radiquiz/backend/handlers"
	"github.com/radiquiz/backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func AccountRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	me := api.Group("/me", middleware.Protected())
	me.Get("/", handlers.GetMe)
	me.Put("/", handlers.UpdateMe)
	me.Delete("/", handlers.DeleteAccount)
	me.Get("/export", handlers.ExportWorkspace)

	me.Get("/defaults", handlers.GetDefaults)
	me.Put("/defaults", handlers.UpdateDefaults)

	me.Post("/email-change", handlers.RequestEmailChange)
	me.Post("/email-change/verify", handlers.VerifyEmailChange)
	me.Post("/password", handlers.ChangePassword)
}
