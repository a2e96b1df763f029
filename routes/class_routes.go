package routes

import (
	"github.com/radiquiz/backend/handlers"
	"github.com/radiquiz/backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func ClassRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	classes := api.Group("/classes", middleware.Protected())
	classes.Get("/", handlers.GetClasses)
	classes.Post("/", handlers.CreateClass)
	classes.Get("/:listUuid", handlers.GetClass)
	classes.Put("/:listUuid", handlers.UpdateClass)
	classes.Delete("/:listUuid", handlers.DeleteClass)

	classes.Put("/:listUuid/students", handlers.ReplaceStudents)
	classes.Post("/:listUuid/students/import", handlers.ImportStudents)
	classes.Get("/:listUuid/students", handlers.DownloadStudents)
}
