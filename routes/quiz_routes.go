package routes

import (
	"github.com/radiquiz/backend/handlers"
	"github.com/radiquiz/backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func QuizRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	quizzes := api.Group("/quizzes", middleware.Protected())
	quizzes.Get("/", handlers.GetQuizzes)
	quizzes.Post("/", handlers.CreateQuiz)
	quizzes.Get("/:quizUuid", handlers.GetQuiz)
	quizzes.Put("/:quizUuid", handlers.UpdateQuiz)
	quizzes.Delete("/:quizUuid", handlers.DeleteQuiz)
	quizzes.Post("/:quizUuid/duplicate", handlers.DuplicateQuiz)
	quizzes.Post("/:quizUuid/lock", handlers.LockQuiz)
	quizzes.Post("/:quizUuid/unlock", handlers.UnlockQuiz)
}
