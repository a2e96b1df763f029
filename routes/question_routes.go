package routes

import (
	"github.com/radiquiz/backend/handlers"
	"github.com/radiquiz/backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func QuestionRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	quiz := api.Group("/quizzes/:quizUuid", middleware.Protected())

	quiz.Get("/questions", handlers.GetQuestions)
	quiz.Post("/questions", handlers.CreateQuestion)
	quiz.Patch("/questions/order", handlers.ReorderQuestions)
	quiz.Patch("/subjects/order", handlers.ReorderSubjects)
	quiz.Put("/questions/:questionUuid", handlers.UpdateQuestion)
	quiz.Delete("/questions/:questionUuid", handlers.DeleteQuestion)
	quiz.Post("/questions/:questionUuid/move", handlers.MoveQuestion)
	quiz.Post("/subjects/:subjectUuid/move", handlers.MoveSubject)

	quiz.Post("/questions/:questionUuid/answers", handlers.CreateAnswer)
	quiz.Patch("/questions/:questionUuid/answers/order", handlers.ReorderAnswers)
	quiz.Put("/questions/:questionUuid/answers/:answerUuid", handlers.UpdateAnswer)
	quiz.Delete("/questions/:questionUuid/answers/:answerUuid", handlers.DeleteAnswer)

	quiz.Post("/questions/:questionUuid/illustration", handlers.UploadIllustration)
	quiz.Delete("/questions/:questionUuid/illustration", handlers.DeleteIllustration)
	quiz.Get("/illustrations/:filename", handlers.ServeIllustration)

	quiz.Post("/ai/questions", handlers.GenerateQuestions)
}
