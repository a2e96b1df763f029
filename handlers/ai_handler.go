package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/models"
	"github.com/radiquiz/backend/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Generator produces AI question drafts. Swapped out in tests.
var Generator services.QuestionGenerator

func generator() services.QuestionGenerator {
	if Generator == nil {
		Generator = services.NewQuestionGenerator()
	}
	return Generator
}

// GenerateQuestions asks the model for a batch of questions and inserts the
// usable ones under the resolved subject.
func GenerateQuestions(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if quiz.Locked() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	type Request struct {
		Topic               string `json:"topic"`
		Language            string `json:"language"`
		Difficulty          string `json:"difficulty"`
		QuestionType        string `json:"question_type"`
		Quantity            int    `json:"quantity"`
		SupplementalContext string `json:"supplemental_context"`
		SubjectUUID         string `json:"subject_uuid"`
		SubjectTitle        string `json:"subject_title"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	req.Topic = strings.TrimSpace(req.Topic)
	req.Language = strings.TrimSpace(req.Language)
	req.Difficulty = strings.TrimSpace(req.Difficulty)
	if req.Topic == "" || req.Language == "" || req.Difficulty == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "topic, language and difficulty are required."})
	}
	if !validQuestionType(req.QuestionType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid question type."})
	}
	if req.Quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity must be a positive integer."})
	}

	subjectUUID, subjectTitle, message := validateSubjectChoice(req.SubjectUUID, req.SubjectTitle)
	if message != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
	}
	if subjectUUID != "" {
		// Reject unknown targets before spending a model call.
		id, err := uuid.Parse(subjectUUID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown subject_uuid."})
		}
		var count int64
		database.DB.Model(&models.Subject{}).Where("id = ? AND quiz_id = ?", id, quiz.ID).Count(&count)
		if count == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown subject_uuid."})
		}
	}

	raw, err := generator().GenerateQuestions(c.Context(), services.GenerationRequest{
		Topic:               req.Topic,
		Language:            req.Language,
		Difficulty:          req.Difficulty,
		QuestionType:        req.QuestionType,
		Quantity:            req.Quantity,
		SupplementalContext: req.SupplementalContext,
	})
	if err != nil {
		log.Printf("AI generation failed for quiz %s: %v", quiz.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "AI generation failed."})
	}

	normalized := services.NormalizeGenerated(raw, req.QuestionType, nil)
	if len(normalized) == 0 {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "AI generation produced no usable questions."})
	}

	var inserted []models.Question
	var subjectStatus int
	var subjectMessage string
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// The subject is created here, after generation succeeded, so a
		// failed run never leaves an empty subject in the tree.
		subject, status, msg := resolveSubjectTx(tx, quiz.ID, subjectUUID, subjectTitle)
		if subject == nil {
			subjectStatus, subjectMessage = status, msg
			return errSubjectResolution
		}

		var maxNumber int
		tx.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).
			Select("COALESCE(MAX(question_number), 0)").Scan(&maxNumber)

		for _, item := range normalized {
			maxNumber++
			question := models.Question{
				QuizID:         quiz.ID,
				SubjectID:      subject.ID,
				QuestionText:   item.QuestionText,
				QuestionType:   item.QuestionType,
				Points:         item.Points,
				QuestionNumber: maxNumber,
				NumberOfLines:  item.NumberOfLines,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			question.Answers = []models.Answer{}
			for i, option := range item.Answers {
				answer := models.Answer{
					QuestionID:   question.ID,
					AnswerOption: option.Text,
					Correct:      option.IsCorrect,
					AnswerOrder:  i + 1,
				}
				if err := tx.Create(&answer).Error; err != nil {
					return err
				}
				question.Answers = append(question.Answers, answer)
			}
			inserted = append(inserted, question)
		}
		return renumberQuiz(tx, quiz.ID)
	})
	if errors.Is(err, errSubjectResolution) {
		return c.Status(subjectStatus).JSON(fiber.Map{"error": subjectMessage})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save generated questions"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"questions": inserted})
}
