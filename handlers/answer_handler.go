package handlers

import (
	"errors"
	"strings"

	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func findQuestionInQuiz(c *fiber.Ctx, quiz *models.Quiz) (*models.Question, error) {
	questionID, err := uuid.Parse(c.Params("questionUuid"))
	if err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	var question models.Question
	err = database.DB.Where("id = ? AND quiz_id = ?", questionID, quiz.ID).First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load question"})
	}
	return &question, nil
}

// answerEditAllowed gates answer mutations on locked quizzes: only open
// questions stay editable, so corrections stay possible after printing.
func answerEditAllowed(quiz *models.Quiz, question *models.Question) bool {
	if !quiz.Locked() {
		return true
	}
	return question.QuestionType == models.QuestionTypeOpen
}

// clearSiblingCorrect reports whether marking an answer correct must clear the
// correct flag on the question's other answers. Simple questions allow exactly
// one correct answer.
func clearSiblingCorrect(questionType string, settingCorrect bool) bool {
	return settingCorrect && questionType == models.QuestionTypeSimple
}

// CreateAnswer appends an answer at the next answer_order.
func CreateAnswer(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	question, handled := findQuestionInQuiz(c, quiz)
	if question == nil {
		return handled
	}
	if !answerEditAllowed(quiz, question) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	type Request struct {
		AnswerOption string `json:"answer_option"`
		Correct      bool   `json:"correct"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if strings.TrimSpace(req.AnswerOption) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Answer text is required."})
	}

	answer := models.Answer{
		QuestionID:   question.ID,
		AnswerOption: req.AnswerOption,
		Correct:      req.Correct,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var maxOrder int
		tx.Model(&models.Answer{}).Where("question_id = ?", question.ID).
			Select("COALESCE(MAX(answer_order), 0)").Scan(&maxOrder)
		answer.AnswerOrder = maxOrder + 1
		if err := tx.Create(&answer).Error; err != nil {
			return err
		}
		if clearSiblingCorrect(question.QuestionType, answer.Correct) {
			return tx.Model(&models.Answer{}).
				Where("question_id = ? AND id <> ?", question.ID, answer.ID).
				Update("correct", false).Error
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create answer"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"answer": answer})
}

// UpdateAnswer applies a partial update. Setting correct=true on a simple
// question clears the sibling flags in the same transaction.
func UpdateAnswer(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	question, handled := findQuestionInQuiz(c, quiz)
	if question == nil {
		return handled
	}
	if !answerEditAllowed(quiz, question) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	answerID, err := uuid.Parse(c.Params("answerUuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Answer not found"})
	}
	var answer models.Answer
	err = database.DB.Where("id = ? AND question_id = ?", answerID, question.ID).First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Answer not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load answer"})
	}

	type Request struct {
		AnswerOption *string `json:"answer_option"`
		Correct      *bool   `json:"correct"`
		AnswerOrder  *int    `json:"answer_order"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	updates := map[string]interface{}{}
	if req.AnswerOption != nil {
		if strings.TrimSpace(*req.AnswerOption) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Answer text cannot be empty."})
		}
		updates["answer_option"] = *req.AnswerOption
	}
	if req.Correct != nil {
		updates["correct"] = *req.Correct
	}
	if req.AnswerOrder != nil {
		updates["answer_order"] = *req.AnswerOrder
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No fields to update."})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&answer).Updates(updates).Error; err != nil {
			return err
		}
		if req.Correct != nil && clearSiblingCorrect(question.QuestionType, *req.Correct) {
			return tx.Model(&models.Answer{}).
				Where("question_id = ? AND id <> ?", question.ID, answer.ID).
				Update("correct", false).Error
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update answer"})
	}

	database.DB.Where("id = ?", answer.ID).First(&answer)
	return c.JSON(fiber.Map{"answer": answer})
}

// DeleteAnswer removes an answer and renumbers the rest from 1.
func DeleteAnswer(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	question, handled := findQuestionInQuiz(c, quiz)
	if question == nil {
		return handled
	}
	if !answerEditAllowed(quiz, question) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	answerID, err := uuid.Parse(c.Params("answerUuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Answer not found"})
	}

	var answers []models.Answer
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND question_id = ?", answerID, question.ID).Delete(&models.Answer{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("question_id = ?", question.ID).Order("answer_order ASC").Find(&answers).Error; err != nil {
			return err
		}
		for i := range answers {
			if answers[i].AnswerOrder != i+1 {
				answers[i].AnswerOrder = i + 1
				if err := tx.Model(&answers[i]).Update("answer_order", i+1).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Answer not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete answer"})
	}

	if answers == nil {
		answers = []models.Answer{}
	}
	return c.JSON(fiber.Map{"answers": answers})
}

// ReorderAnswers applies a client-supplied total order over a question's
// answers.
func ReorderAnswers(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	question, handled := findQuestionInQuiz(c, quiz)
	if question == nil {
		return handled
	}
	if !answerEditAllowed(quiz, question) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	type Request struct {
		AnswerUUIDs []string `json:"answer_uuids"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var existing []uuid.UUID
	if err := database.DB.Model(&models.Answer{}).Where("question_id = ?", question.ID).Pluck("id", &existing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load answers"})
	}
	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		known[id.String()] = true
	}
	seen := make(map[string]bool, len(req.AnswerUUIDs))
	for _, answerUUID := range req.AnswerUUIDs {
		if !known[answerUUID] || seen[answerUUID] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "answer_uuids must match the question's answers."})
		}
		seen[answerUUID] = true
	}
	if len(seen) != len(known) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "answer_uuids must match the question's answers."})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		for i, answerUUID := range req.AnswerUUIDs {
			answerID, err := uuid.Parse(answerUUID)
			if err != nil {
				return err
			}
			err = tx.Model(&models.Answer{}).Where("id = ?", answerID).
				Update("answer_order", i+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reorder answers"})
	}

	var answers []models.Answer
	database.DB.Where("question_id = ?", question.ID).Order("answer_order ASC").Find(&answers)
	return c.JSON(fiber.Map{"answers": answers})
}
