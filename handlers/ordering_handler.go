package handlers

import (
	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/models"
	"github.com/radiquiz/backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// currentLayout reads the quiz's layout in display order for the pure move
// and validation functions.
func currentLayout(quizID uuid.UUID) ([]services.SubjectLayout, error) {
	var subjects []models.Subject
	err := database.DB.Where("quiz_id = ?", quizID).Order("sort_order ASC").Find(&subjects).Error
	if err != nil {
		return nil, err
	}
	var questions []models.Question
	err = database.DB.Where("quiz_id = ?", quizID).Order("question_number ASC").Find(&questions).Error
	if err != nil {
		return nil, err
	}

	layout := make([]services.SubjectLayout, len(subjects))
	index := make(map[uuid.UUID]int, len(subjects))
	for i, subject := range subjects {
		layout[i] = services.SubjectLayout{SubjectUUID: subject.ID.String()}
		index[subject.ID] = i
	}
	for _, question := range questions {
		i, ok := index[question.SubjectID]
		if !ok {
			continue
		}
		layout[i].QuestionUUIDs = append(layout[i].QuestionUUIDs, question.ID.String())
	}
	return layout, nil
}

// applyLayout persists a full layout in one transaction: subject membership,
// then sequential global question numbers.
func applyLayout(quizID uuid.UUID, layout []services.SubjectLayout) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		number := 1
		for _, subject := range layout {
			subjectID, err := uuid.Parse(subject.SubjectUUID)
			if err != nil {
				return err
			}
			for _, questionUUID := range subject.QuestionUUIDs {
				questionID, err := uuid.Parse(questionUUID)
				if err != nil {
					return err
				}
				err = tx.Model(&models.Question{}).Where("id = ?", questionID).
					Updates(map[string]interface{}{
						"subject_id":      subjectID,
						"question_number": number,
					}).Error
				if err != nil {
					return err
				}
				number++
			}
		}
		return tx.Model(&models.Quiz{}).Where("id = ?", quizID).
			Update("number_of_questions", number-1).Error
	})
}

func quizSubjectSet(quizID uuid.UUID) (map[string]bool, error) {
	var ids []uuid.UUID
	err := database.DB.Model(&models.Subject{}).Where("quiz_id = ?", quizID).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id.String()] = true
	}
	return set, nil
}

func quizQuestionSet(quizID uuid.UUID) (map[string]bool, error) {
	var ids []uuid.UUID
	err := database.DB.Model(&models.Question{}).Where("quiz_id = ?", quizID).Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id.String()] = true
	}
	return set, nil
}

// ReorderQuestions applies a client-supplied full layout.
func ReorderQuestions(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if quiz.Locked() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	type SubjectPayload struct {
		SubjectUUID   string   `json:"subject_uuid"`
		QuestionUUIDs []string `json:"question_uuids"`
	}
	type Request struct {
		Subjects []SubjectPayload `json:"subjects"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	layout := make([]services.SubjectLayout, len(req.Subjects))
	for i, subject := range req.Subjects {
		layout[i] = services.SubjectLayout{
			SubjectUUID:   subject.SubjectUUID,
			QuestionUUIDs: subject.QuestionUUIDs,
		}
	}

	knownSubjects, err := quizSubjectSet(quiz.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load subjects"})
	}
	existingQuestions, err := quizQuestionSet(quiz.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load questions"})
	}
	if err := services.ValidateLayout(layout, knownSubjects, existingQuestions); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := applyLayout(quiz.ID, layout); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reorder questions"})
	}
	return treeResponse(c, quiz, fiber.StatusOK)
}

// ReorderSubjects applies a client-supplied subject order.
func ReorderSubjects(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if quiz.Locked() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	type Request struct {
		SubjectUUIDs []string `json:"subject_uuids"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	knownSubjects, err := quizSubjectSet(quiz.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load subjects"})
	}
	if err := services.ValidateSubjectOrder(req.SubjectUUIDs, knownSubjects); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := persistSubjectOrder(quiz.ID, req.SubjectUUIDs); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reorder subjects"})
	}
	return treeResponse(c, quiz, fiber.StatusOK)
}

func persistSubjectOrder(quizID uuid.UUID, order []string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		for i, subjectUUID := range order {
			subjectID, err := uuid.Parse(subjectUUID)
			if err != nil {
				return err
			}
			err = tx.Model(&models.Subject{}).Where("id = ? AND quiz_id = ?", subjectID, quizID).
				Update("sort_order", i).Error
			if err != nil {
				return err
			}
		}
		return renumberQuiz(tx, quizID)
	})
}

// parseDirection reads the {direction} body. On failure it writes the 400
// response and returns ok=false.
func parseDirection(c *fiber.Ctx) (services.Direction, bool, error) {
	type Request struct {
		Direction string `json:"direction"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return "", false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	dir := services.Direction(req.Direction)
	if !dir.Valid() {
		return "", false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "direction must be 'up' or 'down'."})
	}
	return dir, true, nil
}

// MoveQuestion shifts a question one slot up or down, migrating across
// subject boundaries. Boundary moves return the unchanged tree.
func MoveQuestion(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if quiz.Locked() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	dir, ok, resp := parseDirection(c)
	if !ok {
		return resp
	}

	layout, err := currentLayout(quiz.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load questions"})
	}

	questionUUID := c.Params("questionUuid")
	if _, _, ok := locateQuestionParam(layout, questionUUID); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}

	next, moved := services.MoveQuestion(layout, questionUUID, dir)
	if moved {
		if err := applyLayout(quiz.ID, next); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to move question"})
		}
	}
	return treeResponse(c, quiz, fiber.StatusOK)
}

func locateQuestionParam(layout []services.SubjectLayout, questionUUID string) (int, int, bool) {
	for si, subject := range layout {
		for qi, id := range subject.QuestionUUIDs {
			if id == questionUUID {
				return si, qi, true
			}
		}
	}
	return 0, 0, false
}

// MoveSubject swaps a subject with its neighbor. Boundary moves return the
// unchanged tree.
func MoveSubject(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if quiz.Locked() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	dir, ok, resp := parseDirection(c)
	if !ok {
		return resp
	}

	var subjects []models.Subject
	err := database.DB.Where("quiz_id = ?", quiz.ID).Order("sort_order ASC").Find(&subjects).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load subjects"})
	}
	order := make([]string, len(subjects))
	found := false
	subjectUUID := c.Params("subjectUuid")
	for i, subject := range subjects {
		order[i] = subject.ID.String()
		if order[i] == subjectUUID {
			found = true
		}
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	next, moved := services.MoveSubject(order, subjectUUID, dir)
	if moved {
		if err := persistSubjectOrder(quiz.ID, next); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to move subject"})
		}
	}
	return treeResponse(c, quiz, fiber.StatusOK)
}
