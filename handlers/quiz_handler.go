package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/middleware"
	"github.com/radiquiz/backend/models"
	"github.com/radiquiz/backend/workspace"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// findQuizForUser loads a quiz by path param, scoped to the authenticated
// owner. Unknown and foreign quizzes are indistinguishable on purpose.
func findQuizForUser(c *fiber.Ctx, param string) (*models.Quiz, error) {
	quizID, err := uuid.Parse(c.Params(param))
	if err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Quiz not found"})
	}

	user := middleware.CurrentUser(c)
	var quiz models.Quiz
	err = database.DB.Where("id = ? AND user_id = ?", quizID, user.ID).First(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Quiz not found"})
	}
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load quiz"})
	}
	return &quiz, nil
}

// GetQuizzes lists the user's quizzes, newest first.
func GetQuizzes(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var quizzes []models.Quiz
	err := database.DB.Where("user_id = ?", user.ID).
		Order("creation_date DESC").
		Find(&quizzes).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load quizzes"})
	}
	return c.JSON(fiber.Map{"quizzes": quizzes})
}

// CreateQuiz creates a quiz seeded from the user's defaults record.
func CreateQuiz(c *fiber.Ctx) error {
	type Request struct {
		QuizTitle string `json:"quiz_title"`
	}
	var req Request
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
	}

	title := strings.TrimSpace(req.QuizTitle)
	if title == "" {
		title = "Nouveau quiz"
	}

	user := middleware.CurrentUser(c)
	defaults := ensureUserDefaults(user.ID)

	quiz := models.Quiz{
		UserID:              user.ID,
		QuizTitle:           title,
		CreationDate:        time.Now().UTC(),
		QuizState:           models.QuizStateUnlocked,
		IDCoding:            "8",
		InstitutionName:     defaults.InstitutionName,
		StudentInstructions: defaults.StudentInstructions,
		CodingExplanation:   defaults.CodingExplanation,
		EmailSubject:        defaults.EmailSubject,
		EmailBody:           defaults.EmailBody,
		QuizLanguage:        defaults.QuizLanguage,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}
		subject := models.Subject{
			QuizID:       quiz.ID,
			SubjectTitle: models.DefaultSubjectTitle,
			SortOrder:    0,
		}
		return tx.Create(&subject).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create quiz"})
	}

	workspace.QuizDir(user.ID.String(), quiz.ID.String())
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"quiz": quiz})
}

// GetQuiz returns a single quiz's metadata.
func GetQuiz(c *fiber.Ctx) error {
	quiz, err := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return err
	}
	return c.JSON(fiber.Map{"quiz": quiz})
}

type UpdateQuizRequest struct {
	QuizTitle           *string `json:"quiz_title"`
	IDCoding            *string `json:"id_coding"`
	InstitutionName     *string `json:"institution_name"`
	StudentInstructions *string `json:"student_instructions"`
	CodingExplanation   *string `json:"coding_explanation"`
	EmailSubject        *string `json:"email_subject"`
	EmailBody           *string `json:"email_body"`
	ClassTitle          *string `json:"class_title"`
	DateOfQuiz          *string `json:"date_of_quiz"`
	Duration            *string `json:"duration"`
	QuizLanguage        *string `json:"quiz_language"`
	RandomQuestionOrder *bool   `json:"random_question_order"`
	RandomAnswerOrder   *bool   `json:"random_answer_order"`
	TwoUpPrinting       *bool   `json:"two_up_printing"`
}

func quizUpdatesFromRequest(req UpdateQuizRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	setString := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	setBool := func(column string, value *bool) {
		if value != nil {
			updates[column] = *value
		}
	}
	setString("quiz_title", req.QuizTitle)
	setString("id_coding", req.IDCoding)
	setString("institution_name", req.InstitutionName)
	setString("student_instructions", req.StudentInstructions)
	setString("coding_explanation", req.CodingExplanation)
	setString("email_subject", req.EmailSubject)
	setString("email_body", req.EmailBody)
	setString("class_title", req.ClassTitle)
	setString("date_of_quiz", req.DateOfQuiz)
	setString("duration", req.Duration)
	setString("quiz_language", req.QuizLanguage)
	setBool("random_question_order", req.RandomQuestionOrder)
	setBool("random_answer_order", req.RandomAnswerOrder)
	setBool("two_up_printing", req.TwoUpPrinting)
	return updates
}

// UpdateQuiz partially updates quiz metadata.
func UpdateQuiz(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}

	var req UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	updates := quizUpdatesFromRequest(req)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No fields to update."})
	}
	if title, ok := updates["quiz_title"]; ok && strings.TrimSpace(title.(string)) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quiz title cannot be empty."})
	}

	if err := database.DB.Model(quiz).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update quiz"})
	}
	database.DB.Where("id = ?", quiz.ID).First(quiz)
	return c.JSON(fiber.Map{"quiz": quiz})
}

// DeleteQuiz removes the quiz with its whole subtree and workspace files.
func DeleteQuiz(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var questionIDs []uuid.UUID
		if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.Subject{}).Error; err != nil {
			return err
		}
		return tx.Delete(quiz).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete quiz"})
	}

	user := middleware.CurrentUser(c)
	workspace.RemoveQuizDir(user.ID.String(), quiz.ID.String())
	return c.JSON(fiber.Map{"message": "Quiz deleted."})
}

// DuplicateQuiz deep-clones a quiz: row, subjects, questions, answers, and
// the illustration files on disk. The copy always starts unlocked.
func DuplicateQuiz(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}

	type Request struct {
		QuizTitle string `json:"quiz_title"`
	}
	var req Request
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
	}
	title := strings.TrimSpace(req.QuizTitle)
	if title == "" {
		title = quiz.QuizTitle + " (copie)"
	}

	clone := *quiz
	clone.QuizTitle = title
	clone.CreationDate = time.Now().UTC()
	clone.QuizState = models.QuizStateUnlocked
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		clone.ID = uuid.New()
		if err := tx.Create(&clone).Error; err != nil {
			return err
		}

		var subjects []models.Subject
		if err := tx.Where("quiz_id = ?", quiz.ID).Order("sort_order ASC").Find(&subjects).Error; err != nil {
			return err
		}
		subjectMap := make(map[uuid.UUID]uuid.UUID, len(subjects))
		for _, subject := range subjects {
			newSubject := models.Subject{
				ID:           uuid.New(),
				QuizID:       clone.ID,
				SubjectTitle: subject.SubjectTitle,
				SortOrder:    subject.SortOrder,
			}
			if err := tx.Create(&newSubject).Error; err != nil {
				return err
			}
			subjectMap[subject.ID] = newSubject.ID
		}

		var questions []models.Question
		if err := tx.Where("quiz_id = ?", quiz.ID).Order("question_number ASC").Find(&questions).Error; err != nil {
			return err
		}
		for _, question := range questions {
			newQuestion := question
			newQuestion.ID = uuid.New()
			newQuestion.QuizID = clone.ID
			newQuestion.SubjectID = subjectMap[question.SubjectID]
			newQuestion.CreatedAt = time.Time{}
			newQuestion.UpdatedAt = time.Time{}
			newQuestion.Answers = nil
			if err := tx.Create(&newQuestion).Error; err != nil {
				return err
			}

			var answers []models.Answer
			if err := tx.Where("question_id = ?", question.ID).Order("answer_order ASC").Find(&answers).Error; err != nil {
				return err
			}
			for _, answer := range answers {
				newAnswer := answer
				newAnswer.ID = uuid.New()
				newAnswer.QuestionID = newQuestion.ID
				newAnswer.CreatedAt = time.Time{}
				newAnswer.UpdatedAt = time.Time{}
				if err := tx.Create(&newAnswer).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to duplicate quiz"})
	}

	user := middleware.CurrentUser(c)
	workspace.CopyQuizDir(user.ID.String(), quiz.ID.String(), clone.ID.String())
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"quiz": clone})
}

// LockQuiz marks the quiz read-only for the AMC print pipeline.
func LockQuiz(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if quiz.Locked() {
		return c.JSON(fiber.Map{"message": "Quiz is already locked.", "quiz": quiz})
	}
	if err := database.DB.Model(quiz).Update("quiz_state", models.QuizStateLocked).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to lock quiz"})
	}
	quiz.QuizState = models.QuizStateLocked
	return c.JSON(fiber.Map{"quiz": quiz})
}

// UnlockQuiz lifts the lock, allowing content edits again.
func UnlockQuiz(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if err := database.DB.Model(quiz).Update("quiz_state", models.QuizStateUnlocked).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unlock quiz"})
	}
	quiz.QuizState = models.QuizStateUnlocked
	return c.JSON(fiber.Map{"quiz": quiz})
}
