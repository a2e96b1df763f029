package handlers

import (
	"errors"
	"strings"

	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/middleware"
	"github.com/radiquiz/backend/models"
	"github.com/radiquiz/backend/workspace"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// quizTree loads the full subject→question→answer tree in display order.
// It repairs two states a crashed client can leave behind: a quiz with no
// subject gets a fresh "Nouvelle section", and questions whose subject no
// longer exists are adopted into the first subject.
func quizTree(quiz *models.Quiz) ([]models.Subject, error) {
	var subjects []models.Subject
	err := database.DB.Where("quiz_id = ?", quiz.ID).Order("sort_order ASC").Find(&subjects).Error
	if err != nil {
		return nil, err
	}

	if len(subjects) == 0 {
		subject := models.Subject{
			QuizID:       quiz.ID,
			SubjectTitle: models.DefaultSubjectTitle,
			SortOrder:    0,
		}
		if err := database.DB.Create(&subject).Error; err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}

	var questions []models.Question
	err = database.DB.Where("quiz_id = ?", quiz.ID).Order("question_number ASC").Find(&questions).Error
	if err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]int, len(subjects))
	for i, subject := range subjects {
		known[subject.ID] = i
	}
	for i := range questions {
		if _, ok := known[questions[i].SubjectID]; !ok {
			questions[i].SubjectID = subjects[0].ID
			if err := database.DB.Model(&questions[i]).Update("subject_id", subjects[0].ID).Error; err != nil {
				return nil, err
			}
		}
	}

	questionIDs := make([]uuid.UUID, len(questions))
	for i, question := range questions {
		questionIDs[i] = question.ID
	}
	answersByQuestion := map[uuid.UUID][]models.Answer{}
	if len(questionIDs) > 0 {
		var answers []models.Answer
		err = database.DB.Where("question_id IN ?", questionIDs).Order("answer_order ASC").Find(&answers).Error
		if err != nil {
			return nil, err
		}
		for _, answer := range answers {
			answersByQuestion[answer.QuestionID] = append(answersByQuestion[answer.QuestionID], answer)
		}
	}

	for i := range subjects {
		subjects[i].Questions = []models.Question{}
	}
	for _, question := range questions {
		question.Answers = answersByQuestion[question.ID]
		if question.Answers == nil {
			question.Answers = []models.Answer{}
		}
		idx := known[question.SubjectID]
		subjects[idx].Questions = append(subjects[idx].Questions, question)
	}
	return subjects, nil
}

func treeResponse(c *fiber.Ctx, quiz *models.Quiz, status int) error {
	subjects, err := quizTree(quiz)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load questions"})
	}
	return c.Status(status).JSON(fiber.Map{
		"quiz_uuid":  quiz.ID,
		"quiz_state": quiz.QuizState,
		"subjects":   subjects,
	})
}

// renumberQuiz reassigns global question numbers from 1, grouped by subject
// sort order. Every write that changes membership or order funnels through
// this so the display numbering never drifts.
func renumberQuiz(tx *gorm.DB, quizID uuid.UUID) error {
	var subjects []models.Subject
	if err := tx.Where("quiz_id = ?", quizID).Order("sort_order ASC").Find(&subjects).Error; err != nil {
		return err
	}
	number := 1
	for _, subject := range subjects {
		var questions []models.Question
		err := tx.Where("quiz_id = ? AND subject_id = ?", quizID, subject.ID).
			Order("question_number ASC").Find(&questions).Error
		if err != nil {
			return err
		}
		for _, question := range questions {
			if question.QuestionNumber != number {
				if err := tx.Model(&models.Question{}).Where("id = ?", question.ID).
					Update("question_number", number).Error; err != nil {
					return err
				}
			}
			number++
		}
	}
	return tx.Model(&models.Quiz{}).Where("id = ?", quizID).
		Update("number_of_questions", number-1).Error
}

// collectIllustration removes the file when no question in the quiz still
// references it. Two questions may share one md5-named file.
func collectIllustration(tx *gorm.DB, userID, quizID uuid.UUID, filename string) error {
	var count int64
	err := tx.Model(&models.Question{}).
		Where("quiz_id = ? AND illustration_filename = ?", quizID, filename).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return workspace.RemoveIllustration(userID.String(), quizID.String(), filename)
	}
	return nil
}

// GetQuestions returns the full tree for the quiz editor.
func GetQuestions(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	return treeResponse(c, quiz, fiber.StatusOK)
}

// errSubjectResolution aborts a transaction when the target subject cannot
// be resolved; the caller carries the status and message out-of-band.
var errSubjectResolution = errors.New("subject resolution failed")

// validateSubjectChoice checks the subject_uuid/subject_title pair for a new
// question: exactly one of the two, trimmed. A non-empty message means 400.
func validateSubjectChoice(subjectUUID, subjectTitle string) (string, string, string) {
	subjectUUID = strings.TrimSpace(subjectUUID)
	subjectTitle = strings.TrimSpace(subjectTitle)
	if subjectUUID != "" && subjectTitle != "" {
		return "", "", "Provide either subject_uuid or subject_title, not both."
	}
	if subjectUUID == "" && subjectTitle == "" {
		return "", "", "subject_uuid or subject_title is required."
	}
	return subjectUUID, subjectTitle, ""
}

// resolveSubjectTx loads the existing subject or creates one from the title,
// inside the caller's transaction so a failed insert leaves no empty subject
// behind.
func resolveSubjectTx(tx *gorm.DB, quizID uuid.UUID, subjectUUID, subjectTitle string) (*models.Subject, int, string) {
	if subjectUUID != "" {
		id, err := uuid.Parse(subjectUUID)
		if err != nil {
			return nil, fiber.StatusBadRequest, "Unknown subject_uuid."
		}
		var subject models.Subject
		err = tx.Where("id = ? AND quiz_id = ?", id, quizID).First(&subject).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.StatusBadRequest, "Unknown subject_uuid."
		}
		if err != nil {
			return nil, fiber.StatusInternalServerError, "Failed to load subject"
		}
		return &subject, 0, ""
	}

	var maxOrder int
	tx.Model(&models.Subject{}).Where("quiz_id = ?", quizID).
		Select("COALESCE(MAX(sort_order), -1)").Scan(&maxOrder)
	subject := models.Subject{
		QuizID:       quizID,
		SubjectTitle: subjectTitle,
		SortOrder:    maxOrder + 1,
	}
	if err := tx.Create(&subject).Error; err != nil {
		return nil, fiber.StatusInternalServerError, "Failed to create subject"
	}
	return &subject, 0, ""
}

type CreateAnswerPayload struct {
	AnswerOption string `json:"answer_option"`
	Correct      bool   `json:"correct"`
}

// CreateQuestion appends a question to a subject, optionally with its answers.
func CreateQuestion(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if quiz.Locked() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	type Request struct {
		QuestionText  string                `json:"question_text"`
		QuestionType  string                `json:"question_type"`
		Points        *float64              `json:"points"`
		NumberOfLines *int                  `json:"number_of_lines"`
		SubjectUUID   string                `json:"subject_uuid"`
		SubjectTitle  string                `json:"subject_title"`
		Answers       []CreateAnswerPayload `json:"answers"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	req.QuestionText = strings.TrimSpace(req.QuestionText)
	if req.QuestionText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Question text is required."})
	}
	if !validQuestionType(req.QuestionType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid question type."})
	}

	subjectUUID, subjectTitle, message := validateSubjectChoice(req.SubjectUUID, req.SubjectTitle)
	if message != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
	}

	points := 1.0
	if req.Points != nil {
		points = *req.Points
	}
	question := models.Question{
		QuizID:       quiz.ID,
		QuestionText: req.QuestionText,
		QuestionType: req.QuestionType,
		Points:       points,
	}
	if req.QuestionType == models.QuestionTypeOpen {
		lines := 5
		if req.NumberOfLines != nil {
			lines = *req.NumberOfLines
		}
		question.NumberOfLines = &lines
	}

	var subjectStatus int
	var subjectMessage string
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		subject, status, msg := resolveSubjectTx(tx, quiz.ID, subjectUUID, subjectTitle)
		if subject == nil {
			subjectStatus, subjectMessage = status, msg
			return errSubjectResolution
		}
		question.SubjectID = subject.ID

		var maxNumber int
		tx.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).
			Select("COALESCE(MAX(question_number), 0)").Scan(&maxNumber)
		question.QuestionNumber = maxNumber + 1
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for i, payload := range req.Answers {
			answer := models.Answer{
				QuestionID:   question.ID,
				AnswerOption: payload.AnswerOption,
				Correct:      payload.Correct,
				AnswerOrder:  i + 1,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
			question.Answers = append(question.Answers, answer)
		}
		return renumberQuiz(tx, quiz.ID)
	})
	if errors.Is(err, errSubjectResolution) {
		return c.Status(subjectStatus).JSON(fiber.Map{"error": subjectMessage})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create question"})
	}

	if question.Answers == nil {
		question.Answers = []models.Answer{}
	}
	database.DB.Model(&models.Question{}).Where("id = ?", question.ID).
		Select("question_number").Scan(&question.QuestionNumber)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"question": question})
}

func validQuestionType(questionType string) bool {
	switch questionType {
	case models.QuestionTypeSimple, models.QuestionTypeMultipleChoice, models.QuestionTypeOpen:
		return true
	}
	return false
}

type UpdateQuestionRequest struct {
	QuestionText      *string  `json:"question_text"`
	QuestionType      *string  `json:"question_type"`
	SubjectUUID       *string  `json:"subject_uuid"`
	Points            *float64 `json:"points"`
	IllustrationWidth *float64 `json:"illustration_width"`
	NumberOfLines     *int     `json:"number_of_lines"`
}

// questionUpdatesFromRequest builds the column diff for a partial question
// update. Field validation errors come back as (nil, message); an empty map
// with no message means nothing to update.
func questionUpdatesFromRequest(req UpdateQuestionRequest) (map[string]interface{}, string) {
	updates := map[string]interface{}{}
	if req.QuestionText != nil {
		text := strings.TrimSpace(*req.QuestionText)
		if text == "" {
			return nil, "Question text cannot be empty."
		}
		updates["question_text"] = text
	}
	if req.QuestionType != nil {
		if !validQuestionType(*req.QuestionType) {
			return nil, "Invalid question type."
		}
		updates["question_type"] = *req.QuestionType
	}
	if req.SubjectUUID != nil {
		// A blank value is not a move request, just leave it out of the diff.
		if s := strings.TrimSpace(*req.SubjectUUID); s != "" {
			updates["subject_id"] = s
		}
	}
	if req.Points != nil {
		updates["points"] = *req.Points
	}
	if req.IllustrationWidth != nil {
		updates["illustration_width"] = *req.IllustrationWidth
	}
	if req.NumberOfLines != nil {
		updates["number_of_lines"] = *req.NumberOfLines
	}
	return updates, ""
}

// pointsOnly reports whether a diff is limited to the points column, the one
// question edit still allowed on a locked quiz.
func pointsOnly(updates map[string]interface{}) bool {
	if len(updates) != 1 {
		return false
	}
	_, ok := updates["points"]
	return ok
}

// UpdateQuestion applies a partial update. Moving the question to another
// subject renumbers the quiz.
func UpdateQuestion(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}

	questionID, err := uuid.Parse(c.Params("questionUuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	var question models.Question
	err = database.DB.Where("id = ? AND quiz_id = ?", questionID, quiz.ID).First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load question"})
	}

	var req UpdateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	updates, message := questionUpdatesFromRequest(req)
	if updates == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No fields to update."})
	}
	if quiz.Locked() && !pointsOnly(updates) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	subjectChanged := false
	if raw, ok := updates["subject_id"]; ok {
		subjectID, err := uuid.Parse(raw.(string))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
		}
		var count int64
		database.DB.Model(&models.Subject{}).Where("id = ? AND quiz_id = ?", subjectID, quiz.ID).Count(&count)
		if count == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
		}
		updates["subject_id"] = subjectID
		subjectChanged = subjectID != question.SubjectID
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&question).Updates(updates).Error; err != nil {
			return err
		}
		if subjectChanged {
			return renumberQuiz(tx, quiz.ID)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update question"})
	}

	database.DB.Where("id = ?", question.ID).First(&question)
	database.DB.Where("question_id = ?", question.ID).Order("answer_order ASC").Find(&question.Answers)
	if question.Answers == nil {
		question.Answers = []models.Answer{}
	}
	return c.JSON(fiber.Map{"question": question})
}

// DeleteQuestion removes a question with its answers, renumbers the rest and
// garbage-collects its illustration.
func DeleteQuestion(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if quiz.Locked() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}

	questionID, err := uuid.Parse(c.Params("questionUuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	var question models.Question
	err = database.DB.Where("id = ? AND quiz_id = ?", questionID, quiz.ID).First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load question"})
	}

	user := middleware.CurrentUser(c)
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&question).Error; err != nil {
			return err
		}
		if err := renumberQuiz(tx, quiz.ID); err != nil {
			return err
		}
		if question.IllustrationFilename != nil {
			return collectIllustration(tx, user.ID, quiz.ID, *question.IllustrationFilename)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete question"})
	}

	return treeResponse(c, quiz, fiber.StatusOK)
}
