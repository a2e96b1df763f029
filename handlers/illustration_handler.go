package handlers

import (
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/middleware"
	"github.com/radiquiz/backend/workspace"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UploadIllustration attaches an image to a question. Files are content
// addressed (md5 name), so re-uploading the same image is idempotent and the
// previous file is collected when nothing else references it.
func UploadIllustration(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if quiz.Locked() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}
	question, handled := findQuestionInQuiz(c, quiz)
	if question == nil {
		return handled
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Image file upload is required."})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Image file upload is required."})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read uploaded file"})
	}
	if len(data) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Uploaded file is empty."})
	}

	var width *float64
	if raw := strings.TrimSpace(c.FormValue("width")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "width must be numeric."})
		}
		width = &parsed
	}

	user := middleware.CurrentUser(c)
	storedName, err := workspace.StoreIllustration(user.ID.String(), quiz.ID.String(), fileHeader.Filename, data)
	if errors.Is(err, workspace.ErrUnsupportedImage) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store illustration"})
	}

	previous := question.IllustrationFilename
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(question).Updates(map[string]interface{}{
			"illustration_filename": storedName,
			"illustration_width":    width,
		}).Error
		if err != nil {
			return err
		}
		if previous != nil && *previous != storedName {
			return collectIllustration(tx, user.ID, quiz.ID, *previous)
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save illustration"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":            "Illustration uploaded.",
		"filename":           storedName,
		"illustration_width": width,
	})
}

// DeleteIllustration detaches a question's image and collects the file.
func DeleteIllustration(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}
	if quiz.Locked() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz is locked."})
	}
	question, handled := findQuestionInQuiz(c, quiz)
	if question == nil {
		return handled
	}
	if question.IllustrationFilename == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question has no illustration."})
	}

	filename := *question.IllustrationFilename
	user := middleware.CurrentUser(c)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(question).Updates(map[string]interface{}{
			"illustration_filename": nil,
			"illustration_width":    nil,
		}).Error
		if err != nil {
			return err
		}
		return collectIllustration(tx, user.ID, quiz.ID, filename)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete illustration"})
	}

	return c.JSON(fiber.Map{"message": "Illustration deleted."})
}

// ServeIllustration streams an illustration file. The path shape matches the
// URL the LaTeX export embeds.
func ServeIllustration(c *fiber.Ctx) error {
	quiz, handled := findQuizForUser(c, "quizUuid")
	if quiz == nil {
		return handled
	}

	filename := c.Params("filename")
	// md5 hex + extension only; anything else could escape the directory.
	if filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Illustration not found"})
	}

	user := middleware.CurrentUser(c)
	path, err := workspace.IllustrationPath(user.ID.String(), quiz.ID.String(), filename)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve illustration"})
	}
	return c.SendFile(path)
}
