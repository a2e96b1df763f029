package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/radiquiz/backend/database"
	"github.com/radiquiz/backend/middleware"
	"github.com/radiquiz/backend/models"
	"github.com/radiquiz/backend/utils"
	"github.com/radiquiz/backend/workspace"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func findClassForUser(c *fiber.Ctx) (*models.Class, error) {
	listID, err := uuid.Parse(c.Params("listUuid"))
	if err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	}

	user := middleware.CurrentUser(c)
	var class models.Class
	err = database.DB.Where("id = ? AND user_id = ?", listID, user.ID).First(&class).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Class not found"})
	}
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load class"})
	}
	return &class, nil
}

func classManifest(class *models.Class) models.StudentManifest {
	var manifest models.StudentManifest
	if class.StudentList != "" {
		json.Unmarshal([]byte(class.StudentList), &manifest)
	}
	return manifest
}

func serializeClass(class *models.Class) fiber.Map {
	manifest := classManifest(class)
	return fiber.Map{
		"list_uuid":     class.ID,
		"class_title":   class.ClassTitle,
		"student_count": manifest.StudentCount,
		"last_updated":  manifest.LastUpdated,
		"created_at":    class.CreatedAt,
	}
}

func saveManifest(class *models.Class, studentCount int) error {
	manifest := models.StudentManifest{
		StudentCount: studentCount,
		LastUpdated:  time.Now().UTC().Format(time.RFC3339),
	}
	encoded, err := json.Marshal(manifest)
	if err != nil {
		return err
	}
	return database.DB.Model(class).Update("student_list", string(encoded)).Error
}

// GetClasses lists the user's classes.
func GetClasses(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var classes []models.Class
	err := database.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&classes).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load classes"})
	}

	payload := make([]fiber.Map, len(classes))
	for i := range classes {
		payload[i] = serializeClass(&classes[i])
	}
	return c.JSON(fiber.Map{"classes": payload})
}

// CreateClass creates a class with an empty roster file.
func CreateClass(c *fiber.Ctx) error {
	type Request struct {
		ClassTitle string `json:"class_title"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	req.ClassTitle = strings.TrimSpace(req.ClassTitle)
	if req.ClassTitle == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Class title is required."})
	}

	user := middleware.CurrentUser(c)
	class := models.Class{
		UserID:     user.ID,
		ClassTitle: req.ClassTitle,
	}
	if err := database.DB.Create(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create class"})
	}

	if _, err := workspace.EnsureRosterFile(user.ID.String(), class.ID.String()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create roster file"})
	}
	saveManifest(&class, 0)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"class": serializeClass(&class)})
}

// GetClass returns one class with its roster.
func GetClass(c *fiber.Ctx) error {
	class, handled := findClassForUser(c)
	if class == nil {
		return handled
	}

	user := middleware.CurrentUser(c)
	students, err := workspace.ReadRoster(user.ID.String(), class.ID.String())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read roster"})
	}
	if students == nil {
		students = []models.RosterEntry{}
	}

	payload := serializeClass(class)
	payload["students"] = students
	return c.JSON(fiber.Map{"class": payload})
}

// UpdateClass renames a class.
func UpdateClass(c *fiber.Ctx) error {
	class, handled := findClassForUser(c)
	if class == nil {
		return handled
	}

	type Request struct {
		ClassTitle string `json:"class_title"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	req.ClassTitle = strings.TrimSpace(req.ClassTitle)
	if req.ClassTitle == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Class title is required."})
	}

	if err := database.DB.Model(class).Update("class_title", req.ClassTitle).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update class"})
	}
	class.ClassTitle = req.ClassTitle
	return c.JSON(fiber.Map{"class": serializeClass(class)})
}

// DeleteClass removes the class and its roster file.
func DeleteClass(c *fiber.Ctx) error {
	class, handled := findClassForUser(c)
	if class == nil {
		return handled
	}

	if err := database.DB.Delete(class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete class"})
	}

	user := middleware.CurrentUser(c)
	workspace.RemoveRoster(user.ID.String(), class.ID.String())
	return c.JSON(fiber.Map{"message": "Class deleted."})
}

// ReplaceStudents rewrites the whole roster from the request body.
func ReplaceStudents(c *fiber.Ctx) error {
	class, handled := findClassForUser(c)
	if class == nil {
		return handled
	}

	type Request struct {
		Students []models.RosterEntry `json:"students"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	for i, student := range req.Students {
		email := strings.TrimSpace(student.Email)
		if email != "" && !utils.IsValidEmail(email) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Invalid email address on row %d.", i+1),
			})
		}
	}

	user := middleware.CurrentUser(c)
	if err := workspace.WriteRoster(user.ID.String(), class.ID.String(), req.Students); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write roster"})
	}
	if err := saveManifest(class, len(req.Students)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update class"})
	}

	database.DB.Where("id = ?", class.ID).First(class)
	return c.JSON(fiber.Map{"class": serializeClass(class), "students": req.Students})
}

// ImportStudents replaces the roster from an uploaded CSV file.
func ImportStudents(c *fiber.Ctx) error {
	class, handled := findClassForUser(c)
	if class == nil {
		return handled
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "CSV file upload is required."})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "CSV file upload is required."})
	}
	defer file.Close()

	students, err := workspace.ParseRosterCSV(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user := middleware.CurrentUser(c)
	if err := workspace.WriteRoster(user.ID.String(), class.ID.String(), students); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write roster"})
	}
	if err := saveManifest(class, len(students)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update class"})
	}

	if students == nil {
		students = []models.RosterEntry{}
	}
	database.DB.Where("id = ?", class.ID).First(class)
	return c.JSON(fiber.Map{"class": serializeClass(class), "students": students})
}

// DownloadStudents serves the roster as a CSV attachment.
func DownloadStudents(c *fiber.Ctx) error {
	class, handled := findClassForUser(c)
	if class == nil {
		return handled
	}

	user := middleware.CurrentUser(c)
	path, err := workspace.EnsureRosterFile(user.ID.String(), class.ID.String())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read roster"})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.csv"`, class.ID))
	return c.SendFile(path)
}
