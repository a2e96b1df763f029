package workspace

import (
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/radiquiz/backend/models"
)

// RosterHeaders is the required CSV header row, in order.
var RosterHeaders = []string{"id", "nom", "prenom", "email"}

// EnsureRosterFile creates an empty roster CSV (header only) if missing.
func EnsureRosterFile(userUUID, listUUID string) (string, error) {
	path, err := RosterPath(userUUID, listUUID)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := WriteRoster(userUUID, listUUID, nil); err != nil {
			return "", err
		}
	}
	return path, nil
}

// ReadRoster loads the roster CSV, creating an empty one if needed.
func ReadRoster(userUUID, listUUID string) ([]models.RosterEntry, error) {
	path, err := EnsureRosterFile(userUUID, listUUID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseRosterCSV(file)
}

// WriteRoster rewrites the roster CSV from scratch.
func WriteRoster(userUUID, listUUID string, students []models.RosterEntry) error {
	path, err := RosterPath(userUUID, listUUID)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(RosterHeaders); err != nil {
		return err
	}
	for _, student := range students {
		record := []string{
			strings.TrimSpace(student.ID),
			strings.TrimSpace(student.LastName),
			strings.TrimSpace(student.FirstName),
			strings.TrimSpace(student.Email),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// RemoveRoster deletes the roster CSV when a class is deleted.
func RemoveRoster(userUUID, listUUID string) error {
	path, err := RosterPath(userUUID, listUUID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
