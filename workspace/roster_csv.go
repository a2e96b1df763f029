package workspace

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/radiquiz/backend/models"
)

// ParseRosterCSV reads roster rows from CSV content. A UTF-8 byte order mark
// on the header is tolerated; missing required headers are rejected.
func ParseRosterCSV(r io.Reader) ([]models.RosterEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV missing required headers: %s.", strings.Join(RosterHeaders, ", "))
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	columns := make(map[string]int, len(header))
	for index, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = index
	}

	var missing []string
	for _, required := range RosterHeaders {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV missing required headers: %s.", strings.Join(missing, ", "))
	}

	field := func(record []string, name string) string {
		index := columns[name]
		if index >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[index])
	}

	var students []models.RosterEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		students = append(students, models.RosterEntry{
			ID:        field(record, "id"),
			LastName:  field(record, "nom"),
			FirstName: field(record, "prenom"),
			Email:     field(record, "email"),
		})
	}
	return students, nil
}
