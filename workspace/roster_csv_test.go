package workspace

import (
	"strings"
	"testing"

	"github.com/radiquiz/backend/models"
)

func TestParseRosterCSV(t *testing.T) {
	input := "id,nom,prenom,email\n" +
		"1,Dupont,Marie,marie@example.com\n" +
		"2,Martin,Luc,luc@example.com\n"

	students, err := ParseRosterCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRosterCSV: %v", err)
	}
	want := []models.RosterEntry{
		{ID: "1", LastName: "Dupont", FirstName: "Marie", Email: "marie@example.com"},
		{ID: "2", LastName: "Martin", FirstName: "Luc", Email: "luc@example.com"},
	}
	if len(students) != len(want) {
		t.Fatalf("got %d students, want %d", len(students), len(want))
	}
	for i := range want {
		if students[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, students[i], want[i])
		}
	}
}

func TestParseRosterCSVStripsBOM(t *testing.T) {
	input := "\uFEFFid,nom,prenom,email\n1,Dupont,Marie,marie@example.com\n"

	students, err := ParseRosterCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRosterCSV: %v", err)
	}
	if len(students) != 1 || students[0].ID != "1" {
		t.Fatalf("got %+v, want one row with id 1", students)
	}
}

func TestParseRosterCSVHeaderCaseInsensitive(t *testing.T) {
	input := "ID,Nom,Prenom,Email\n1,Dupont,Marie,marie@example.com\n"

	students, err := ParseRosterCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRosterCSV: %v", err)
	}
	if len(students) != 1 || students[0].LastName != "Dupont" {
		t.Fatalf("got %+v, want Dupont row", students)
	}
}

func TestParseRosterCSVMissingHeaders(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"no email column", "id,nom,prenom\n1,Dupont,Marie\n"},
		{"empty file", ""},
		{"unrelated headers", "a,b,c\n1,2,3\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRosterCSV(strings.NewReader(tc.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "CSV missing required headers") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseRosterCSVShortRecords(t *testing.T) {
	input := "id,nom,prenom,email\n1,Dupont\n"

	students, err := ParseRosterCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRosterCSV: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("got %d students, want 1", len(students))
	}
	if students[0].FirstName != "" || students[0].Email != "" {
		t.Errorf("missing columns should be empty, got %+v", students[0])
	}
}
