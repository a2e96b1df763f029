package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
func intPtr(v int) *int           { return &v }

func TestQuestionUpdatesFromRequestEmpty(t *testing.T) {
	updates, message := questionUpdatesFromRequest(UpdateQuestionRequest{})
	if message != "" {
		t.Fatalf("unexpected validation error: %q", message)
	}
	if len(updates) != 0 {
		t.Fatalf("empty request must produce an empty diff, got %v", updates)
	}
}

func TestQuestionUpdatesFromRequestFields(t *testing.T) {
	updates, message := questionUpdatesFromRequest(UpdateQuestionRequest{
		QuestionText:  strPtr("  What is 2+2?  "),
		Points:        floatPtr(2.5),
		NumberOfLines: intPtr(8),
	})
	if message != "" {
		t.Fatalf("unexpected validation error: %q", message)
	}
	if updates["question_text"] != "What is 2+2?" {
		t.Errorf("question_text not trimmed: %v", updates["question_text"])
	}
	if updates["points"] != 2.5 {
		t.Errorf("points = %v, want 2.5", updates["points"])
	}
	if updates["number_of_lines"] != 8 {
		t.Errorf("number_of_lines = %v, want 8", updates["number_of_lines"])
	}
}

func TestQuestionUpdatesFromRequestRejectsBlankText(t *testing.T) {
	updates, message := questionUpdatesFromRequest(UpdateQuestionRequest{
		QuestionText: strPtr("   "),
	})
	if updates != nil {
		t.Fatalf("expected nil diff, got %v", updates)
	}
	if message == "" {
		t.Fatal("expected a validation message")
	}
}

func TestQuestionUpdatesFromRequestIgnoresBlankSubject(t *testing.T) {
	updates, message := questionUpdatesFromRequest(UpdateQuestionRequest{
		SubjectUUID: strPtr("   "),
	})
	if message != "" {
		t.Fatalf("unexpected validation error: %q", message)
	}
	if len(updates) != 0 {
		t.Fatalf("blank subject_uuid must not enter the diff, got %v", updates)
	}
}

func TestQuestionUpdatesFromRequestKeepsSubject(t *testing.T) {
	updates, message := questionUpdatesFromRequest(UpdateQuestionRequest{
		SubjectUUID: strPtr(" 4f1c2d3e-0000-0000-0000-000000000001 "),
	})
	if message != "" {
		t.Fatalf("unexpected validation error: %q", message)
	}
	if updates["subject_id"] != "4f1c2d3e-0000-0000-0000-000000000001" {
		t.Errorf("subject_id = %v", updates["subject_id"])
	}
}

func TestValidateSubjectChoice(t *testing.T) {
	cases := []struct {
		name        string
		uuid, title string
		wantUUID    string
		wantTitle   string
		wantMessage bool
	}{
		{"uuid only", "abc", "", "abc", "", false},
		{"title only", "", " Anatomy ", "", "Anatomy", false},
		{"both", "abc", "Anatomy", "", "", true},
		{"neither", "", "", "", "", true},
		{"whitespace only counts as neither", "  ", "  ", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotUUID, gotTitle, message := validateSubjectChoice(tc.uuid, tc.title)
			if (message != "") != tc.wantMessage {
				t.Fatalf("message = %q, wantMessage = %v", message, tc.wantMessage)
			}
			if gotUUID != tc.wantUUID || gotTitle != tc.wantTitle {
				t.Errorf("got (%q, %q), want (%q, %q)", gotUUID, gotTitle, tc.wantUUID, tc.wantTitle)
			}
		})
	}
}

func TestResolveSubjectTxRejectsMalformedUUID(t *testing.T) {
	// The malformed-uuid branch answers before any database access, so a nil
	// transaction is fine here.
	subject, status, message := resolveSubjectTx(nil, uuid.New(), "not-a-uuid", "")
	if subject != nil {
		t.Fatalf("expected no subject, got %v", subject)
	}
	if status != fiber.StatusBadRequest {
		t.Errorf("status = %d, want %d", status, fiber.StatusBadRequest)
	}
	if message != "Unknown subject_uuid." {
		t.Errorf("message = %q", message)
	}
}

func TestQuestionUpdatesFromRequestRejectsBadType(t *testing.T) {
	updates, message := questionUpdatesFromRequest(UpdateQuestionRequest{
		QuestionType: strPtr("essay"),
	})
	if updates != nil || message == "" {
		t.Fatalf("expected rejection, got updates=%v message=%q", updates, message)
	}
}

func TestPointsOnly(t *testing.T) {
	cases := []struct {
		name    string
		updates map[string]interface{}
		want    bool
	}{
		{"points alone", map[string]interface{}{"points": 2.0}, true},
		{"points plus text", map[string]interface{}{"points": 2.0, "question_text": "x"}, false},
		{"text alone", map[string]interface{}{"question_text": "x"}, false},
		{"empty", map[string]interface{}{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pointsOnly(tc.updates); got != tc.want {
				t.Errorf("pointsOnly(%v) = %v, want %v", tc.updates, got, tc.want)
			}
		})
	}
}

func TestValidQuestionType(t *testing.T) {
	for _, valid := range []string{"simple", "multiple-choice", "open"} {
		if !validQuestionType(valid) {
			t.Errorf("validQuestionType(%q) = false", valid)
		}
	}
	for _, invalid := range []string{"", "essay", "Simple", "multiple"} {
		if validQuestionType(invalid) {
			t.Errorf("validQuestionType(%q) = true", invalid)
		}
	}
}

func TestQuizUpdatesFromRequestEmpty(t *testing.T) {
	if updates := quizUpdatesFromRequest(UpdateQuizRequest{}); len(updates) != 0 {
		t.Fatalf("empty request must produce an empty diff, got %v", updates)
	}
}

func TestQuizUpdatesFromRequestBooleans(t *testing.T) {
	enabled := true
	disabled := false
	updates := quizUpdatesFromRequest(UpdateQuizRequest{
		RandomQuestionOrder: &enabled,
		TwoUpPrinting:       &disabled,
	})
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2: %v", len(updates), updates)
	}
	if updates["random_question_order"] != true {
		t.Errorf("random_question_order = %v, want true", updates["random_question_order"])
	}
	if updates["two_up_printing"] != false {
		t.Errorf("two_up_printing = %v, want false", updates["two_up_printing"])
	}
}

func TestDefaultsUpdatesFromRequest(t *testing.T) {
	updates := defaultsUpdatesFromRequest(UpdateDefaultsRequest{
		InstitutionName: strPtr("Lycée Condorcet"),
		QuizLanguage:    strPtr("en"),
	})
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2: %v", len(updates), updates)
	}
	if updates["institution_name"] != "Lycée Condorcet" {
		t.Errorf("institution_name = %v", updates["institution_name"])
	}
	if updates["quiz_language"] != "en" {
		t.Errorf("quiz_language = %v", updates["quiz_language"])
	}
}
