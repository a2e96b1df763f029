package services

import (
	"reflect"
	"testing"
)

func layoutOf(subjects ...SubjectLayout) []SubjectLayout {
	return subjects
}

func TestMoveQuestionWithinSubject(t *testing.T) {
	layout := layoutOf(
		SubjectLayout{SubjectUUID: "algebra", QuestionUUIDs: []string{"q1", "q2", "q3"}},
	)

	result, moved := MoveQuestion(layout, "q2", DirectionUp)
	if !moved {
		t.Fatal("expected q2 up to move")
	}
	if got := result[0].QuestionUUIDs; !reflect.DeepEqual(got, []string{"q2", "q1", "q3"}) {
		t.Errorf("unexpected order after up: %v", got)
	}

	result, moved = MoveQuestion(layout, "q2", DirectionDown)
	if !moved {
		t.Fatal("expected q2 down to move")
	}
	if got := result[0].QuestionUUIDs; !reflect.DeepEqual(got, []string{"q1", "q3", "q2"}) {
		t.Errorf("unexpected order after down: %v", got)
	}
}

func TestMoveQuestionBoundariesAreNoOps(t *testing.T) {
	layout := layoutOf(
		SubjectLayout{SubjectUUID: "a", QuestionUUIDs: []string{"q1", "q2"}},
		SubjectLayout{SubjectUUID: "b", QuestionUUIDs: []string{"q3"}},
	)

	if _, moved := MoveQuestion(layout, "q1", DirectionUp); moved {
		t.Error("first question of first subject moved up")
	}
	if _, moved := MoveQuestion(layout, "q3", DirectionDown); moved {
		t.Error("last question of last subject moved down")
	}
}

func TestMoveQuestionMigratesAcrossSubjects(t *testing.T) {
	layout := layoutOf(
		SubjectLayout{SubjectUUID: "a", QuestionUUIDs: []string{"q1", "q2"}},
		SubjectLayout{SubjectUUID: "b", QuestionUUIDs: []string{"q3", "q4"}},
	)

	// Last question of A moved down lands at index 0 of B.
	result, moved := MoveQuestion(layout, "q2", DirectionDown)
	if !moved {
		t.Fatal("expected q2 down to migrate")
	}
	if got := result[0].QuestionUUIDs; !reflect.DeepEqual(got, []string{"q1"}) {
		t.Errorf("subject a after migration: %v", got)
	}
	if got := result[1].QuestionUUIDs; !reflect.DeepEqual(got, []string{"q2", "q3", "q4"}) {
		t.Errorf("subject b after migration: %v", got)
	}

	// First question of B moved up lands at the tail of A.
	result, moved = MoveQuestion(layout, "q3", DirectionUp)
	if !moved {
		t.Fatal("expected q3 up to migrate")
	}
	if got := result[0].QuestionUUIDs; !reflect.DeepEqual(got, []string{"q1", "q2", "q3"}) {
		t.Errorf("subject a after migration: %v", got)
	}
	if got := result[1].QuestionUUIDs; !reflect.DeepEqual(got, []string{"q4"}) {
		t.Errorf("subject b after migration: %v", got)
	}
}

func TestMoveQuestionMigratesThroughEmptySubject(t *testing.T) {
	layout := layoutOf(
		SubjectLayout{SubjectUUID: "a", QuestionUUIDs: []string{"q1"}},
		SubjectLayout{SubjectUUID: "b", QuestionUUIDs: nil},
	)

	result, moved := MoveQuestion(layout, "q1", DirectionDown)
	if !moved {
		t.Fatal("expected q1 down to migrate into empty subject")
	}
	if len(result[0].QuestionUUIDs) != 0 {
		t.Errorf("subject a should be empty, got %v", result[0].QuestionUUIDs)
	}
	if got := result[1].QuestionUUIDs; !reflect.DeepEqual(got, []string{"q1"}) {
		t.Errorf("subject b after migration: %v", got)
	}
}

func TestMoveQuestionSingleSubjectRoundTrip(t *testing.T) {
	layout := layoutOf(
		SubjectLayout{SubjectUUID: "algebra", QuestionUUIDs: []string{"Q1", "Q2"}},
	)

	result, moved := MoveQuestion(layout, "Q1", DirectionDown)
	if !moved {
		t.Fatal("expected Q1 down to move")
	}
	if got := result[0].QuestionUUIDs; !reflect.DeepEqual(got, []string{"Q2", "Q1"}) {
		t.Fatalf("unexpected order: %v", got)
	}

	final, moved := MoveQuestion(result, "Q1", DirectionDown)
	if moved {
		t.Error("Q1 at the end of the only subject should not move down")
	}
	if got := final[0].QuestionUUIDs; !reflect.DeepEqual(got, []string{"Q2", "Q1"}) {
		t.Errorf("no-op changed the layout: %v", got)
	}
}

func TestMoveQuestionDoesNotMutateInput(t *testing.T) {
	layout := layoutOf(
		SubjectLayout{SubjectUUID: "a", QuestionUUIDs: []string{"q1", "q2"}},
		SubjectLayout{SubjectUUID: "b", QuestionUUIDs: []string{"q3"}},
	)

	MoveQuestion(layout, "q2", DirectionDown)

	if !reflect.DeepEqual(layout[0].QuestionUUIDs, []string{"q1", "q2"}) ||
		!reflect.DeepEqual(layout[1].QuestionUUIDs, []string{"q3"}) {
		t.Errorf("input layout mutated: %v", layout)
	}
}

func TestMoveQuestionUnknownID(t *testing.T) {
	layout := layoutOf(SubjectLayout{SubjectUUID: "a", QuestionUUIDs: []string{"q1"}})
	if _, moved := MoveQuestion(layout, "missing", DirectionUp); moved {
		t.Error("unknown question id must not move")
	}
}

func TestMoveSubject(t *testing.T) {
	order := []string{"a", "b", "c"}

	tests := []struct {
		name    string
		subject string
		dir     Direction
		want    []string
		moved   bool
	}{
		{"middle up", "b", DirectionUp, []string{"b", "a", "c"}, true},
		{"middle down", "b", DirectionDown, []string{"a", "c", "b"}, true},
		{"first up is no-op", "a", DirectionUp, []string{"a", "b", "c"}, false},
		{"last down is no-op", "c", DirectionDown, []string{"a", "b", "c"}, false},
		{"unknown subject", "z", DirectionDown, []string{"a", "b", "c"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, moved := MoveSubject(order, tt.subject, tt.dir)
			if moved != tt.moved {
				t.Fatalf("moved = %v, want %v", moved, tt.moved)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateLayout(t *testing.T) {
	subjects := map[string]bool{"a": true, "b": true}
	questions := map[string]bool{"q1": true, "q2": true, "q3": true}

	valid := layoutOf(
		SubjectLayout{SubjectUUID: "a", QuestionUUIDs: []string{"q2", "q1"}},
		SubjectLayout{SubjectUUID: "b", QuestionUUIDs: []string{"q3"}},
	)
	if err := ValidateLayout(valid, subjects, questions); err != nil {
		t.Errorf("valid layout rejected: %v", err)
	}

	unknownSubject := layoutOf(SubjectLayout{SubjectUUID: "z", QuestionUUIDs: []string{"q1", "q2", "q3"}})
	if err := ValidateLayout(unknownSubject, subjects, questions); err != ErrUnknownSubject {
		t.Errorf("want ErrUnknownSubject, got %v", err)
	}

	unknownQuestion := layoutOf(SubjectLayout{SubjectUUID: "a", QuestionUUIDs: []string{"q1", "q9"}})
	if err := ValidateLayout(unknownQuestion, subjects, questions); err != ErrUnknownQuestion {
		t.Errorf("want ErrUnknownQuestion, got %v", err)
	}

	missing := layoutOf(SubjectLayout{SubjectUUID: "a", QuestionUUIDs: []string{"q1", "q2"}})
	if err := ValidateLayout(missing, subjects, questions); err != ErrIncompleteOrder {
		t.Errorf("want ErrIncompleteOrder for missing question, got %v", err)
	}

	duplicated := layoutOf(
		SubjectLayout{SubjectUUID: "a", QuestionUUIDs: []string{"q1", "q1", "q2"}},
		SubjectLayout{SubjectUUID: "b", QuestionUUIDs: []string{"q3"}},
	)
	if err := ValidateLayout(duplicated, subjects, questions); err != ErrIncompleteOrder {
		t.Errorf("want ErrIncompleteOrder for duplicate, got %v", err)
	}
}

func TestValidateSubjectOrder(t *testing.T) {
	known := map[string]bool{"a": true, "b": true}

	if err := ValidateSubjectOrder([]string{"b", "a"}, known); err != nil {
		t.Errorf("valid order rejected: %v", err)
	}
	if err := ValidateSubjectOrder([]string{"a"}, known); err != ErrSubjectMismatch {
		t.Errorf("want ErrSubjectMismatch for missing subject, got %v", err)
	}
	if err := ValidateSubjectOrder([]string{"a", "a"}, known); err != ErrSubjectMismatch {
		t.Errorf("want ErrSubjectMismatch for duplicate, got %v", err)
	}
	if err := ValidateSubjectOrder([]string{"a", "b", "z"}, known); err != ErrSubjectMismatch {
		t.Errorf("want ErrSubjectMismatch for unknown subject, got %v", err)
	}
}
