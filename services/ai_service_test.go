package services

import "testing"

func noShuffle(n int, swap func(i, j int)) {}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestNormalizeGeneratedDefaults(t *testing.T) {
	raw := []GeneratedQuestion{
		{
			QuestionText: "What is 2+2?",
			QuestionType: "simple",
			Answers: []GeneratedAnswer{
				{Text: "4", IsCorrect: true},
				{Text: "5"},
			},
		},
		{
			QuestionText: "Explain the chain rule.",
			QuestionType: "open",
			Answers:      []GeneratedAnswer{{Text: "Model answer", IsCorrect: true}},
		},
	}

	normalized := NormalizeGenerated(raw, "simple", noShuffle)
	if len(normalized) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(normalized))
	}

	if normalized[0].Points != 1.0 {
		t.Errorf("simple question points = %v, want 1.0", normalized[0].Points)
	}
	if normalized[0].NumberOfLines != nil {
		t.Error("simple question should not get answer lines")
	}

	if normalized[1].Points != 0.0 {
		t.Errorf("open question points = %v, want 0.0", normalized[1].Points)
	}
	if normalized[1].NumberOfLines == nil || *normalized[1].NumberOfLines != 5 {
		t.Errorf("open question lines = %v, want 5", normalized[1].NumberOfLines)
	}
}

func TestNormalizeGeneratedSkipsBlankContent(t *testing.T) {
	raw := []GeneratedQuestion{
		{QuestionText: "   ", QuestionType: "simple"},
		{
			QuestionText: "Keep me",
			Answers: []GeneratedAnswer{
				{Text: "  "},
				{Text: "valid", IsCorrect: true},
			},
		},
	}

	normalized := NormalizeGenerated(raw, "multiple-choice", noShuffle)
	if len(normalized) != 1 {
		t.Fatalf("expected 1 question, got %d", len(normalized))
	}
	if normalized[0].QuestionType != "multiple-choice" {
		t.Errorf("missing type should fall back to requested, got %q", normalized[0].QuestionType)
	}
	if len(normalized[0].Answers) != 1 || normalized[0].Answers[0].Text != "valid" {
		t.Errorf("blank answers should be dropped, got %v", normalized[0].Answers)
	}
}

func TestNormalizeGeneratedExplicitValuesWin(t *testing.T) {
	raw := []GeneratedQuestion{
		{
			QuestionText:  "Graded open question",
			QuestionType:  "open",
			Points:        floatPtr(2.5),
			NumberOfLines: intPtr(10),
		},
	}

	normalized := NormalizeGenerated(raw, "open", noShuffle)
	if len(normalized) != 1 {
		t.Fatalf("expected 1 question, got %d", len(normalized))
	}
	if normalized[0].Points != 2.5 {
		t.Errorf("points = %v, want 2.5", normalized[0].Points)
	}
	if *normalized[0].NumberOfLines != 10 {
		t.Errorf("lines = %v, want 10", *normalized[0].NumberOfLines)
	}
}

func TestNormalizeGeneratedShufflesAnswers(t *testing.T) {
	raw := []GeneratedQuestion{
		{
			QuestionText: "Q",
			QuestionType: "simple",
			Answers: []GeneratedAnswer{
				{Text: "a", IsCorrect: true},
				{Text: "b"},
				{Text: "c"},
			},
		},
	}

	reverse := func(n int, swap func(i, j int)) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}
	normalized := NormalizeGenerated(raw, "simple", reverse)
	if got := normalized[0].Answers[0].Text; got != "c" {
		t.Errorf("shuffle not applied, first answer = %q", got)
	}
}
