package handlers

import (
	"testing"

	"github.com/radiquiz/backend/models"
)

func TestClearSiblingCorrect(t *testing.T) {
	cases := []struct {
		name           string
		questionType   string
		settingCorrect bool
		want           bool
	}{
		{"simple marked correct", models.QuestionTypeSimple, true, true},
		{"simple marked incorrect", models.QuestionTypeSimple, false, false},
		{"multiple-choice marked correct", models.QuestionTypeMultipleChoice, true, false},
		{"multiple-choice marked incorrect", models.QuestionTypeMultipleChoice, false, false},
		{"open marked correct", models.QuestionTypeOpen, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clearSiblingCorrect(tc.questionType, tc.settingCorrect); got != tc.want {
				t.Errorf("clearSiblingCorrect(%q, %v) = %v, want %v",
					tc.questionType, tc.settingCorrect, got, tc.want)
			}
		})
	}
}

// Marking answers correct one after another on a simple question must always
// leave exactly one correct answer.
func TestSimpleQuestionKeepsSingleCorrect(t *testing.T) {
	answers := []models.Answer{
		{AnswerOption: "A", Correct: false},
		{AnswerOption: "B", Correct: false},
		{AnswerOption: "C", Correct: false},
	}
	markCorrect := func(idx int) {
		if clearSiblingCorrect(models.QuestionTypeSimple, true) {
			for i := range answers {
				answers[i].Correct = i == idx
			}
			return
		}
		answers[idx].Correct = true
	}

	markCorrect(0)
	markCorrect(2)

	correct := 0
	for _, a := range answers {
		if a.Correct {
			correct++
			if a.AnswerOption != "C" {
				t.Errorf("answer %q still correct after marking C", a.AnswerOption)
			}
		}
	}
	if correct != 1 {
		t.Fatalf("got %d correct answers, want exactly 1", correct)
	}
}

func TestAnswerEditAllowed(t *testing.T) {
	unlocked := &models.Quiz{QuizState: models.QuizStateUnlocked}
	locked := &models.Quiz{QuizState: models.QuizStateLocked}
	cases := []struct {
		name         string
		quiz         *models.Quiz
		questionType string
		want         bool
	}{
		{"unlocked simple", unlocked, models.QuestionTypeSimple, true},
		{"unlocked open", unlocked, models.QuestionTypeOpen, true},
		{"locked simple", locked, models.QuestionTypeSimple, false},
		{"locked multiple-choice", locked, models.QuestionTypeMultipleChoice, false},
		{"locked open", locked, models.QuestionTypeOpen, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			question := &models.Question{QuestionType: tc.questionType}
			if got := answerEditAllowed(tc.quiz, question); got != tc.want {
				t.Errorf("answerEditAllowed(%s, %s) = %v, want %v",
					tc.quiz.QuizState, tc.questionType, got, tc.want)
			}
		})
	}
}
