package services

import "errors"

// Direction selects which way a question or subject moves.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is one of the two supported directions.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// SubjectLayout is one subject's ordered question-id list inside a full quiz
// layout. A slice of these is the unit the reorder endpoints exchange, so a
// move can be applied atomically and display numbers recomputed in one write.
type SubjectLayout struct {
	SubjectUUID   string
	QuestionUUIDs []string
}

var (
	ErrUnknownSubject  = errors.New("Unknown subject_uuid in ordering payload.")
	ErrUnknownQuestion = errors.New("Unknown question_uuid in ordering payload.")
	ErrIncompleteOrder = errors.New("Ordering payload must reference every existing question exactly once.")
	ErrSubjectMismatch = errors.New("subject_uuids must match existing subjects.")
)

func cloneLayout(layout []SubjectLayout) []SubjectLayout {
	cloned := make([]SubjectLayout, len(layout))
	for i, subject := range layout {
		questions := make([]string, len(subject.QuestionUUIDs))
		copy(questions, subject.QuestionUUIDs)
		cloned[i] = SubjectLayout{SubjectUUID: subject.SubjectUUID, QuestionUUIDs: questions}
	}
	return cloned
}

func locateQuestion(layout []SubjectLayout, questionUUID string) (subjectIdx, questionIdx int, ok bool) {
	for si, subject := range layout {
		for qi, id := range subject.QuestionUUIDs {
			if id == questionUUID {
				return si, qi, true
			}
		}
	}
	return 0, 0, false
}

// MoveQuestion shifts a question one slot up or down across the whole quiz
// layout. Moving up past a subject's first slot migrates the question to the
// previous subject's tail; moving down past the last slot migrates it to the
// next subject's head. Moving the first question of the first subject up, or
// the last question of the last subject down, is a no-op: the input layout is
// returned unchanged and moved is false. The input is never mutated.
func MoveQuestion(layout []SubjectLayout, questionUUID string, dir Direction) (result []SubjectLayout, moved bool) {
	si, qi, ok := locateQuestion(layout, questionUUID)
	if !ok {
		return layout, false
	}

	switch dir {
	case DirectionUp:
		if qi == 0 && si == 0 {
			return layout, false
		}
		result = cloneLayout(layout)
		if qi > 0 {
			questions := result[si].QuestionUUIDs
			questions[qi-1], questions[qi] = questions[qi], questions[qi-1]
			return result, true
		}
		// Migrate to the previous subject's tail.
		result[si].QuestionUUIDs = result[si].QuestionUUIDs[1:]
		result[si-1].QuestionUUIDs = append(result[si-1].QuestionUUIDs, questionUUID)
		return result, true

	case DirectionDown:
		if qi == len(layout[si].QuestionUUIDs)-1 && si == len(layout)-1 {
			return layout, false
		}
		result = cloneLayout(layout)
		if qi < len(result[si].QuestionUUIDs)-1 {
			questions := result[si].QuestionUUIDs
			questions[qi], questions[qi+1] = questions[qi+1], questions[qi]
			return result, true
		}
		// Migrate to the next subject's head.
		result[si].QuestionUUIDs = result[si].QuestionUUIDs[:qi]
		result[si+1].QuestionUUIDs = append([]string{questionUUID}, result[si+1].QuestionUUIDs...)
		return result, true
	}
	return layout, false
}

// MoveSubject swaps a subject with its neighbor in the given direction.
// Boundary moves are no-ops. The input is never mutated.
func MoveSubject(order []string, subjectUUID string, dir Direction) (result []string, moved bool) {
	idx := -1
	for i, id := range order {
		if id == subjectUUID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return order, false
	}

	target := idx - 1
	if dir == DirectionDown {
		target = idx + 1
	}
	if target < 0 || target >= len(order) {
		return order, false
	}

	result = make([]string, len(order))
	copy(result, order)
	result[idx], result[target] = result[target], result[idx]
	return result, true
}

// ValidateLayout checks an incoming full-quiz layout against the current
// state: only known subjects, and every existing question referenced exactly
// once.
func ValidateLayout(layout []SubjectLayout, knownSubjects map[string]bool, existingQuestions map[string]bool) error {
	provided := make(map[string]bool, len(existingQuestions))
	for _, subject := range layout {
		if !knownSubjects[subject.SubjectUUID] {
			return ErrUnknownSubject
		}
		for _, questionUUID := range subject.QuestionUUIDs {
			if !existingQuestions[questionUUID] {
				return ErrUnknownQuestion
			}
			if provided[questionUUID] {
				return ErrIncompleteOrder
			}
			provided[questionUUID] = true
		}
	}
	if len(provided) != len(existingQuestions) {
		return ErrIncompleteOrder
	}
	return nil
}

// ValidateSubjectOrder checks that a subject ordering references exactly the
// current subject set.
func ValidateSubjectOrder(order []string, knownSubjects map[string]bool) error {
	seen := make(map[string]bool, len(order))
	for _, subjectUUID := range order {
		if !knownSubjects[subjectUUID] || seen[subjectUUID] {
			return ErrSubjectMismatch
		}
		seen[subjectUUID] = true
	}
	if len(seen) != len(knownSubjects) {
		return ErrSubjectMismatch
	}
	return nil
}
