package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	config "github.com/radiquiz/backend/configs"
	openai "github.com/sashabaranov/go-openai"
)

// GenerationRequest carries the instructor's parameters for AI-assisted
// question generation.
type GenerationRequest struct {
	Topic               string
	Language            string
	Difficulty          string
	QuestionType        string
	Quantity            int
	SupplementalContext string
}

// GeneratedAnswer is one proposed answer option from the model.
type GeneratedAnswer struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// GeneratedQuestion is one proposed question from the model, before
// normalization.
type GeneratedQuestion struct {
	QuestionText  string            `json:"question_text"`
	QuestionType  string            `json:"question_type"`
	Points        *float64          `json:"points"`
	NumberOfLines *int              `json:"number_of_lines"`
	Answers       []GeneratedAnswer `json:"answers"`
}

// QuestionGenerator wraps the OpenAI client behind a small interface so the
// handler can be exercised without network access.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req GenerationRequest) ([]GeneratedQuestion, error)
}

type openAIGenerator struct {
	client *openai.Client
}

// NewQuestionGenerator builds the production generator from OPENAI_API_KEY.
func NewQuestionGenerator() QuestionGenerator {
	return &openAIGenerator{client: openai.NewClient(config.Config("OPENAI_API_KEY"))}
}

const generatorSystemPrompt = "You design reliable AMC questions and answer keys. " +
	"Generate exam questions and submit them with the submit_questions tool."

func (g *openAIGenerator) GenerateQuestions(ctx context.Context, req GenerationRequest) ([]GeneratedQuestion, error) {
	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: generatorSystemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildGenerationPrompt(req),
				},
			},
			Tools: []openai.Tool{
				{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        "submit_questions",
						Description: "Submit generated quiz questions",
						Parameters: map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"questions": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"question_text": map[string]interface{}{
												"type":        "string",
												"description": "The question statement; LaTeX allowed for formulas",
											},
											"question_type": map[string]interface{}{
												"type": "string",
												"enum": []string{"simple", "multiple-choice", "open"},
											},
											"answers": map[string]interface{}{
												"type": "array",
												"items": map[string]interface{}{
													"type": "object",
													"properties": map[string]interface{}{
														"text":       map[string]interface{}{"type": "string"},
														"is_correct": map[string]interface{}{"type": "boolean"},
													},
													"required": []string{"text", "is_correct"},
												},
											},
										},
										"required": []string{"question_text", "question_type", "answers"},
									},
								},
							},
							"required": []string{"questions"},
						},
					},
				},
			},
			ToolChoice: openai.ToolChoice{
				Type:     openai.ToolTypeFunction,
				Function: openai.ToolFunction{Name: "submit_questions"},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}
	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_questions" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var payload struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	return payload.Questions, nil
}

func buildGenerationPrompt(req GenerationRequest) string {
	var sb strings.Builder

	sb.WriteString("Create exam questions for Auto Multiple Choice.\n")
	fmt.Fprintf(&sb, "Language: %s\n", req.Language)
	fmt.Fprintf(&sb, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&sb, "Difficulty: %s\n", req.Difficulty)
	fmt.Fprintf(&sb, "Question type: %s\n", req.QuestionType)
	fmt.Fprintf(&sb, "Quantity: %d\n", req.Quantity)
	sb.WriteString("Difficulty definitions: easy = direct recall or single-step routine; " +
		"average = short application or synthesis task; " +
		"hard = multi-step reasoning or subtle edge cases.\n")
	sb.WriteString("Question type definitions: simple = multiple-choice question with exactly one correct answer; " +
		"multiple-choice = question where zero, one, or multiple answer options may be correct; " +
		"open = question expecting a written response accompanied by one model answer " +
		"stored in the answers list with is_correct set to true.\n")
	sb.WriteString("You may express any formulas using LaTeX code. " +
		"Align rigor with the stated difficulty without declaring it in the text. Avoid markdown formatting.\n")

	if context := strings.TrimSpace(req.SupplementalContext); context != "" {
		sb.WriteString("Context material:\n")
		sb.WriteString(context)
		sb.WriteString("\n")
	}
	return sb.String()
}

// NormalizedQuestion is a generated question with defaults resolved, ready
// for insertion.
type NormalizedQuestion struct {
	QuestionText  string
	QuestionType  string
	Points        float64
	NumberOfLines *int
	Answers       []GeneratedAnswer
}

// NormalizeGenerated applies the insertion defaults to raw model output:
// blank questions are dropped, the requested type backfills a missing one,
// points default to 1.0 (0.0 for open questions), open questions get 5
// answer lines, blank answer options are dropped, and the surviving answers
// are shuffled so the correct option does not always come first.
func NormalizeGenerated(raw []GeneratedQuestion, requestedType string, shuffle func(n int, swap func(i, j int))) []NormalizedQuestion {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	var normalized []NormalizedQuestion
	for _, item := range raw {
		questionText := strings.TrimSpace(item.QuestionText)
		if questionText == "" {
			continue
		}
		questionType := strings.TrimSpace(item.QuestionType)
		if questionType == "" {
			questionType = requestedType
		}

		points := 1.0
		if questionType == "open" {
			points = 0.0
		}
		if item.Points != nil {
			points = *item.Points
		}

		numberOfLines := item.NumberOfLines
		if numberOfLines == nil && questionType == "open" {
			defaultLines := 5
			numberOfLines = &defaultLines
		}

		var answers []GeneratedAnswer
		for _, answer := range item.Answers {
			text := strings.TrimSpace(answer.Text)
			if text == "" {
				continue
			}
			answers = append(answers, GeneratedAnswer{Text: text, IsCorrect: answer.IsCorrect})
		}
		shuffle(len(answers), func(i, j int) {
			answers[i], answers[j] = answers[j], answers[i]
		})

		normalized = append(normalized, NormalizedQuestion{
			QuestionText:  questionText,
			QuestionType:  questionType,
			Points:        points,
			NumberOfLines: numberOfLines,
			Answers:       answers,
		})
	}
	return normalized
}
