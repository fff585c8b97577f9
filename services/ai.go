package services

import (
	gocontext "context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/shared"
)

// AIService generates multiple-choice question sets from a teacher prompt
// through the Gemini API.
type AIService struct {
	context.DefaultService

	client *genai.Client
	model  string
}

const AI_SVC = "ai_svc"

func (svc AIService) Id() string {
	return AI_SVC
}

func (svc *AIService) Configure(ctx *context.Context) error {
	svc.model = os.Getenv("GEMINI_MODEL")
	if svc.model == "" {
		svc.model = "gemini-2.0-flash"
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *AIService) Start() error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		// AI quizzes are optional; everything else works without a key.
		log.Warn("GEMINI_API_KEY not set, AI quiz generation disabled")
		return nil
	}

	client, err := genai.NewClient(gocontext.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	svc.client = client
	return nil
}

func (svc *AIService) Enabled() bool {
	return svc.client != nil
}

// aiQuestion is the shape the model is asked to emit.
type aiQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// GenerateQuestions asks the model for count MCQs on the prompt's topic at
// the given difficulty (1 easiest, 20 hardest).
func (svc *AIService) GenerateQuestions(ctx gocontext.Context, prompt string, difficulty, count int, language string) ([]model.GameQuestion, error) {
	if svc.client == nil {
		return nil, shared.ErrUnprocessable("AI quiz generation is not configured")
	}

	fullPrompt := svc.buildPrompt(prompt, difficulty, count, language)

	result, err := svc.client.Models.GenerateContent(ctx, svc.model, genai.Text(fullPrompt), nil)
	if err != nil {
		log.WithError(err).Error("Gemini generation failed")
		return nil, shared.ErrUnprocessable("Question generation failed, try again")
	}
	if result == nil {
		return nil, shared.ErrUnprocessable("Question generation returned no content")
	}

	text, err := result.Text()
	if err != nil || text == "" {
		return nil, shared.ErrUnprocessable("Question generation returned no content")
	}

	questions, err := parseGeneratedQuestions(text)
	if err != nil {
		log.WithError(err).WithField("raw", text).Error("Failed to parse generated questions")
		return nil, shared.ErrUnprocessable("Generated questions were malformed, try again")
	}

	if len(questions) > count {
		questions = questions[:count]
	}

	return questions, nil
}

func (svc *AIService) buildPrompt(topic string, difficulty, count int, language string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate exactly %d multiple-choice quiz questions about the following topic: %s\n", count, topic)
	fmt.Fprintf(&sb, "Difficulty: %d on a scale of 1 (elementary school) to 20 (expert).\n", difficulty)
	if language != "" {
		fmt.Fprintf(&sb, "Write the questions and options in %s.\n", language)
	}
	sb.WriteString(`Respond with ONLY a JSON array, no prose, in this exact shape:
[{"question": "...", "options": ["...", "...", "...", "..."], "answer": "..."}]
Each question has exactly 4 options and "answer" must be one of the options verbatim.`)

	return sb.String()
}

// parseGeneratedQuestions tolerates markdown code fences around the JSON,
// which the model emits despite instructions.
func parseGeneratedQuestions(text string) ([]model.GameQuestion, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var raw []aiQuestion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no questions in response")
	}

	questions := make([]model.GameQuestion, 0, len(raw))
	for i, q := range raw {
		if q.Question == "" || len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d incomplete", i)
		}
		if !containsOption(q.Options, q.Answer) {
			return nil, fmt.Errorf("question %d answer not among options", i)
		}
		questions = append(questions, model.GameQuestion{
			ID:       i,
			Question: q.Question,
			Answer:   q.Answer,
			Options:  q.Options,
		})
	}

	return questions, nil
}

func containsOption(options []string, answer string) bool {
	for _, opt := range options {
		if opt == answer {
			return true
		}
	}
	return false
}
