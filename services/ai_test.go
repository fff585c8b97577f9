package services

import (
	gocontext "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneratedQuestions(t *testing.T) {
	raw := `[{"question": "2 + 2?", "options": ["3", "4", "5", "6"], "answer": "4"},
	         {"question": "7 - 3?", "options": ["4", "5", "6", "7"], "answer": "4"}]`

	questions, err := parseGeneratedQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, 0, questions[0].ID)
	assert.Equal(t, 1, questions[1].ID)
	assert.Equal(t, "2 + 2?", questions[0].Question)
	assert.Equal(t, "4", questions[0].Answer)
	assert.Len(t, questions[0].Options, 4)
}

func TestParseGeneratedQuestionsStripsCodeFence(t *testing.T) {
	raw := "```json\n[{\"question\": \"Q?\", \"options\": [\"a\", \"b\"], \"answer\": \"a\"}]\n```"

	questions, err := parseGeneratedQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Q?", questions[0].Question)
}

func TestParseGeneratedQuestionsRejectsMalformed(t *testing.T) {
	_, err := parseGeneratedQuestions("not json at all")
	assert.Error(t, err)

	_, err = parseGeneratedQuestions("[]")
	assert.Error(t, err)

	// Answer must appear among the options verbatim.
	_, err = parseGeneratedQuestions(`[{"question": "Q?", "options": ["a", "b"], "answer": "c"}]`)
	assert.Error(t, err)

	// Fewer than two options is not a multiple-choice question.
	_, err = parseGeneratedQuestions(`[{"question": "Q?", "options": ["a"], "answer": "a"}]`)
	assert.Error(t, err)
}

func TestGenerateQuestionsDisabledWithoutClient(t *testing.T) {
	svc := &AIService{}
	assert.False(t, svc.Enabled())

	_, err := svc.GenerateQuestions(gocontext.Background(), "fractions", 5, 10, "")
	assertAppError(t, err, 422)
}

func TestBuildPromptIncludesConstraints(t *testing.T) {
	svc := &AIService{}

	prompt := svc.buildPrompt("the solar system", 7, 12, "German")
	assert.Contains(t, prompt, "exactly 12 multiple-choice")
	assert.Contains(t, prompt, "the solar system")
	assert.Contains(t, prompt, "Difficulty: 7")
	assert.Contains(t, prompt, "German")
	assert.Contains(t, prompt, "JSON array")
}
