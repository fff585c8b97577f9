package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"SecurePass123!", true},
		{"aB3!efgh", true},
		{"short1A!", true},
		{"Sh1!", false},             // too short
		{"alllowercase123!", false}, // no uppercase
		{"ALLUPPERCASE123!", false}, // no lowercase
		{"NoNumbersHere!", false},
		{"NoSpecials123", false},
	}

	for _, tc := range cases {
		req := RegisterRequest{
			Email:       "user@example.com",
			Username:    "username",
			Password:    tc.password,
			InviteToken: "tok",
		}
		err := req.Validate()
		if tc.valid {
			assert.NoError(t, err, "password %q", tc.password)
		} else {
			assert.Error(t, err, "password %q", tc.password)
		}
	}
}

func TestEmailOrUsername(t *testing.T) {
	valid := []string{"user@example.com", "user.name+tag@sub.example.org", "johndoe", "a_b_c123"}
	for _, v := range valid {
		err := LoginRequest{EmailOrUsername: v, Password: "x"}.Validate()
		assert.NoError(t, err, "value %q", v)
	}

	invalid := []string{"ab", "has spaces", "bad@", "@example.com", strings.Repeat("x", 31)}
	for _, v := range invalid {
		err := LoginRequest{EmailOrUsername: v, Password: "x"}.Validate()
		assert.Error(t, err, "value %q", v)
	}
}

func TestJoinGuestRequestBounds(t *testing.T) {
	assert.NoError(t, JoinGuestRequest{GuestName: "speedy"}.Validate())
	assert.Error(t, JoinGuestRequest{}.Validate())
	assert.Error(t, JoinGuestRequest{GuestName: strings.Repeat("x", 51)}.Validate())
}

func TestGenerateQuizRequestBounds(t *testing.T) {
	ok := GenerateQuizRequest{Prompt: "fractions", Difficulty: 5, QuestionCount: 10}
	assert.NoError(t, ok.Validate())

	tooHard := ok
	tooHard.Difficulty = 21
	assert.Error(t, tooHard.Validate())

	tooMany := ok
	tooMany.QuestionCount = 51
	assert.Error(t, tooMany.Validate())

	noPrompt := ok
	noPrompt.Prompt = ""
	assert.Error(t, noPrompt.Validate())
}

func TestCreateValidationErrorResponse(t *testing.T) {
	err := RegisterRequest{Email: "not-an-email"}.Validate()
	require.Error(t, err)

	resp := CreateValidationErrorResponse(err)
	assert.Equal(t, 400, resp.Code)
	assert.Equal(t, "Validation failed", resp.Message)
	require.NotEmpty(t, resp.Errors)

	fields := map[string]string{}
	for _, ve := range resp.Errors {
		fields[ve.Field] = ve.Message
	}
	assert.Equal(t, "Invalid email format", fields["Email"])
	assert.Contains(t, fields["Password"], "is required")
}
