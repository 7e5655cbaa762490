package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupReq struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,password"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type styleReq struct {
	Username string   `json:"username" validate:"omitempty,username"`
	Font     string   `json:"name" validate:"required,fontname"`
	Color    string   `json:"fillColor" validate:"required,hexcolor"`
	Goals    []string `json:"goals" validate:"max=2"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestFirstMessage_PasswordRules(t *testing.T) {
	v := newValidator()
	err := v.Struct(signupReq{Email: "a@x.com", Password: "password1", PasswordConfirm: "password1"})
	require.Error(t, err)
	assert.Equal(t, MsgPasswordRules, FirstMessage(err))
}

func TestFirstMessage_PasswordMismatch(t *testing.T) {
	v := newValidator()
	err := v.Struct(signupReq{Email: "a@x.com", Password: "Secret#123", PasswordConfirm: "Secret#124"})
	require.Error(t, err)
	assert.Equal(t, MsgPasswordsMismatch, FirstMessage(err))
}

func TestFirstMessage_UsesJSONNames(t *testing.T) {
	v := newValidator()
	err := v.Struct(signupReq{Email: "nope", Password: "Secret#123", PasswordConfirm: "Secret#123"})
	require.Error(t, err)
	assert.Equal(t, "email must be a valid email", FirstMessage(err))
}

func TestCustomTags(t *testing.T) {
	v := newValidator()
	require.NoError(t, v.Struct(styleReq{Username: "alice_01", Font: "Open-Sans", Color: "#ff00ff80"}))

	err := v.Struct(styleReq{Username: "a!", Font: "Open Sans", Color: "red", Goals: []string{"a", "b", "c"}})
	require.Error(t, err)
	d := ToDetails(err)
	assert.Len(t, d, 4)
	assert.Contains(t, d["username"], "letters, numbers")
	assert.Contains(t, d["name"], "letters, numbers and hyphens")
	assert.Contains(t, d["fillColor"], "hex color")
	assert.Equal(t, "goals must contain at most 2 items", d["goals"])
}

func TestIsHexColor(t *testing.T) {
	for s, want := range map[string]bool{
		"#fff":       true,
		"#1a2b3c":    true,
		"#1a2b3c4d":  true,
		"fff":        false,
		"#ff":        false,
		"#1a2b3c4d5": false,
	} {
		assert.Equal(t, want, IsHexColor(s), s)
	}
}

func TestJSONErrors(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte(`{"a":`), &dst)
	require.Error(t, err)
	assert.Equal(t, MsgInvalidJSON, FirstMessage(err))
	assert.Equal(t, map[string]string{"payload": MsgInvalidJSON}, ToDetails(err))

	assert.Equal(t, MsgInvalidPayload, FirstMessage(errors.New("multipart: NextPart: EOF")))
	assert.Empty(t, FirstMessage(nil))
}
