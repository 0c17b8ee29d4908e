package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(ScreeningFile, KeyScoreCode)
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Code}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(ScreeningFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render(ScreeningFile, KeyScoreSpokenAnswer, map[string]string{
		"Question": "What is a goroutine?",
		"Answer":   "A lightweight thread managed by the Go runtime",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "What is a goroutine?")
	assert.NotContains(t, out, "{{.")
}

func TestRender_MissingValue(t *testing.T) {
	ClearCache()

	_, err := Render(ScreeningFile, KeyScoreSpokenAnswer, map[string]string{"Question": "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{.Answer}}")
}

func TestList_ScreeningKeys(t *testing.T) {
	ClearCache()

	keys, err := List(ScreeningFile)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyVoiceQuestions, KeyScoreCode, KeyScoreSpokenAnswer}, keys)
}
