package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateJSONString_VoiceQuestions(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "five questions",
			doc:  `{"questions": ["What is Go?", "Explain channels", "What is a slice?", "Describe defer", "What is an interface?"]}`,
		},
		{
			name: "extra questions allowed",
			doc:  `{"questions": ["Question 1", "Question 2", "Question 3", "Question 4", "Question 5", "Question 6"]}`,
		},
		{
			name:    "too few",
			doc:     `{"questions": ["What is Go?"]}`,
			wantErr: true,
		},
		{
			name:    "wrong item type",
			doc:     `{"questions": [1, 2, 3, 4, 5]}`,
			wantErr: true,
		},
		{
			name:    "missing field",
			doc:     `{"items": []}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSONString(VoiceQuestions, tt.doc)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
			assert.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, VoiceQuestions, validationErr.Schema)
		})
	}
}

func TestValidateJSONString_Malformed(t *testing.T) {
	err := ValidateJSONString(VoiceQuestions, `{"questions": [`)
	require.Error(t, err)
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr))
}

func TestValidateValue_CodingBank(t *testing.T) {
	valid := map[string]any{
		"easy": []any{
			map[string]any{"id": "e1", "title": "Two Sum", "description": "Find two numbers"},
		},
	}
	assert.NoError(t, ValidateValue(CodingBank, valid))

	invalid := map[string]any{
		"extreme": []any{},
	}
	assert.Error(t, ValidateValue(CodingBank, invalid))

	missingTitle := map[string]any{
		"hard": []any{map[string]any{"id": "h1", "description": "x"}},
	}
	assert.Error(t, ValidateValue(CodingBank, missingTitle))
}

func TestUnknownSchema(t *testing.T) {
	err := ValidateJSONString("nope", `{}`)
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "nope", loadErr.Name)
}
