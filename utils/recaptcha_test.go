package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecaptchaPassed(t *testing.T) {
	tests := []struct {
		name   string
		result RecaptchaResult
		min    float64
		want   bool
	}{
		{"above threshold", RecaptchaResult{Success: true, Score: 0.9}, 0.5, true},
		{"at threshold", RecaptchaResult{Success: true, Score: 0.5}, 0.5, true},
		{"below threshold", RecaptchaResult{Success: true, Score: 0.3}, 0.5, false},
		{"failed verification", RecaptchaResult{Success: false, Score: 0.9}, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Passed(tt.min))
		})
	}
}

func TestRecaptchaResultDecoding(t *testing.T) {
	raw := `{"success": false, "score": 0, "error-codes": ["invalid-input-response"]}`

	var result RecaptchaResult
	require.NoError(t, json.Unmarshal([]byte(raw), &result))
	assert.False(t, result.Success)
	assert.Equal(t, []string{"invalid-input-response"}, result.ErrorCodes)
}
