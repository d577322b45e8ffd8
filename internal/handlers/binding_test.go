package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type bindTarget struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		expected    bindTarget
		expectError bool
	}{
		{
			name:     "wrapped payload",
			key:      "record",
			body:     `{"record": {"name": "Asha Traders", "amount": 50000}}`,
			expected: bindTarget{Name: "Asha Traders", Amount: 50000},
		},
		{
			name:     "bare payload",
			key:      "record",
			body:     `{"name": "Asha Traders", "amount": 50000}`,
			expected: bindTarget{Name: "Asha Traders", Amount: 50000},
		},
		{
			name:     "wrapper key absent falls back to bare",
			key:      "record",
			body:     `{"other": "value", "name": "Binod Stores", "amount": 12000}`,
			expected: bindTarget{Name: "Binod Stores", Amount: 12000},
		},
		{
			name:     "different wrapper key",
			key:      "customer",
			body:     `{"customer": {"name": "Chitra & Co", "amount": 7500}}`,
			expected: bindTarget{Name: "Chitra & Co", Amount: 7500},
		},
		{
			name:        "type mismatch in bare payload",
			key:         "record",
			body:        `{"name": "Dev", "amount": "not a number"}`,
			expectError: true,
		},
		{
			name:        "type mismatch inside wrapper",
			key:         "record",
			body:        `{"record": {"name": "Dev", "amount": "not a number"}}`,
			expectError: true,
		},
		{
			name:        "wrapper value is not an object",
			key:         "record",
			body:        `{"record": "some string"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result bindTarget
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
