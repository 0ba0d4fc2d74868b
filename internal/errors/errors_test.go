package errors

import (
	"errors"
	"fmt"
	"testing"
)

var errNoGoal = errors.New("no active goal")

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "hinted error",
			err:      WithHint(errNoGoal, "run 'flashdo onboard' first"),
			expected: "Error: no active goal\nHint: run 'flashdo onboard' first",
		},
		{
			name:     "wrapped hinted error",
			err:      fmt.Errorf("certify: %w", WithHint(errNoGoal, "run 'flashdo onboard' first")),
			expected: "Error: certify: no active goal\nHint: run 'flashdo onboard' first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestWithHint(t *testing.T) {
	if WithHint(nil, "ignored") != nil {
		t.Error("WithHint(nil) should be nil")
	}
	err := WithHint(errNoGoal, "hint")
	if !errors.Is(err, errNoGoal) {
		t.Error("hinted error should unwrap to its cause")
	}
}
