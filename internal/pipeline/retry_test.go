package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"segmark/internal/kb"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"status 400", &kb.StatusError{Code: 400}, false},
		{"status 429", &kb.StatusError{Code: 429}, true},
		{"status 503", &kb.StatusError{Code: 503}, true},
		{"wrapped status", fmt.Errorf("upload: %w", &kb.StatusError{Code: 500}), true},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("%s: IsRetryable = %v, want %v", tt.name, got, tt.want)
		}
	}
}
