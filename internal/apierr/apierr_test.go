package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	sr "github.com/example/cardlearn/internal/spaced_repetition"
	"github.com/example/cardlearn/pkg/models"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid action", fmt.Errorf("submit: %w", sr.ErrInvalidAction), http.StatusBadRequest, CodeInvalidAction},
		{"not found", fmt.Errorf("deck 3: %w", models.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"passthrough", InvalidRequest(errors.New("bad id")), http.StatusBadRequest, CodeInvalidRequest},
		{"wrapped passthrough", fmt.Errorf("auth: %w", Unauthorized(errors.New("no token"))), http.StatusUnauthorized, CodeUnauthorized},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			if got.Status != tt.status || got.Code != tt.code {
				t.Fatalf("From = %d/%s, want %d/%s", got.Status, got.Code, tt.status, tt.code)
			}
		})
	}
	if From(nil) != nil {
		t.Fatal("From(nil) should be nil")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error (418)" {
		t.Fatalf("Error() = %q", got)
	}
	if got := New(0, CodeInternal, nil).Error(); got != CodeInternal {
		t.Fatalf("Error() = %q", got)
	}
}
