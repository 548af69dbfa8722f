package apperrors

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type bracketColors struct{}

func (bracketColors) Red() string    { return "<red>" }
func (bracketColors) Yellow() string { return "<yellow>" }
func (bracketColors) Reset() string  { return "</>" }

func TestHandleCalculationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		colors   ColorProvider
		wantCode int
		contains string
	}{
		{"nil", nil, nil, ExitSuccess, ""},
		{"timeout", context.DeadlineExceeded, nil, ExitErrorTimeout, "Timeout"},
		{"canceled", context.Canceled, bracketColors{}, ExitErrorCanceled, "<yellow>Status: Canceled"},
		{"memory", MemoryError{Requested: 10, Limit: 4}, nil, ExitErrorGeneric, "Out of memory"},
		{"exception", ArithmeticError{Cause: ErrDivisionByZero}, bracketColors{}, ExitErrorGeneric, "<red>Status: Exception after 1s"},
		{"config", NewConfigError("bad flag"), nil, ExitErrorConfig, "unexpected error: bad flag"},
		{"generic", errors.New("boom"), nil, ExitErrorGeneric, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			code := HandleCalculationError(tt.err, time.Second, &buf, tt.colors)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.contains)
			}
			if tt.err == nil && buf.Len() != 0 {
				t.Errorf("nil error should print nothing, got %q", buf.String())
			}
		})
	}
}
