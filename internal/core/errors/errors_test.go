package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeParseFailure, "unexpected token")
		if err.Error() != "[PARSE_FAILURE] unexpected token" {
			t.Errorf("expected [PARSE_FAILURE] unexpected token, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("disk full")
		err := Wrap(original, CodeSinkFailure, "write artifact")
		expected := "[SINK_FAILURE] write artifact: disk full"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to the original")
		}
	})

	t.Run("ContextIsSortedInMessage", func(t *testing.T) {
		err := New(CodeParseFailure, "syntax error")
		err = AddContext(err, CtxPath, "main.js")
		err = AddContext(err, CtxLine, 3)
		expected := "[PARSE_FAILURE] syntax error (line=3 path=main.js)"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("AddContextOnPlainError", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxOperation, "analyze")
		if !IsCode(err, CodeInternal) {
			t.Errorf("expected plain error to be wrapped as internal, got %v", err)
		}
		if AddContext(nil, CtxPath, "x") != nil {
			t.Error("expected nil error to stay nil")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeSinkFailure) {
			t.Error("expected IsCode to return false for CodeSinkFailure")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("run: %w", New(CodeSinkFailure, "write failed"))
		if !IsCode(err, CodeSinkFailure) {
			t.Error("expected IsCode to see through fmt wrapping")
		}
		if CodeOf(err) != CodeSinkFailure {
			t.Errorf("expected CodeOf=%s, got %s", CodeSinkFailure, CodeOf(err))
		}
		if CodeOf(errors.New("plain")) != "" {
			t.Error("expected empty code for plain error")
		}
	})
}
