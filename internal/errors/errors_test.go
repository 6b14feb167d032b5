package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestJournalError_Error(t *testing.T) {
	err := &JournalError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "entry not found",
	}

	expected := "NOT_FOUND: entry not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("content is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "content is required" {
		t.Errorf("Message = %q, want %q", err.Message, "content is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01HX")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "01HX" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "01HX")
	}
}

func TestNewFileNotFound(t *testing.T) {
	err := NewFileNotFound("/tmp/x.jsonl")

	if err.Code != ErrFileNotFound || err.Status != 404 {
		t.Errorf("got %s/%d, want FILE_NOT_FOUND/404", err.Code, err.Status)
	}
	if err.Details["path"] != "/tmp/x.jsonl" {
		t.Errorf("Details[path] = %v", err.Details["path"])
	}
}

func TestNewCancelled(t *testing.T) {
	err := NewCancelled("export")

	if err.Code != ErrCancelled || err.Message != "export cancelled" {
		t.Errorf("got %s %q", err.Code, err.Message)
	}
}

func TestNewAlreadyExists(t *testing.T) {
	err := NewAlreadyExists("01HX")

	if err.Code != ErrAlreadyExists {
		t.Errorf("Code = %q, want %q", err.Code, ErrAlreadyExists)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewContentTooLarge(t *testing.T) {
	err := NewContentTooLarge(100, 150)

	if err.Code != ErrContentTooLarge {
		t.Errorf("Code = %q, want %q", err.Code, ErrContentTooLarge)
	}
	if err.Status != 413 {
		t.Errorf("Status = %d, want 413", err.Status)
	}
	if err.Details["max_chars"] != 100 {
		t.Errorf("Details[max_chars] = %v, want 100", err.Details["max_chars"])
	}
	if err.Details["actual_chars"] != 150 {
		t.Errorf("Details[actual_chars] = %v, want 150", err.Details["actual_chars"])
	}
}

func TestNewMalformedResponse_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	err := NewMalformedResponse("not a JSON object", cause)

	if err.Code != ErrMalformedResponse {
		t.Errorf("Code = %q, want %q", err.Code, ErrMalformedResponse)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestNewServiceUnavailable(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewServiceUnavailable(cause)

	if err.Code != ErrServiceUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrServiceUnavailable)
	}
	if err.Status != 503 {
		t.Errorf("Status = %d, want 503", err.Status)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}

	bare := NewServiceUnavailable(nil)
	if bare.Message != "inference service unavailable" {
		t.Errorf("Message = %q", bare.Message)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	nilErr := NewInternal(nil)
	if nilErr.Message != "internal error" {
		t.Errorf("Message = %q, want %q", nilErr.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound("x"), ErrNotFound, true},
		{"different code", NewNotFound("x"), ErrInternal, false},
		{"wrapped", fmt.Errorf("ctx: %w", NewInvalidRequest("bad")), ErrInvalidRequest, true},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}
