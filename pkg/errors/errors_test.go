package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", KindConflict, "test", 409)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}

	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}

	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestCopiesMatchSentinel(t *testing.T) {
	wrapped := fmt.Errorf("ad service: approve: %w", ErrInvalidTransition.WithMessage("already approved"))
	if !stdErrors.Is(wrapped, ErrInvalidTransition) {
		t.Fatal("expected wrapped copy to match sentinel")
	}
	if stdErrors.Is(wrapped, ErrForbidden) {
		t.Fatal("expected different codes not to match")
	}
	if KindOf(wrapped) != KindInvalidTransition {
		t.Fatalf("unexpected kind %s", KindOf(wrapped))
	}
}

func TestNewValidationFailedKeepsOrder(t *testing.T) {
	fields := []FieldError{
		{Field: "offerType", Message: "is required"},
		{Field: "livingArea", Message: "must be greater than 0"},
	}
	err := NewValidationFailed(fields)
	fields[0].Field = "mutated"

	if err.Kind != KindValidationFailed {
		t.Fatalf("unexpected kind %s", err.Kind)
	}
	if len(err.Fields) != 2 || err.Fields[0].Field != "offerType" || err.Fields[1].Field != "livingArea" {
		t.Fatalf("unexpected fields %+v", err.Fields)
	}
	if ErrValidationFailed.Fields != nil {
		t.Fatal("expected sentinel to remain without fields")
	}
	if !IsKind(err, KindValidationFailed) {
		t.Fatal("expected IsKind to match")
	}
}

func TestKindOfUnknownIsInternal(t *testing.T) {
	if KindOf(stdErrors.New("x")) != KindInternal {
		t.Fatal("expected plain errors to be internal")
	}
	if KindOf(nil) != "" {
		t.Fatal("expected nil error to have no kind")
	}
}
