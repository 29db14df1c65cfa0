package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewCarriesCodeAndStack(t *testing.T) {
	err := New(ErrCodeCaseNotFound, "case not found")
	if err.Code != ErrCodeCaseNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeCaseNotFound, err.Code)
	}
	if err.Stack == "" {
		t.Error("expected stack to be captured")
	}
}

func TestErrorFormat(t *testing.T) {
	err := New(ErrCodeValidation, "bad input")
	want := "[COMMON_008] bad input"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	withDetail := err.WithDetail("field=matter_type")
	want = "[COMMON_008] bad input: field=matter_type"
	if withDetail.Error() != want {
		t.Errorf("expected %q, got %q", want, withDetail.Error())
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "ignored") != nil {
		t.Error("Wrap(nil, ...) must return nil")
	}
}

func TestWrapPreservesCodeOnUnknown(t *testing.T) {
	inner := New(ErrCodeDocumentNotFound, "doc missing")
	outer := Wrap(inner, CodeUnknown, "while analyzing")
	if outer.Code != ErrCodeDocumentNotFound {
		t.Errorf("expected inner code preserved, got %s", outer.Code)
	}
}

func TestUnwrapChain(t *testing.T) {
	base := fmt.Errorf("pgx: connection refused")
	wrapped := Wrap(base, ErrCodeDatabaseError, "query failed")
	if !errors.Is(wrapped, base) {
		t.Error("errors.Is must traverse the cause chain")
	}
}

func TestIsCode(t *testing.T) {
	err := Wrap(New(ErrCodeInsightNotFound, "gone"), ErrCodeInternal, "ctx")
	if !IsCode(err, ErrCodeInsightNotFound) {
		t.Error("IsCode must find nested codes")
	}
	if IsCode(err, ErrCodeConflict) {
		t.Error("IsCode must not match absent codes")
	}
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeNotFound, "x"), true},
		{New(ErrCodeCaseNotFound, "x"), true},
		{New(ErrCodeDocumentNotFound, "x"), true},
		{New(ErrCodeInsightNotFound, "x"), true},
		{New(ErrCodeValidation, "x"), false},
		{fmt.Errorf("plain"), false},
		{nil, false},
	}
	for i, tc := range cases {
		if got := IsNotFound(tc.err); got != tc.want {
			t.Errorf("case %d: IsNotFound = %v, want %v", i, got, tc.want)
		}
	}
}

func TestIsValidationCoversBothCodes(t *testing.T) {
	if !IsValidation(NewValidationOp("brain.analyze", "nil request")) {
		t.Error("NewValidationOp must satisfy IsValidation")
	}
	if !IsValidation(InvalidParam("page must be positive")) {
		t.Error("InvalidParam must satisfy IsValidation")
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != CodeOK {
		t.Error("nil error must return CodeOK")
	}
	if GetCode(fmt.Errorf("plain")) != CodeUnknown {
		t.Error("plain error must return CodeUnknown")
	}
	if GetCode(New(ErrCodeCacheError, "x")) != ErrCodeCacheError {
		t.Error("AppError code must be returned")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	if ErrCodeCaseNotFound.HTTPStatus() != 404 {
		t.Errorf("expected 404 for case not found, got %d", ErrCodeCaseNotFound.HTTPStatus())
	}
	if ErrCodeInsightTransitionInvalid.HTTPStatus() != 409 {
		t.Errorf("expected 409 for invalid transition, got %d", ErrCodeInsightTransitionInvalid.HTTPStatus())
	}
	if ErrorCode("NOPE").HTTPStatus() != 500 {
		t.Errorf("unmapped codes default to 500")
	}
}

func TestNilReceiverBuilders(t *testing.T) {
	var e *AppError
	if e.WithDetail("d") != nil {
		t.Error("WithDetail on nil must return nil")
	}
	if e.WithCause(fmt.Errorf("x")) != nil {
		t.Error("WithCause on nil must return nil")
	}
}
