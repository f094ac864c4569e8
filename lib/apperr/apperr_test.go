package apperr

import (
	"errors"
	"io"
	"testing"

	"golang.org/x/xerrors"
)

func TestKindMatching(t *testing.T) {
	err := Wrap(DecodeError, "load", io.ErrUnexpectedEOF)
	wrapped := xerrors.Errorf("generate: %w", err)

	if !errors.Is(wrapped, DecodeError) {
		t.Error("expected DecodeError match")
	}
	if errors.Is(wrapped, InvalidInput) {
		t.Error("unexpected InvalidInput match")
	}
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("cause should stay reachable")
	}
	if k := KindOf(wrapped); k != DecodeError {
		t.Errorf("KindOf = %v", k)
	}
	if k := KindOf(io.EOF); k != 0 {
		t.Errorf("KindOf(io.EOF) = %v", k)
	}
}

func TestErrorString(t *testing.T) {
	err := New(InvalidInput, "convert", "width %d", -1)
	if s := err.Error(); s != "convert: invalid input: width -1" {
		t.Errorf("got %q", s)
	}
	if Wrap(EmptyResult, "x", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
}
