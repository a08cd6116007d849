package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrUserInput, "snapshot", "load", "project file missing", nil)
	if !errors.Is(err, ErrUserInput) {
		t.Fatalf("expected user input marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "snapshot: load: project file missing") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrTransport, "remote", "publish", "request failed", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport marker, got %v", err)
	}
}

func TestFailureKind(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{Wrap(ErrUserInput, "snapshot", "", "dirty project", nil), KindUserInput},
		{Wrap(ErrAuthentication, "remote", "", "no token", nil), KindAuthentication},
		{Wrap(ErrProtocol, "remote", "validate", "corrupted body", nil), KindProtocol},
		{Wrap(ErrTransport, "remote", "login", "", nil), KindTransport},
		{Wrap(ErrConfiguration, "config", "", "missing base url", nil), KindConfiguration},
		{fmt.Errorf("plain failure"), KindInternal},
	}
	for _, tc := range cases {
		if got := FailureKind(tc.err); got != tc.want {
			t.Errorf("FailureKind(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestWrapNilMarkerDefaults(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration fallback, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected generic detail, got %v", err)
	}
}
