package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserInput      = errors.New("user input error")
	ErrAuthentication = errors.New("authentication error")
	ErrProtocol       = errors.New("protocol error")
	ErrTransport      = errors.New("transport error")
	ErrConfiguration  = errors.New("configuration error")
)

// Kind identifies the failure category reported at the pipeline boundary.
type Kind string

const (
	KindUserInput      Kind = "user_input"
	KindAuthentication Kind = "authentication"
	KindProtocol       Kind = "protocol"
	KindTransport      Kind = "transport"
	KindConfiguration  Kind = "configuration"
	KindInternal       Kind = "internal"
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureKind maps a pipeline error to the category the orchestrator reports
// to the user. Errors that carry no marker are internal faults.
func FailureKind(err error) Kind {
	switch {
	case errors.Is(err, ErrUserInput):
		return KindUserInput
	case errors.Is(err, ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, ErrProtocol):
		return KindProtocol
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindInternal
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
