package ddr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ddrpub/internal/services"
)

// ResultKind is the normalized category of a remote response.
type ResultKind string

const (
	KindSuccess     ResultKind = "success"
	KindClientError ResultKind = "client_error"
	KindServerError ResultKind = "server_error"
	KindUnknown     ResultKind = "unknown"
)

// ErrorBody is the error document the service returns on 400/401/403/500.
type ErrorBody struct {
	Detail   string `json:"detail"`
	DetailFR string `json:"detail_fr"`
	Status   int    `json:"status"`
	Title    string `json:"title"`
	Type     string `json:"type"`
}

// Result is the pipeline-local outcome of one remote operation.
type Result struct {
	Operation string
	Kind      ResultKind
	Status    int
	Reason    string
	Details   string
	Body      *ErrorBody
}

// Success reports whether the operation reached its expected status.
func (r *Result) Success() bool { return r.Kind == KindSuccess }

// FeedbackLines renders the result for the user log: the bilingual error
// details on failure, or the pretty-printed response document on success.
func (r *Result) FeedbackLines() []string {
	var lines []string
	if r.Body != nil {
		if r.Body.Title != "" {
			lines = append(lines, r.Body.Title)
		}
		for _, detail := range []string{r.Body.Detail, r.Body.DetailFR} {
			for _, line := range strings.Split(detail, "\n") {
				if line != "" {
					lines = append(lines, line)
				}
			}
		}
		return lines
	}
	for _, line := range strings.Split(r.Details, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// interpret maps HTTP status plus body to a normalized Result. A body that
// cannot be parsed as the documented error shape when an error is expected
// escalates to a protocol error rather than being swallowed.
func interpret(operation string, wantStatus, status int, body []byte, url string) (*Result, error) {
	result := &Result{
		Operation: operation,
		Status:    status,
		Reason:    http.StatusText(status),
	}

	if status == wantStatus {
		result.Kind = KindSuccess
		result.Details = prettyDetails(body)
		return result, nil
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		result.Kind = KindClientError
	case http.StatusInternalServerError:
		result.Kind = KindServerError
	default:
		result.Kind = KindUnknown
		return result, nil
	}

	var errBody ErrorBody
	if err := json.Unmarshal(body, &errBody); err != nil || errBody.Detail == "" {
		return result, services.Wrap(services.ErrProtocol, "remote", operation,
			fmt.Sprintf("the response of the DDR Publication API is corrupted: %s (status %d %s)", url, status, result.Reason), err)
	}
	result.Body = &errBody
	return result, nil
}

// prettyDetails re-indents a JSON response document for log display,
// replacing leading spaces with dots so indentation survives log rendering.
func prettyDetails(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return string(trimmed)
	}
	pretty, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return string(trimmed)
	}

	lines := strings.Split(string(pretty), "\n")
	for i, line := range lines {
		leading := len(line) - len(strings.TrimLeft(line, " "))
		lines[i] = strings.Repeat(".", leading) + line[leading:]
	}
	return strings.Join(lines, "\n")
}

// classify maps a non-success result to its error marker for the boundary.
func classify(result *Result) error {
	switch result.Kind {
	case KindClientError:
		marker := services.ErrUserInput
		if result.Status == http.StatusUnauthorized || result.Status == http.StatusForbidden {
			marker = services.ErrAuthentication
		}
		detail := fmt.Sprintf("status %d", result.Status)
		if result.Body != nil {
			detail = result.Body.Detail
		}
		return services.Wrap(marker, "remote", result.Operation, detail, nil)
	case KindServerError:
		detail := fmt.Sprintf("server error (status %d)", result.Status)
		if result.Body != nil && result.Body.Detail != "" {
			detail = result.Body.Detail
		}
		return services.Wrap(services.ErrProtocol, "remote", result.Operation, detail, nil)
	case KindUnknown:
		return services.Wrap(services.ErrProtocol, "remote", result.Operation,
			fmt.Sprintf("unexpected status %d %s", result.Status, result.Reason), nil)
	default:
		return nil
	}
}
