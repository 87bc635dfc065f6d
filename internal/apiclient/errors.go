package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of a failed response is read to build the message.
const maxErrorBody = 64 << 10

// StatusError is returned for a completed request with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// newStatusError prefers the backend's "detail", then "message", then a generic status line.
func newStatusError(resp *http.Response) *StatusError {
	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &body)

	msg := ""
	if s, ok := body.Detail.(string); ok && s != "" {
		msg = s
	} else if body.Detail != nil {
		if b, err := json.Marshal(body.Detail); err == nil {
			msg = string(b)
		}
	}
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

// TimeoutError marks an attempt aborted by its per-call timeout.
type TimeoutError struct {
	Endpoint string
	Timeout  string
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.Endpoint, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// RequestError is returned once the retry budget is spent (or the caller gave up).
// It wraps the last underlying failure.
type RequestError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of the last attempt, or 0 if it never got a response.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsTimeout reports whether the last attempt was aborted by its per-call timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
