package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTransport    = errors.New("transport failure")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
)

// TransportError means no usable response arrived
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Kind classifies a response the server did send
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindServer
)

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrServer
	}
}

// Error is a rejected request. Message is the server's envelope message, if any.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (%d): %s", e.Kind.sentinel(), e.Status, e.Message)
	}
	return fmt.Sprintf("%v (%d)", e.Kind.sentinel(), e.Status)
}

func (e *Error) Is(target error) bool { return target == e.Kind.sentinel() }

// kindOf maps an HTTP status of a failed response to a Kind
func kindOf(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// UserMessage renders err as the inline text shown next to the failed action
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	switch {
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	case errors.Is(err, ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return "Could not reach the server. Check your connection and try again."
	case errors.As(err, &apiErr) && apiErr.Kind == KindValidation && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, ErrValidation):
		return "The server rejected the request."
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, ErrNotFound):
		return "This item no longer exists. Refresh the list and try again."
	case errors.Is(err, ErrServer):
		return "The server failed to process the request."
	}
	return err.Error()
}
