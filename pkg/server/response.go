package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"atelier/pkg/sample"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Success: true, Data: data})
}

// writeMessage answers with success:false unless code is 2xx
func writeMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Success: code >= 200 && code < 300, Message: message})
}

// writeError maps backend errors to statuses; the message is shown to the user as is
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sample.ErrInvalid):
		writeMessage(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), sample.ErrInvalid.Error()+": "))
	case errors.Is(err, sample.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body", sample.ErrInvalid)
	}
	return nil
}

func isClientError(err error) bool {
	return errors.Is(err, sample.ErrInvalid) || errors.Is(err, sample.ErrNotFound) || errors.Is(err, ErrInvalidCredentials)
}
