// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clearrecordproj/clearrecord/internal/documents"
	"github.com/clearrecordproj/clearrecord/internal/eligibility"
	"github.com/clearrecordproj/clearrecord/internal/rules"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// requestError is a malformed request: bad JSON, an unknown wizard step.
type requestError struct {
	status int
	code   string
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

func badRequest(msg string) error {
	return &requestError{status: http.StatusBadRequest, code: "bad_request", msg: msg}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps domain errors to status codes. Internal errors carry no
// description so nothing about the failure leaks to the client.
func WriteError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	WriteJSON(w, status, body)
}

func classify(err error) (int, errorBody) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, errorBody{Error: reqErr.code, Description: reqErr.msg}
	case errors.Is(err, eligibility.ErrInvalidCase):
		return http.StatusBadRequest, errorBody{Error: "invalid_case", Description: err.Error()}
	case errors.Is(err, rules.ErrUnknownJurisdiction):
		return http.StatusNotFound, errorBody{Error: "unknown_jurisdiction", Description: err.Error()}
	case errors.Is(err, documents.ErrGeneration):
		return http.StatusUnprocessableEntity, errorBody{Error: "generation_failed", Description: err.Error()}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal_error"}
}
