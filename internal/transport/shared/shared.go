// Package shared centralizes JSON response envelopes so every controller
// returns the same error shape.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	domainerrors "qms/pkg/domain-errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError translates a domain error into its HTTP response. Non-domain
// errors become a generic 500; their detail stays server-side.
func WriteError(w http.ResponseWriter, err error) {
	code := domainerrors.CodeOf(err)
	body := errorBody{Error: string(code), Message: "internal error"}

	var de *domainerrors.Error
	if errors.As(err, &de) {
		switch code {
		case domainerrors.CodePersistence, domainerrors.CodeInternal, domainerrors.CodePrecondition:
			// Generic message to the caller; the cause was already logged.
		default:
			body.Message = de.Message
			body.Detail = de.Detail
		}
	}

	WriteJSON(w, domainerrors.ToHTTPStatus(code), body)
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
