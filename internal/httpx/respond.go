// internal/httpx/respond.go
package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/taskhub/taskhub/internal/apperr"
)

// ErrorBody is the envelope returned for every non-2xx response.
type ErrorBody struct {
	Error  string              `json:"error"`
	Code   apperr.Kind         `json:"code"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

// WriteJSON serializes v with the given status. A nil v writes the status only.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("httpx: encode response: %v", err)
	}
}

// WriteError maps an error to its HTTP status and renders the error envelope.
// Internal errors are logged and masked with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		log.Printf("httpx: internal error: %v", err)
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{
			Error: "internal server error",
			Code:  apperr.KindInternal,
		})
		return
	}

	status := statusFor(ae.Kind)
	if status == http.StatusInternalServerError {
		log.Printf("httpx: internal error: %v", err)
		WriteJSON(w, status, ErrorBody{Error: "internal server error", Code: apperr.KindInternal})
		return
	}

	WriteJSON(w, status, ErrorBody{Error: ae.Message, Code: ae.Kind, Fields: ae.Fields})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidTransition, apperr.KindParentNotFound, apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}
	return nil
}
