// internal/handlers/common.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/taskhub/taskhub/internal/apperr"
	"github.com/taskhub/taskhub/internal/httpx"
	"github.com/taskhub/taskhub/internal/middleware"
	"github.com/taskhub/taskhub/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// listEnvelope wraps paginated collections.
type listEnvelope struct {
	Items  any `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// pagination reads limit and offset query parameters, clamping them to sane
// bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// principal pulls the authenticated caller from the context. The gates
// guarantee it is present on non-public routes; a miss is a wiring bug.
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
		return models.Principal{}, false
	}
	return p, true
}
