// internal/middleware/gates.go
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/taskhub/taskhub/internal/apperr"
	"github.com/taskhub/taskhub/internal/httpx"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/policy"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/pkg/auth"
)

// TokenVerifier validates bearer tokens presented on incoming requests.
type TokenVerifier interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// Gates wires the policy registry into the request chain. Authenticate must
// run before Authorize on every route.
type Gates struct {
	registry *policy.Registry
	tokens   TokenVerifier
	users    repository.UserRepository
}

func NewGates(registry *policy.Registry, tokens TokenVerifier, users repository.UserRepository) *Gates {
	return &Gates{
		registry: registry,
		tokens:   tokens,
		users:    users,
	}
}

// Authenticate resolves the caller's identity for the given route. Public
// routes pass through without credentials; everything else requires a valid
// bearer token backed by an active account.
func (g *Gates) Authenticate(route policy.RouteID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithClientInfo(r.Context(), r)

			pol := g.registry.PoliciesFor(route)
			if pol.Public {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			principal, err := g.authenticate(ctx, r)
			if err != nil {
				httpx.WriteError(w, err)
				return
			}

			ctx = WithPrincipal(ctx, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize enforces the route's requirements against the principal
// established by Authenticate: the account must still be active and, when a
// role set is declared, the principal's role must be in it. An empty role
// set admits any active authenticated caller.
func (g *Gates) Authorize(route policy.RouteID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pol := g.registry.PoliciesFor(route)
			if pol.Public {
				next.ServeHTTP(w, r)
				return
			}

			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, apperr.New(apperr.KindUnauthenticated, "authentication required"))
				return
			}
			if !principal.Active {
				httpx.WriteError(w, apperr.New(apperr.KindForbidden, "account is deactivated"))
				return
			}
			if !pol.RoleAllowed(principal.Role) {
				httpx.WriteError(w, apperr.New(apperr.KindForbidden, "insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *Gates) authenticate(ctx context.Context, r *http.Request) (models.Principal, error) {
	tokenString, err := auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return models.Principal{}, apperr.Wrap(apperr.KindUnauthenticated, "missing or malformed authorization header", err)
	}

	claims, err := g.tokens.ValidateAccessToken(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return models.Principal{}, apperr.Wrap(apperr.KindUnauthenticated, "token expired", err)
		}
		return models.Principal{}, apperr.Wrap(apperr.KindUnauthenticated, "invalid token", err)
	}

	user, err := g.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Principal{}, apperr.New(apperr.KindUnauthenticated, "account no longer exists")
		}
		return models.Principal{}, apperr.Internal("load user", err)
	}
	if !user.IsActive {
		return models.Principal{}, apperr.New(apperr.KindUnauthenticated, "account is deactivated")
	}

	return user.Principal(), nil
}
