// internal/server/router.go
package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/taskhub/taskhub/internal/handlers"
	"github.com/taskhub/taskhub/internal/httpx"
	"github.com/taskhub/taskhub/internal/middleware"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/policy"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/pkg/auth"
)

// Deps carries everything the router needs.
type Deps struct {
	Auth     *handlers.AuthHandler
	Users    *handlers.UserHandler
	Tasks    *handlers.TaskHandler
	Comments *handlers.CommentHandler

	TokenManager   *auth.TokenManager
	UserRepo       repository.UserRepository
	AllowedOrigins string
}

// route binds one endpoint to its policy registry entry. Routes with no
// explicit policies fall back to the group entry, or to the default of
// authenticated access with no role restriction.
type route struct {
	method   string
	pattern  string
	id       policy.RouteID
	handler  http.HandlerFunc
	policies []policy.Policy
}

// NewRouter assembles the full HTTP surface: the policy registry, the
// authentication and authorization gates in that order, and the endpoint
// handlers.
func NewRouter(deps Deps) http.Handler {
	registry := policy.NewRegistry()
	registry.RegisterGroup("auth", policy.Public())
	registry.RegisterGroup("admin", policy.RequireRoles(models.RoleAdmin))

	routes := []route{
		{method: http.MethodPost, pattern: "/api/auth/register", id: policy.RouteID{Group: "auth", Name: "register"}, handler: deps.Auth.Register},
		{method: http.MethodPost, pattern: "/api/auth/login", id: policy.RouteID{Group: "auth", Name: "login"}, handler: deps.Auth.Login},
		{method: http.MethodPost, pattern: "/api/auth/refresh", id: policy.RouteID{Group: "auth", Name: "refresh"}, handler: deps.Auth.Refresh},
		// Logout and password changes override the group's public policy.
		{method: http.MethodPost, pattern: "/api/auth/logout", id: policy.RouteID{Group: "auth", Name: "logout"}, handler: deps.Auth.Logout, policies: []policy.Policy{policy.Authenticated()}},
		{method: http.MethodPost, pattern: "/api/auth/change-password", id: policy.RouteID{Group: "auth", Name: "change_password"}, handler: deps.Auth.ChangePassword, policies: []policy.Policy{policy.Authenticated()}},

		{method: http.MethodGet, pattern: "/api/users/me", id: policy.RouteID{Group: "users", Name: "me"}, handler: deps.Users.Me},
		{method: http.MethodGet, pattern: "/api/users/me/security-events", id: policy.RouteID{Group: "users", Name: "security_events"}, handler: deps.Users.SecurityEvents},
		{method: http.MethodGet, pattern: "/api/users/{id}", id: policy.RouteID{Group: "users", Name: "get"}, handler: deps.Users.Get},
		{method: http.MethodPatch, pattern: "/api/users/{id}", id: policy.RouteID{Group: "users", Name: "update"}, handler: deps.Users.Update},
		{method: http.MethodGet, pattern: "/api/users", id: policy.RouteID{Group: "admin", Name: "users.list"}, handler: deps.Users.List},
		{method: http.MethodDelete, pattern: "/api/users/{id}", id: policy.RouteID{Group: "admin", Name: "users.delete"}, handler: deps.Users.Delete},
		{method: http.MethodPost, pattern: "/api/users/{id}/unlock", id: policy.RouteID{Group: "admin", Name: "users.unlock"}, handler: deps.Users.Unlock},

		{method: http.MethodPost, pattern: "/api/tasks", id: policy.RouteID{Group: "tasks", Name: "create"}, handler: deps.Tasks.Create},
		{method: http.MethodGet, pattern: "/api/tasks", id: policy.RouteID{Group: "tasks", Name: "list"}, handler: deps.Tasks.List},
		{method: http.MethodGet, pattern: "/api/tasks/{id}", id: policy.RouteID{Group: "tasks", Name: "get"}, handler: deps.Tasks.Get},
		{method: http.MethodPatch, pattern: "/api/tasks/{id}", id: policy.RouteID{Group: "tasks", Name: "update"}, handler: deps.Tasks.Update},
		{method: http.MethodPost, pattern: "/api/tasks/{id}/status", id: policy.RouteID{Group: "tasks", Name: "transition"}, handler: deps.Tasks.Transition},
		{method: http.MethodDelete, pattern: "/api/tasks/{id}", id: policy.RouteID{Group: "tasks", Name: "delete"}, handler: deps.Tasks.Delete},

		{method: http.MethodPost, pattern: "/api/tasks/{id}/comments", id: policy.RouteID{Group: "comments", Name: "create"}, handler: deps.Comments.Create},
		{method: http.MethodGet, pattern: "/api/tasks/{id}/comments", id: policy.RouteID{Group: "comments", Name: "list"}, handler: deps.Comments.ListByTask},
		{method: http.MethodPatch, pattern: "/api/comments/{commentID}", id: policy.RouteID{Group: "comments", Name: "edit"}, handler: deps.Comments.Edit},
		{method: http.MethodDelete, pattern: "/api/comments/{commentID}", id: policy.RouteID{Group: "comments", Name: "delete"}, handler: deps.Comments.Delete},
		{method: http.MethodPost, pattern: "/api/comments/{commentID}/restore", id: policy.RouteID{Group: "comments", Name: "restore"}, handler: deps.Comments.Restore},
	}

	for _, rt := range routes {
		if len(rt.policies) > 0 {
			registry.Register(rt.id, rt.policies...)
		}
	}
	registry.Freeze()

	gates := middleware.NewGates(registry, deps.TokenManager, deps.UserRepo)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, rt := range routes {
		r.With(gates.Authenticate(rt.id), gates.Authorize(rt.id)).
			Method(rt.method, rt.pattern, rt.handler)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   splitOrigins(deps.AllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
