// internal/server/router_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub/internal/handlers"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/internal/service"
	"github.com/taskhub/taskhub/pkg/auth"
)

type testEnv struct {
	t       *testing.T
	router  http.Handler
	store   *repository.MemoryStore
	tokens  *auth.TokenManager
	userSeq int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	tokenManager := auth.NewTokenManager("test-access", "test-refresh", 15*time.Minute, 24*time.Hour)
	securityLogger := service.NewSecurityLogger(store.Events())

	securityConfig := service.TestSecurityConfig()
	authService := service.NewAuthService(store.Users(), tokenManager, securityLogger, securityConfig, 24*time.Hour)
	userService := service.NewUserService(store.Users(), store.Events(), securityLogger)
	taskService := service.NewTaskService(store.Tasks(), store.Users())
	commentService := service.NewCommentService(store.Comments(), store.Tasks())

	router := NewRouter(Deps{
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUserHandler(userService),
		Tasks:          handlers.NewTaskHandler(taskService),
		Comments:       handlers.NewCommentHandler(commentService),
		TokenManager:   tokenManager,
		UserRepo:       store.Users(),
		AllowedOrigins: "*",
	})

	return &testEnv{t: t, router: router, store: store, tokens: tokenManager}
}

// addUser seeds a user directly and returns it with a valid access token.
func (e *testEnv) addUser(role models.Role) (*models.User, string) {
	e.t.Helper()
	e.userSeq++

	now := time.Now()
	user := &models.User{
		ID:        uuid.New().String(),
		Email:     fmt.Sprintf("user%d@example.com", e.userSeq),
		Username:  fmt.Sprintf("user%d", e.userSeq),
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(e.t, e.store.Users().Create(context.Background(), user))

	token, _, _, err := e.tokens.GenerateTokenPair(user.ID, user.Email, string(role))
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) addTask(creator *models.User) *models.Task {
	e.t.Helper()

	now := time.Now()
	task := &models.Task{
		ID:        uuid.New().String(),
		Title:     "Seeded task",
		Status:    models.TaskStatusTodo,
		Priority:  models.PriorityMedium,
		CreatorID: creator.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(e.t, e.store.Tasks().Create(context.Background(), task))
	return task
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_AuthFlow(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "Str0ng!Pass",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var registered struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))

	rr = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"login":    "alice",
		"password": "Str0ng!Pass",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var loggedIn struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loggedIn))

	rr = env.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refresh_token": loggedIn.Tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(http.MethodGet, "/api/users/me", loggedIn.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Logout overrides the public auth group and requires a token.
	rr = env.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(http.MethodPost, "/api/auth/logout", loggedIn.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRouter_ProtectedRoutesRejectAnonymous(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/users"},
	}

	for _, p := range paths {
		rr := env.do(p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", p.method, p.path)
	}
}

func TestRouter_AdminRoutes(t *testing.T) {
	env := newTestEnv(t)

	_, adminToken := env.addUser(models.RoleAdmin)
	_, managerToken := env.addUser(models.RoleManager)
	member, memberToken := env.addUser(models.RoleMember)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "admin", token: adminToken, wantStatus: http.StatusOK},
		{name: "manager", token: managerToken, wantStatus: http.StatusForbidden},
		{name: "member", token: memberToken, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run("list users as "+tt.name, func(t *testing.T) {
			rr := env.do(http.MethodGet, "/api/users", tt.token, nil)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}

	t.Run("member cannot delete users", func(t *testing.T) {
		rr := env.do(http.MethodDelete, "/api/users/"+member.ID, memberToken, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin unlocks a locked account", func(t *testing.T) {
		lockUntil := time.Now().Add(time.Hour)
		member.FailedLoginAttempts = 3
		member.AccountLockedUntil = &lockUntil
		require.NoError(t, env.store.Users().Update(context.Background(), member))

		rr := env.do(http.MethodPost, "/api/users/"+member.ID+"/unlock", adminToken, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRouter_UserUpdatePolicies(t *testing.T) {
	env := newTestEnv(t)

	_, adminToken := env.addUser(models.RoleAdmin)
	member, memberToken := env.addUser(models.RoleMember)
	other, _ := env.addUser(models.RoleMember)

	t.Run("member updates own profile", func(t *testing.T) {
		rr := env.do(http.MethodPatch, "/api/users/"+member.ID, memberToken,
			map[string]string{"first_name": "Renamed"})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("member cannot change another user's role", func(t *testing.T) {
		rr := env.do(http.MethodPatch, "/api/users/"+other.ID, memberToken,
			map[string]string{"role": "admin"})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("member cannot change own role", func(t *testing.T) {
		rr := env.do(http.MethodPatch, "/api/users/"+member.ID, memberToken,
			map[string]string{"role": "admin"})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin changes a role", func(t *testing.T) {
		rr := env.do(http.MethodPatch, "/api/users/"+member.ID, adminToken,
			map[string]string{"role": "manager"})
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRouter_TaskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.addUser(models.RoleMember)

	rr := env.do(http.MethodPost, "/api/tasks", token, map[string]any{
		"title": "Write the report",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var task models.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &task))
	assert.Equal(t, models.TaskStatusTodo, task.Status)

	rr = env.do(http.MethodPost, "/api/tasks/"+task.ID+"/status", token, map[string]any{
		"status":  "in_progress",
		"version": task.Version,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &task))

	// Jumping straight to done skips review and is rejected.
	rr = env.do(http.MethodPost, "/api/tasks/"+task.ID+"/status", token, map[string]any{
		"status":  "done",
		"version": task.Version,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// A stale version is a conflict.
	rr = env.do(http.MethodPost, "/api/tasks/"+task.ID+"/status", token, map[string]any{
		"status":  "in_review",
		"version": task.Version - 1,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRouter_TaskOwnership(t *testing.T) {
	env := newTestEnv(t)

	creator, _ := env.addUser(models.RoleMember)
	_, bystanderToken := env.addUser(models.RoleMember)
	_, managerToken := env.addUser(models.RoleManager)

	task := env.addTask(creator)

	rr := env.do(http.MethodPatch, "/api/tasks/"+task.ID, bystanderToken, map[string]any{
		"title":   "Hijacked",
		"version": task.Version,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(http.MethodPatch, "/api/tasks/"+task.ID, managerToken, map[string]any{
		"title":   "Supervised",
		"version": task.Version,
	})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_CommentThread(t *testing.T) {
	env := newTestEnv(t)

	author, authorToken := env.addUser(models.RoleMember)
	_, otherToken := env.addUser(models.RoleMember)
	task := env.addTask(author)

	rr := env.do(http.MethodPost, "/api/tasks/"+task.ID+"/comments", authorToken, map[string]any{
		"content": "First, cc @bob",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var comment models.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &comment))
	assert.Equal(t, []string{"bob"}, []string(comment.Mentions))

	rr = env.do(http.MethodPost, "/api/tasks/"+task.ID+"/comments", authorToken, map[string]any{
		"content":   "a reply",
		"parent_id": comment.ID,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	t.Run("only the author edits", func(t *testing.T) {
		rr := env.do(http.MethodPatch, "/api/comments/"+comment.ID, otherToken, map[string]any{
			"content": "defaced",
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("delete with cleared content is permanent", func(t *testing.T) {
		rr := env.do(http.MethodDelete, "/api/comments/"+comment.ID+"?clear_content=true", authorToken, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = env.do(http.MethodPost, "/api/comments/"+comment.ID+"/restore", authorToken, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var restored models.Comment
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &restored))
		assert.Equal(t, models.DeletedContentPlaceholder, restored.Content)
	})

	t.Run("thread listing keeps deleted parents", func(t *testing.T) {
		rr := env.do(http.MethodGet, "/api/tasks/"+task.ID+"/comments", authorToken, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var thread []models.Comment
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &thread))
		assert.Len(t, thread, 2)
	})
}

func TestRouter_SecurityEvents(t *testing.T) {
	env := newTestEnv(t)

	admin, adminToken := env.addUser(models.RoleAdmin)
	member, memberToken := env.addUser(models.RoleMember)

	logger := service.NewSecurityLogger(env.store.Events())
	logger.LogLoginSuccess(context.Background(), admin.ID)
	logger.LogLoginSuccess(context.Background(), member.ID)

	type envelope struct {
		Items []models.SecurityEvent `json:"items"`
		Total int                    `json:"total"`
	}

	t.Run("requires authentication", func(t *testing.T) {
		rr := env.do(http.MethodGet, "/api/users/me/security-events", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("member is pinned to their own events", func(t *testing.T) {
		rr := env.do(http.MethodGet, "/api/users/me/security-events?user_id="+admin.ID, memberToken, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var got envelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 1, got.Total)
		require.Len(t, got.Items, 1)
		require.NotNil(t, got.Items[0].UserID)
		assert.Equal(t, member.ID, *got.Items[0].UserID)
	})

	t.Run("admin sees everyone", func(t *testing.T) {
		rr := env.do(http.MethodGet, "/api/users/me/security-events", adminToken, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var got envelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 2, got.Total)
	})
}
