package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizza-nz/hotel-service/internal/middleware"
	"github.com/pizza-nz/hotel-service/internal/models"
	"github.com/pizza-nz/hotel-service/internal/service"
)

func newSessions() *service.SessionService {
	return service.NewSessionService(service.SessionConfig{Secret: "test-secret", TTL: time.Hour}, nil)
}

func issue(t *testing.T, sessions *service.SessionService, username string, role models.Role) string {
	t.Helper()
	token, err := sessions.Issue(username, role)
	require.NoError(t, err)
	return token
}

// whoami echoes the identity the middleware stored on the request.
func whoami(w http.ResponseWriter, r *http.Request) {
	username, _ := middleware.GetUsername(r.Context())
	role, _ := middleware.GetRole(r.Context())
	w.Write([]byte(username + ":" + string(role)))
}

func TestAuth(t *testing.T) {
	sessions := newSessions()
	handler := middleware.Auth(sessions)(http.HandlerFunc(whoami))
	token := issue(t, sessions, "sam", models.RoleStaff)

	forged, err := service.NewSessionService(service.SessionConfig{Secret: "other-secret", TTL: time.Hour}, nil).
		Issue("sam", models.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name       string
		target     string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "bearer header", target: "/", header: "Bearer " + token, wantStatus: http.StatusOK, wantBody: "sam:staff"},
		{name: "query parameter", target: "/?token=" + token, wantStatus: http.StatusOK, wantBody: "sam:staff"},
		{name: "no token", target: "/", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", target: "/", header: "Token " + token, wantStatus: http.StatusUnauthorized},
		{name: "malformed header ignores query", target: "/?token=" + token, header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "forged token", target: "/", header: "Bearer " + forged, wantStatus: http.StatusUnauthorized},
		{name: "forged query token", target: "/?token=" + forged, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuthExpiredToken(t *testing.T) {
	sessions := service.NewSessionService(service.SessionConfig{Secret: "test-secret", TTL: time.Minute},
		func() time.Time { return time.Now().Add(-time.Hour) })
	token := issue(t, sessions, "sam", models.RoleStaff)

	req := httptest.NewRequest(http.MethodGet, "/?token="+token, nil)
	rec := httptest.NewRecorder()
	middleware.Auth(newSessions())(http.HandlerFunc(whoami)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	sessions := newSessions()
	handler := middleware.Auth(sessions)(
		middleware.RequireRole(models.RoleAdmin, models.RoleManager)(http.HandlerFunc(whoami)))

	tests := []struct {
		role       models.Role
		wantStatus int
	}{
		{role: models.RoleAdmin, wantStatus: http.StatusOK},
		{role: models.RoleManager, wantStatus: http.StatusOK},
		{role: models.RoleStaff, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+issue(t, sessions, "op", tt.role))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireRoleFromQueryToken(t *testing.T) {
	sessions := newSessions()
	handler := middleware.Auth(sessions)(middleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(whoami)))

	req := httptest.NewRequest(http.MethodGet, "/?token="+issue(t, sessions, "sam", models.RoleStaff), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/?token="+issue(t, sessions, "root", models.RoleAdmin), nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "root:admin", rec.Body.String())
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	handler := middleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(whoami))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
