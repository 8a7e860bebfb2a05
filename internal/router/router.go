package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pizza-nz/hotel-service/internal/middleware"
	"github.com/pizza-nz/hotel-service/internal/models"
	"github.com/pizza-nz/hotel-service/internal/service"
	"github.com/pizza-nz/hotel-service/internal/websockets"
)

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Authenticator runs one login attempt.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string, override service.Overrider) (*service.Decision, error)
}

// Router serves the staff order feed
type Router struct {
	mux      *http.ServeMux
	store    HealthChecker
	auth     Authenticator
	sessions *service.SessionService
	hub      *websockets.Hub
	updater  websockets.StatusUpdater
	upgrader *websocket.Upgrader
	log      *slog.Logger
}

// Deps groups the collaborators the router dispatches to.
type Deps struct {
	Store          HealthChecker
	Auth           Authenticator
	Sessions       *service.SessionService
	Hub            *websockets.Hub
	Updater        websockets.StatusUpdater
	AllowedOrigins []string
	Log            *slog.Logger
}

// New creates a new router
func New(deps Deps) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		store:    deps.Store,
		auth:     deps.Auth,
		sessions: deps.Sessions,
		hub:      deps.Hub,
		updater:  deps.Updater,
		upgrader: websockets.NewUpgrader(deps.AllowedOrigins),
		log:      deps.Log,
	}

	r.setupRoutes()

	return r
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	logged := middleware.Logger(r.log)

	r.mux.Handle("/healthz", logged(http.HandlerFunc(r.handleHealth)))
	r.mux.Handle("/api/auth/login", logged(http.HandlerFunc(r.handleLogin)))

	feed := middleware.Auth(r.sessions)(
		middleware.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleStaff)(
			http.HandlerFunc(r.handleWebSocket),
		),
	)
	r.mux.Handle("/ws", logged(feed))
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	if err := r.store.HealthCheck(ctx); err != nil {
		r.log.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogin issues a session token for staff displays. It goes through the
// same lockout as the terminal but never offers the master override.
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var loginReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	decision, err := r.auth.Authenticate(req.Context(), loginReq.Username, loginReq.Password, nil)
	if err != nil {
		r.log.Error("feed login failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	switch decision.Outcome {
	case service.OutcomeGranted:
	case service.OutcomeLockedOut:
		writeJSON(w, http.StatusLocked, map[string]interface{}{
			"error":        decision.Err().Error(),
			"locked_until": decision.LockedUntil,
		})
		return
	default:
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := r.sessions.Issue(decision.Username, decision.Role)
	if err != nil {
		r.log.Error("failed to issue feed session", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":    token,
		"username": decision.Username,
		"role":     string(decision.Role),
	})
}

func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	username, _ := middleware.GetUsername(req.Context())
	role, _ := middleware.GetRole(req.Context())

	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// The upgrader has already written the error response.
		return
	}

	websockets.ServeWs(r.hub, conn, r.updater, username, role)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
