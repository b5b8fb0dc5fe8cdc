// ABOUTME: Admin API handlers for users, homes, caller mappings, and login.
// ABOUTME: Login is open; everything else sits behind the JWT middleware.

package gateway

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voicegate/voicegate/internal/auth"
	"github.com/voicegate/voicegate/internal/store"
)

// LoginRequest is the JSON request body for POST /admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the JSON response for a successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// UserBody is the JSON request body for creating or updating a user.
type UserBody struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Active   *bool  `json:"active"`
}

// UserResponse is the JSON representation of a user.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// HomeBody is the JSON request body for creating or updating a home.
type HomeBody struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	ControllerURL string `json:"controller_url"`
	WebhookID     string `json:"webhook_id"`
	Active        *bool  `json:"active"`
	TestMode      *bool  `json:"test_mode"`
}

// HomeResponse is the JSON representation of a home.
type HomeResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	ControllerURL string `json:"controller_url"`
	WebhookID     string `json:"webhook_id"`
	Active        bool   `json:"active"`
	TestMode      bool   `json:"test_mode"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// MappingBody is the JSON request body for creating a caller mapping.
type MappingBody struct {
	CallerID string `json:"caller_id"`
	HomeID   string `json:"home_id"`
}

// OperatorResponse is the JSON representation of an admin account.
// Password hashes never leave the store.
type OperatorResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// MappingResponse is the JSON representation of a caller mapping.
type MappingResponse struct {
	CallerID  string `json:"caller_id"`
	HomeID    string `json:"home_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// registerAdminRoutes wires the admin API onto the mux. Login is
// reachable without a token; every other route goes through the JWT
// middleware.
func (g *Gateway) registerAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/admin/login", g.handleAdminLogin)

	protect := auth.HTTPAuthMiddleware(g.store, g.verifier)
	mux.Handle("/admin/users", protect(http.HandlerFunc(g.handleUsers)))
	mux.Handle("/admin/users/", protect(http.HandlerFunc(g.handleUserByID)))
	mux.Handle("/admin/homes", protect(http.HandlerFunc(g.handleHomes)))
	mux.Handle("/admin/homes/", protect(http.HandlerFunc(g.handleHomeByID)))
	mux.Handle("/admin/mappings", protect(http.HandlerFunc(g.handleMappings)))
	mux.Handle("/admin/mappings/", protect(http.HandlerFunc(g.handleMappingByID)))
	mux.Handle("/admin/unmapped", protect(http.HandlerFunc(g.handleUnmapped)))
	mux.Handle("/admin/operators", protect(http.HandlerFunc(g.handleOperators)))
}

// handleAdminLogin handles POST /admin/login. Unknown usernames and bad
// passwords get the same response, and both cost a bcrypt comparison.
func (g *Gateway) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := decodeJSONBody(r.Body, &req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		g.sendJSONError(w, http.StatusBadRequest, "username and password required")
		return
	}

	admin, err := g.store.GetAdminUserByUsername(r.Context(), req.Username)
	if err != nil {
		auth.CheckPasswordDummy(req.Password)
		g.sendJSONError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if !auth.CheckPassword(admin.PasswordHash, req.Password) {
		g.sendJSONError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := g.verifier.Generate(admin.ID, g.tokenTTL)
	if err != nil {
		g.logger.Error("generating token", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.logger.Info("admin login", "username", admin.Username)
	g.sendJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: int(g.tokenTTL.Seconds()),
	})
}

// handleUsers handles GET (list) and POST (create) on /admin/users.
func (g *Gateway) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := g.store.ListUsers(r.Context())
		if err != nil {
			g.logger.Error("listing users", "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		out := make([]UserResponse, 0, len(users))
		for _, u := range users {
			out = append(out, userResponse(u))
		}
		g.sendJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req UserBody
		if err := decodeJSONBody(r.Body, &req); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Username == "" {
			g.sendJSONError(w, http.StatusBadRequest, "username is required")
			return
		}

		u := &store.User{
			ID:        uuid.NewString(),
			Username:  req.Username,
			FullName:  req.FullName,
			Email:     req.Email,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		}
		if req.Active != nil {
			u.Active = *req.Active
		}

		if err := g.store.CreateUser(r.Context(), u); err != nil {
			if errors.Is(err, store.ErrUsernameExists) {
				g.sendJSONError(w, http.StatusConflict, "username already exists")
				return
			}
			g.logger.Error("creating user", "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		g.sendJSON(w, http.StatusCreated, userResponse(u))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleUserByID handles GET, PUT, and DELETE on /admin/users/{id}.
func (g *Gateway) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/admin/users/")
	if id == "" || strings.Contains(id, "/") {
		g.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		u, err := g.store.GetUser(r.Context(), id)
		if err != nil {
			g.userStoreError(w, err)
			return
		}
		g.sendJSON(w, http.StatusOK, userResponse(u))

	case http.MethodPut:
		u, err := g.store.GetUser(r.Context(), id)
		if err != nil {
			g.userStoreError(w, err)
			return
		}

		var req UserBody
		if err := decodeJSONBody(r.Body, &req); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Username != "" {
			u.Username = req.Username
		}
		if req.FullName != "" {
			u.FullName = req.FullName
		}
		if req.Email != "" {
			u.Email = req.Email
		}
		if req.Active != nil {
			u.Active = *req.Active
		}

		if err := g.store.UpdateUser(r.Context(), u); err != nil {
			g.userStoreError(w, err)
			return
		}
		g.sendJSON(w, http.StatusOK, userResponse(u))

	case http.MethodDelete:
		if err := g.store.DeleteUser(r.Context(), id); err != nil {
			g.userStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleHomes handles GET (list) and POST (create) on /admin/homes.
func (g *Gateway) handleHomes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var (
			homes []*store.Home
			err   error
		)
		if userID := r.URL.Query().Get("user_id"); userID != "" {
			homes, err = g.store.ListHomesByUser(r.Context(), userID)
		} else {
			homes, err = g.store.ListHomes(r.Context())
		}
		if err != nil {
			g.logger.Error("listing homes", "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		out := make([]HomeResponse, 0, len(homes))
		for _, h := range homes {
			out = append(out, homeResponse(h))
		}
		g.sendJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req HomeBody
		if err := decodeJSONBody(r.Body, &req); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.UserID == "" {
			g.sendJSONError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		if !req.testMode() && req.ControllerURL == "" {
			g.sendJSONError(w, http.StatusBadRequest, "controller_url is required unless test_mode is set")
			return
		}

		now := time.Now().UTC()
		h := &store.Home{
			ID:            req.ID,
			UserID:        req.UserID,
			Name:          req.Name,
			ControllerURL: req.ControllerURL,
			WebhookID:     req.WebhookID,
			Active:        true,
			TestMode:      req.testMode(),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		if req.Active != nil {
			h.Active = *req.Active
		}

		if err := g.store.CreateHome(r.Context(), h); err != nil {
			switch {
			case errors.Is(err, store.ErrDuplicateHome):
				g.sendJSONError(w, http.StatusConflict, "home already exists")
			case errors.Is(err, store.ErrUserNotFound):
				g.sendJSONError(w, http.StatusBadRequest, "unknown user_id")
			default:
				g.logger.Error("creating home", "error", err)
				g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		g.sendJSON(w, http.StatusCreated, homeResponse(h))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleHomeByID handles GET, PUT, and DELETE on /admin/homes/{id}.
func (g *Gateway) handleHomeByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/admin/homes/")
	if id == "" || strings.Contains(id, "/") {
		g.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h, err := g.store.GetHome(r.Context(), id)
		if err != nil {
			g.homeStoreError(w, err)
			return
		}
		g.sendJSON(w, http.StatusOK, homeResponse(h))

	case http.MethodPut:
		h, err := g.store.GetHome(r.Context(), id)
		if err != nil {
			g.homeStoreError(w, err)
			return
		}

		var req HomeBody
		if err := decodeJSONBody(r.Body, &req); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Name != "" {
			h.Name = req.Name
		}
		if req.ControllerURL != "" {
			h.ControllerURL = req.ControllerURL
		}
		if req.WebhookID != "" {
			h.WebhookID = req.WebhookID
		}
		if req.Active != nil {
			h.Active = *req.Active
		}
		if req.TestMode != nil {
			h.TestMode = *req.TestMode
		}
		h.UpdatedAt = time.Now().UTC()

		if err := g.store.UpdateHome(r.Context(), h); err != nil {
			g.homeStoreError(w, err)
			return
		}
		// Controller settings may have changed; drop the cached client.
		g.scenes.Invalidate(h.ID)
		g.sendJSON(w, http.StatusOK, homeResponse(h))

	case http.MethodDelete:
		if err := g.store.DeleteHome(r.Context(), id); err != nil {
			g.homeStoreError(w, err)
			return
		}
		g.scenes.Invalidate(id)
		g.validator.Cancel(id)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleMappings handles GET (list) and POST (upsert) on /admin/mappings.
// Creating a mapping clears the caller from the unmapped tracker.
func (g *Gateway) handleMappings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var (
			mappings []*store.CallerMapping
			err      error
		)
		if homeID := r.URL.Query().Get("home_id"); homeID != "" {
			mappings, err = g.store.ListCallerMappingsByHome(r.Context(), homeID)
		} else {
			mappings, err = g.store.ListCallerMappings(r.Context())
		}
		if err != nil {
			g.logger.Error("listing mappings", "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		out := make([]MappingResponse, 0, len(mappings))
		for _, m := range mappings {
			out = append(out, mappingResponse(m))
		}
		g.sendJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req MappingBody
		if err := decodeJSONBody(r.Body, &req); err != nil {
			g.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.CallerID == "" || req.HomeID == "" {
			g.sendJSONError(w, http.StatusBadRequest, "caller_id and home_id are required")
			return
		}

		now := time.Now().UTC()
		m := &store.CallerMapping{
			CallerID:  req.CallerID,
			HomeID:    req.HomeID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := g.store.UpsertCallerMapping(r.Context(), m); err != nil {
			switch {
			case errors.Is(err, store.ErrCallerIDTooLong):
				g.sendJSONError(w, http.StatusBadRequest, "caller_id exceeds maximum length")
			case errors.Is(err, store.ErrHomeNotFound):
				g.sendJSONError(w, http.StatusBadRequest, "unknown home_id")
			default:
				g.logger.Error("upserting mapping", "error", err)
				g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		g.unmapped.Remove(req.CallerID)
		g.sendJSON(w, http.StatusCreated, mappingResponse(m))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleMappingByID handles DELETE on /admin/mappings/{caller_id}.
func (g *Gateway) handleMappingByID(w http.ResponseWriter, r *http.Request) {
	callerID := strings.TrimPrefix(r.URL.Path, "/admin/mappings/")
	if callerID == "" {
		g.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := g.store.DeleteCallerMapping(r.Context(), callerID); err != nil {
		if errors.Is(err, store.ErrMappingNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "mapping not found")
			return
		}
		g.logger.Error("deleting mapping", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUnmapped handles GET /admin/unmapped, listing caller ids that
// tried to connect but resolved to no home.
func (g *Gateway) handleUnmapped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	g.sendJSON(w, http.StatusOK, g.unmapped.List())
}

// handleOperators handles GET /admin/operators, listing admin accounts.
func (g *Gateway) handleOperators(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	admins, err := g.store.ListAdminUsers(r.Context())
	if err != nil {
		g.logger.Error("listing admin users", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	out := make([]OperatorResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, OperatorResponse{
			ID:          a.ID,
			Username:    a.Username,
			DisplayName: a.DisplayName,
			CreatedAt:   a.CreatedAt.Format(time.RFC3339),
		})
	}
	g.sendJSON(w, http.StatusOK, out)
}

func (g *Gateway) userStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrUserNotFound) {
		g.sendJSONError(w, http.StatusNotFound, "user not found")
		return
	}
	if errors.Is(err, store.ErrUsernameExists) {
		g.sendJSONError(w, http.StatusConflict, "username already exists")
		return
	}
	g.logger.Error("user store error", "error", err)
	g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
}

func (g *Gateway) homeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrHomeNotFound) {
		g.sendJSONError(w, http.StatusNotFound, "home not found")
		return
	}
	g.logger.Error("home store error", "error", err)
	g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
}

func (h *HomeBody) testMode() bool {
	return h.TestMode != nil && *h.TestMode
}

func userResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func homeResponse(h *store.Home) HomeResponse {
	return HomeResponse{
		ID:            h.ID,
		UserID:        h.UserID,
		Name:          h.Name,
		ControllerURL: h.ControllerURL,
		WebhookID:     h.WebhookID,
		Active:        h.Active,
		TestMode:      h.TestMode,
		CreatedAt:     h.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     h.UpdatedAt.Format(time.RFC3339),
	}
}

func mappingResponse(m *store.CallerMapping) MappingResponse {
	return MappingResponse{
		CallerID:  m.CallerID,
		HomeID:    m.HomeID,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
		UpdatedAt: m.UpdatedAt.Format(time.RFC3339),
	}
}
