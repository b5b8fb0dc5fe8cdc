// ABOUTME: HTTP API handlers for the FutureProof Homes voice integration.
// ABOUTME: Implements the /futureproofhome/auth request/verify/cancel/status contract.

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/voicegate/voicegate/internal/challenge"
	"github.com/voicegate/voicegate/internal/tenant"
)

// AuthRequestBody is the JSON request body for POST /futureproofhome/auth/request.
type AuthRequestBody struct {
	HomeID string `json:"home_id"`
	Intent string `json:"intent"`
}

// AuthVerifyBody is the JSON request body for POST /futureproofhome/auth/verify.
type AuthVerifyBody struct {
	HomeID   string `json:"home_id"`
	Response string `json:"response"`
}

// AuthCancelBody is the JSON request body for POST /futureproofhome/auth/cancel.
type AuthCancelBody struct {
	HomeID string `json:"home_id"`
}

// ChallengeResponse is the JSON response for a freshly issued challenge.
type ChallengeResponse struct {
	Status    string `json:"status"`
	Speech    string `json:"speech"`
	Challenge string `json:"challenge"`
}

// VerifyResponse is the JSON response for a verification attempt. The
// intent is present on approval; reason and attempts_remaining on denial.
type VerifyResponse struct {
	Status            string `json:"status"`
	Speech            string `json:"speech"`
	Intent            string `json:"intent,omitempty"`
	Reason            string `json:"reason,omitempty"`
	AttemptsRemaining *int   `json:"attempts_remaining,omitempty"`
}

// CancelResponse is the JSON response for a cancellation.
type CancelResponse struct {
	Status string `json:"status"`
	Speech string `json:"speech"`
}

// PendingChallengeInfo describes one pending challenge in the status view.
type PendingChallengeInfo struct {
	Intent         string  `json:"intent"`
	Attempts       int     `json:"attempts"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Expired        bool    `json:"expired"`
}

// StatusResponse is the JSON response for GET /futureproofhome/auth/status.
type StatusResponse struct {
	PendingChallenges map[string]PendingChallengeInfo `json:"pending_challenges"`
	Config            StatusConfig                    `json:"config"`
	TotalPending      int                             `json:"total_pending"`
}

// StatusConfig reports the active challenge policy.
type StatusConfig struct {
	ExpirySeconds int `json:"expiry_seconds"`
	MaxAttempts   int `json:"max_attempts"`
}

// handleAuthRequest handles POST /futureproofhome/auth/request. Home
// Assistant calls this when a voice command requires authentication.
func (g *Gateway) handleAuthRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req AuthRequestBody
	if err := decodeJSONBody(r.Body, &req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.HomeID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "missing required field: home_id")
		return
	}
	if req.Intent == "" {
		g.sendJSONError(w, http.StatusBadRequest, "missing required field: intent")
		return
	}

	home, err := g.resolver.ResolveHome(r.Context(), req.HomeID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "unknown home_id")
			return
		}
		g.logger.Error("resolving home", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	phrase := g.validator.Issue(home.ID, req.Intent)

	g.sendJSON(w, http.StatusOK, ChallengeResponse{
		Status:    "challenge",
		Speech:    fmt.Sprintf("Security check. Please say: %s", phrase),
		Challenge: phrase,
	})
}

// handleAuthVerify handles POST /futureproofhome/auth/verify. Denials are
// 200 responses with status "denied": the voice pipeline speaks the result
// either way.
func (g *Gateway) handleAuthVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req AuthVerifyBody
	if err := decodeJSONBody(r.Body, &req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.HomeID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "missing required field: home_id")
		return
	}
	if req.Response == "" {
		g.sendJSONError(w, http.StatusBadRequest, "missing required field: response")
		return
	}

	home, err := g.resolver.ResolveHome(r.Context(), req.HomeID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "unknown home_id")
			return
		}
		g.logger.Error("resolving home", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	outcome := g.validator.Verify(home.ID, req.Response)

	if outcome.Approved {
		g.sendJSON(w, http.StatusOK, VerifyResponse{
			Status: "approved",
			Speech: "Voice verified.",
			Intent: outcome.Intent,
		})
		return
	}

	resp := VerifyResponse{
		Status: "denied",
		Reason: string(outcome.Reason),
	}
	switch outcome.Reason {
	case challenge.ReasonNoChallenge:
		resp.Speech = "No active challenge found. Please start over."
	case challenge.ReasonExpired:
		resp.Speech = "Challenge expired. Please start over."
	case challenge.ReasonMaxAttempts:
		resp.Speech = "Maximum attempts exceeded. Please start over."
	case challenge.ReasonMismatch:
		remaining := outcome.AttemptsRemaining
		resp.Speech = fmt.Sprintf("That didn't match. Try again. %d attempts remaining.", remaining)
		resp.AttemptsRemaining = &remaining
	}

	g.sendJSON(w, http.StatusOK, resp)
}

// handleAuthCancel handles POST /futureproofhome/auth/cancel. Cancelling
// with no pending challenge still succeeds.
func (g *Gateway) handleAuthCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req AuthCancelBody
	if err := decodeJSONBody(r.Body, &req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.HomeID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "missing required field: home_id")
		return
	}

	home, err := g.resolver.ResolveHome(r.Context(), req.HomeID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "unknown home_id")
			return
		}
		g.logger.Error("resolving home", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.validator.Cancel(home.ID)

	g.sendJSON(w, http.StatusOK, CancelResponse{
		Status: "cancelled",
		Speech: "Security check cancelled.",
	})
}

// handleAuthStatus handles GET /futureproofhome/auth/status. Debug
// endpoint to view all pending challenges; never mutates state.
func (g *Gateway) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	all := g.validator.StatusAll()
	pending := make(map[string]PendingChallengeInfo, len(all))
	for key, info := range all {
		pending[key] = PendingChallengeInfo{
			Intent:         info.Intent,
			Attempts:       info.Attempts,
			ElapsedSeconds: math.Round(info.ElapsedSeconds*10) / 10,
			Expired:        info.Expired,
		}
	}

	g.sendJSON(w, http.StatusOK, StatusResponse{
		PendingChallenges: pending,
		Config: StatusConfig{
			ExpirySeconds: int(g.validator.Expiry().Seconds()),
			MaxAttempts:   g.validator.MaxAttempts(),
		},
		TotalPending: len(pending),
	})
}

// sendJSON writes a JSON response with the given status code.
func (g *Gateway) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("encoding response", "error", err)
	}
}

// sendJSONError writes a JSON error response with the given status code.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// decodeJSONBody decodes a JSON request body into dst.
func decodeJSONBody(r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
