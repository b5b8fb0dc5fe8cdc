// ABOUTME: Tests for the FutureProof Homes REST auth endpoints.
// ABOUTME: Exercises the full request/verify/cancel/status contract over httptest.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postJSON sends a JSON POST through the gateway's handler.
func postJSON(t *testing.T, gw *Gateway, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)
	return rec
}

// requestChallenge issues a challenge and returns the phrase.
func requestChallenge(t *testing.T, gw *Gateway, homeID, intent string) string {
	t.Helper()

	rec := postJSON(t, gw, "/futureproofhome/auth/request", map[string]string{
		"home_id": homeID,
		"intent":  intent,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChallengeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "challenge", resp.Status)
	require.NotEmpty(t, resp.Challenge)
	return resp.Challenge
}

func TestAuthRequest(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)

	rec := postJSON(t, gw, "/futureproofhome/auth/request", map[string]string{
		"home_id": "home_1",
		"intent":  "night_scene",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChallengeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "challenge", resp.Status)
	assert.Equal(t, "Security check. Please say: "+resp.Challenge, resp.Speech)
	assert.Len(t, strings.Fields(resp.Challenge), 2)
}

func TestAuthRequest_UnknownHome(t *testing.T) {
	gw := setupGateway(t, testConfig())

	rec := postJSON(t, gw, "/futureproofhome/auth/request", map[string]string{
		"home_id": "ghost",
		"intent":  "night_scene",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthRequest_MissingFields(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)

	rec := postJSON(t, gw, "/futureproofhome/auth/request", map[string]string{"intent": "night_scene"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, gw, "/futureproofhome/auth/request", map[string]string{"home_id": "home_1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequest_InvalidJSON(t *testing.T) {
	gw := setupGateway(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/futureproofhome/auth/request", strings.NewReader("{bad"))
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthVerify_ApprovedReturnsIntent(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)

	phrase := requestChallenge(t, gw, "home_1", "night_scene")

	rec := postJSON(t, gw, "/futureproofhome/auth/verify", map[string]string{
		"home_id":  "home_1",
		"response": phrase,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "approved", resp.Status)
	assert.Equal(t, "Voice verified.", resp.Speech)
	assert.Equal(t, "night_scene", resp.Intent)
	assert.Empty(t, resp.Reason)
	assert.Nil(t, resp.AttemptsRemaining)
}

func TestAuthVerify_ChallengeConsumedOnApproval(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)

	phrase := requestChallenge(t, gw, "home_1", "night_scene")

	rec := postJSON(t, gw, "/futureproofhome/auth/verify", map[string]string{
		"home_id": "home_1", "response": phrase,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Replaying the same phrase must find no challenge.
	rec = postJSON(t, gw, "/futureproofhome/auth/verify", map[string]string{
		"home_id": "home_1", "response": phrase,
	})
	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "denied", resp.Status)
	assert.Equal(t, "no_challenge", resp.Reason)
	assert.Equal(t, "No active challenge found. Please start over.", resp.Speech)
}

func TestAuthVerify_MismatchCountsDown(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)

	requestChallenge(t, gw, "home_1", "night_scene")

	rec := postJSON(t, gw, "/futureproofhome/auth/verify", map[string]string{
		"home_id": "home_1", "response": "completely wrong",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "denied", resp.Status)
	assert.Equal(t, "mismatch", resp.Reason)
	require.NotNil(t, resp.AttemptsRemaining)
	assert.Equal(t, 2, *resp.AttemptsRemaining)
	assert.Equal(t, "That didn't match. Try again. 2 attempts remaining.", resp.Speech)
}

func TestAuthVerify_ThirdWrongAnswerExhaustsAttempts(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)

	requestChallenge(t, gw, "home_1", "night_scene")

	var resp VerifyResponse
	for i := 0; i < 2; i++ {
		rec := postJSON(t, gw, "/futureproofhome/auth/verify", map[string]string{
			"home_id": "home_1", "response": "wrong",
		})
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "mismatch", resp.Reason)
	}

	rec := postJSON(t, gw, "/futureproofhome/auth/verify", map[string]string{
		"home_id": "home_1", "response": "wrong",
	})
	// Reset so a field omitted from this response is not left over from the
	// previous unmarshal into the same struct.
	resp = VerifyResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "denied", resp.Status)
	assert.Equal(t, "max_attempts", resp.Reason)
	assert.Equal(t, "Maximum attempts exceeded. Please start over.", resp.Speech)
	assert.Nil(t, resp.AttemptsRemaining)
}

func TestAuthVerify_NormalizedComparison(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)

	phrase := requestChallenge(t, gw, "home_1", "night_scene")

	// Replace the number word with its digit, as a speech-to-text engine
	// often transcribes it.
	digits := map[string]string{
		"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
		"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
	}
	parts := strings.Fields(phrase)
	require.Len(t, parts, 2)
	digit, ok := digits[parts[1]]
	require.True(t, ok, "unexpected number word %q", parts[1])
	spoken := fmt.Sprintf("%s %s", strings.ToUpper(parts[0]), digit)

	rec := postJSON(t, gw, "/futureproofhome/auth/verify", map[string]string{
		"home_id": "home_1", "response": spoken,
	})

	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "approved", resp.Status)
}

func TestAuthVerify_HomesAreIsolated(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)
	seedGWHome(t, gw, "home_2", true)

	phrase := requestChallenge(t, gw, "home_1", "night_scene")

	// The phrase for home_1 is not valid for home_2.
	rec := postJSON(t, gw, "/futureproofhome/auth/verify", map[string]string{
		"home_id": "home_2", "response": phrase,
	})
	var resp VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "denied", resp.Status)
	assert.Equal(t, "no_challenge", resp.Reason)
}

func TestAuthCancel(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)

	phrase := requestChallenge(t, gw, "home_1", "night_scene")

	rec := postJSON(t, gw, "/futureproofhome/auth/cancel", map[string]string{"home_id": "home_1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CancelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "Security check cancelled.", resp.Speech)

	// The cancelled phrase no longer verifies.
	vrec := postJSON(t, gw, "/futureproofhome/auth/verify", map[string]string{
		"home_id": "home_1", "response": phrase,
	})
	var vresp VerifyResponse
	require.NoError(t, json.Unmarshal(vrec.Body.Bytes(), &vresp))
	assert.Equal(t, "no_challenge", vresp.Reason)

	// Cancelling again is still a success.
	rec = postJSON(t, gw, "/futureproofhome/auth/cancel", map[string]string{"home_id": "home_1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthStatus(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)
	seedGWHome(t, gw, "home_2", true)

	requestChallenge(t, gw, "home_1", "night_scene")
	requestChallenge(t, gw, "home_2", "away_scene")

	req := httptest.NewRequest(http.MethodGet, "/futureproofhome/auth/status", nil)
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalPending)
	assert.Equal(t, 60, resp.Config.ExpirySeconds)
	assert.Equal(t, 3, resp.Config.MaxAttempts)

	info, ok := resp.PendingChallenges["home_1"]
	require.True(t, ok)
	assert.Equal(t, "night_scene", info.Intent)
	assert.Equal(t, 0, info.Attempts)
	assert.False(t, info.Expired)

	info, ok = resp.PendingChallenges["home_2"]
	require.True(t, ok)
	assert.Equal(t, "away_scene", info.Intent)
}

func TestAuthStatus_Empty(t *testing.T) {
	gw := setupGateway(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/futureproofhome/auth/status", nil)
	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.TotalPending)
	assert.Empty(t, resp.PendingChallenges)
}

func TestAuthEndpoints_MethodNotAllowed(t *testing.T) {
	gw := setupGateway(t, testConfig())

	for _, path := range []string{
		"/futureproofhome/auth/request",
		"/futureproofhome/auth/verify",
		"/futureproofhome/auth/cancel",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		gw.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}

	rec := postJSON(t, gw, "/futureproofhome/auth/status", map[string]string{})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuthRequest_InactiveHome(t *testing.T) {
	gw := setupGateway(t, testConfig())
	seedGWHome(t, gw, "home_1", true)

	// Deactivate the home, then try to start a challenge.
	h, err := gw.store.GetHome(context.Background(), "home_1")
	require.NoError(t, err)
	h.Active = false
	require.NoError(t, gw.store.UpdateHome(context.Background(), h))

	rec := postJSON(t, gw, "/futureproofhome/auth/request", map[string]string{
		"home_id": "home_1", "intent": "night_scene",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
