// ABOUTME: Alexa Skill webhook adapter driving the challenge flow.
// ABOUTME: Handles launch, night scene, challenge response, and builtin intents.

package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/voicegate/voicegate/internal/challenge"
	"github.com/voicegate/voicegate/internal/store"
	"github.com/voicegate/voicegate/internal/tenant"
)

// nightSceneIntent is the scene name dispatched on successful verification.
const nightSceneIntent = "night_scene"

// AlexaRequest is the subset of the Alexa request envelope the gateway
// reads. Amazon sends much more; everything else is ignored.
type AlexaRequest struct {
	Session struct {
		SessionID string `json:"sessionId"`
		User      struct {
			UserID string `json:"userId"`
		} `json:"user"`
	} `json:"session"`
	Context struct {
		System struct {
			User struct {
				UserID string `json:"userId"`
			} `json:"user"`
		} `json:"System"`
	} `json:"context"`
	Request struct {
		Type   string `json:"type"`
		Intent struct {
			Name  string `json:"name"`
			Slots map[string]struct {
				Value string `json:"value"`
			} `json:"slots"`
		} `json:"intent"`
	} `json:"request"`
}

// AlexaResponse is the response envelope Alexa expects.
type AlexaResponse struct {
	Version  string `json:"version"`
	Response struct {
		OutputSpeech struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"outputSpeech"`
		ShouldEndSession bool `json:"shouldEndSession"`
	} `json:"response"`
}

// buildAlexaResponse constructs a plain-text Alexa response.
func buildAlexaResponse(speech string, endSession bool) AlexaResponse {
	var resp AlexaResponse
	resp.Version = "1.0"
	resp.Response.OutputSpeech.Type = "PlainText"
	resp.Response.OutputSpeech.Text = speech
	resp.Response.ShouldEndSession = endSession
	return resp
}

// callerID extracts the Alexa user id, preferring the context envelope.
func (a *AlexaRequest) callerID() string {
	if id := a.Context.System.User.UserID; id != "" {
		return id
	}
	return a.Session.User.UserID
}

// slotValue returns the value of a named slot, or empty string.
func (a *AlexaRequest) slotValue(name string) string {
	slot, ok := a.Request.Intent.Slots[name]
	if !ok {
		return ""
	}
	return slot.Value
}

// handleAlexa handles POST /alexa, the main Alexa webhook. All outcomes
// are 200 responses; Alexa speaks whatever text comes back.
func (g *Gateway) handleAlexa(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req AlexaRequest
	if err := decodeJSONBody(r.Body, &req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	g.logger.Info("alexa request", "type", req.Request.Type, "intent", req.Request.Intent.Name)

	switch req.Request.Type {
	case "LaunchRequest":
		g.sendJSON(w, http.StatusOK, buildAlexaResponse(
			"Home security activated. Say night scene to begin.", false))

	case "IntentRequest":
		g.handleAlexaIntent(w, r, &req)

	case "SessionEndedRequest":
		g.sendJSON(w, http.StatusOK, buildAlexaResponse("", true))

	default:
		g.sendJSON(w, http.StatusOK, buildAlexaResponse(
			"I didn't understand that. Please try again.", true))
	}
}

// handleAlexaIntent routes an IntentRequest to the matching handler.
func (g *Gateway) handleAlexaIntent(w http.ResponseWriter, r *http.Request, req *AlexaRequest) {
	switch req.Request.Intent.Name {
	case "NightSceneIntent":
		g.handleAlexaNightScene(w, r, req)

	case "ChallengeResponseIntent":
		g.handleAlexaChallengeResponse(w, r, req)

	case "AMAZON.HelpIntent":
		g.sendJSON(w, http.StatusOK, buildAlexaResponse(
			"This skill controls your Home Assistant with voice authentication. "+
				"Say night scene, then repeat the security phrase I give you. "+
				"What would you like to do?", false))

	case "AMAZON.StopIntent", "AMAZON.CancelIntent":
		g.sendJSON(w, http.StatusOK, buildAlexaResponse(
			"Home security deactivated. Goodbye.", true))

	case "AMAZON.FallbackIntent":
		g.sendJSON(w, http.StatusOK, buildAlexaResponse(
			"I didn't understand. You can say night scene to activate the night scene. "+
				"What would you like to do?", false))

	default:
		g.sendJSON(w, http.StatusOK, buildAlexaResponse(
			"I didn't understand that. Please try again.", true))
	}
}

// resolveAlexaHome maps the Alexa user to a home, answering with a setup
// prompt when no mapping exists. Returns nil when the response has
// already been written.
func (g *Gateway) resolveAlexaHome(w http.ResponseWriter, r *http.Request, req *AlexaRequest) *store.Home {
	callerID := req.callerID()
	if callerID == "" {
		g.sendJSON(w, http.StatusOK, buildAlexaResponse(
			"Sorry, there was an error processing your request.", true))
		return nil
	}

	home, err := g.resolver.ResolveCaller(r.Context(), callerID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			g.sendJSON(w, http.StatusOK, buildAlexaResponse(
				"This device isn't linked to a home yet. "+
					"Ask your administrator to register it, then try again.", true))
			return nil
		}
		g.logger.Error("resolving alexa caller", "error", err)
		g.sendJSON(w, http.StatusOK, buildAlexaResponse(
			"Sorry, there was an error processing your request.", true))
		return nil
	}

	return home
}

// handleAlexaNightScene issues a challenge for the caller's home.
func (g *Gateway) handleAlexaNightScene(w http.ResponseWriter, r *http.Request, req *AlexaRequest) {
	home := g.resolveAlexaHome(w, r, req)
	if home == nil {
		return
	}

	phrase := g.validator.Issue(home.ID, nightSceneIntent)
	g.sendJSON(w, http.StatusOK, buildAlexaResponse(
		fmt.Sprintf("Security check required. Please say: %s", phrase), false))
}

// handleAlexaChallengeResponse verifies the spoken phrase and, on
// approval, triggers the scene on the home's controller. Unlike the
// REST surface, Alexa has no way to execute the scene itself, so the
// gateway dispatches it directly.
func (g *Gateway) handleAlexaChallengeResponse(w http.ResponseWriter, r *http.Request, req *AlexaRequest) {
	home := g.resolveAlexaHome(w, r, req)
	if home == nil {
		return
	}

	spoken := req.slotValue("response")
	outcome := g.validator.Verify(home.ID, spoken)

	if !outcome.Approved {
		speech := denialSpeech(outcome) + " Please try saying night scene again if you want to retry."
		g.sendJSON(w, http.StatusOK, buildAlexaResponse(speech, false))
		return
	}

	dispatcher := g.scenes.For(home)
	if err := dispatcher.Dispatch(r.Context(), outcome.Intent, "alexa"); err != nil {
		g.logger.Error("scene dispatch failed", "home_id", home.ID, "error", err)
		g.sendJSON(w, http.StatusOK, buildAlexaResponse(
			"Voice verified, but scene activation failed.", true))
		return
	}

	g.sendJSON(w, http.StatusOK, buildAlexaResponse(
		"Voice verified. Night scene activated.", true))
}

// denialSpeech converts a denial outcome into the spoken message.
func denialSpeech(outcome challenge.Outcome) string {
	switch outcome.Reason {
	case challenge.ReasonExpired:
		return "Challenge expired. Please start over."
	case challenge.ReasonMaxAttempts:
		return "Maximum attempts exceeded. Please start over."
	case challenge.ReasonMismatch:
		return fmt.Sprintf("Incorrect response. %d attempts remaining.", outcome.AttemptsRemaining)
	default:
		return "No active challenge found. Please start over."
	}
}
