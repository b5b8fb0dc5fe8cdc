// ABOUTME: Package doc for scene dispatch.
// ABOUTME: Delivers approved scene intents to Home Assistant webhooks.

// Package scene delivers approved scene intents to home controllers.
//
// When a challenge is verified on a platform that cannot execute scenes
// itself (Alexa), the gateway fires the home's Home Assistant webhook to
// trigger the scene. Homes flagged as test mode get a simulated dispatcher
// that logs instead of calling out, so a registry entry can be exercised
// end to end without a reachable controller.
package scene
