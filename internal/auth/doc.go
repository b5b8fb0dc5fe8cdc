// Package auth provides authentication for the admin API.
//
// Admin users log in with a username and bcrypt-checked password and
// receive an HS256 JWT. All other admin endpoints require the token as
// a bearer Authorization header; the middleware verifies it, looks up
// the admin user, and attaches an AuthContext to the request context.
//
//	token, err := verifier.Generate(adminID, 24*time.Hour)
//	adminID, err := verifier.Verify(token)
//
// The voice-facing endpoints are deliberately unauthenticated at this
// layer: they identify callers by platform ids, and the challenge
// itself is the authentication step.
package auth
