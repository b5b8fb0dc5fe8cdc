// Package gateway wires the voicegate HTTP server together.
//
// It hosts three surfaces on one listener:
//
//   - /futureproofhome/auth/* — the REST contract Home Assistant's voice
//     pipeline calls to request, verify, and cancel spoken challenges.
//   - /alexa — the Alexa Skill webhook, which drives the same challenge
//     flow through Alexa's request/intent envelope and triggers the scene
//     itself on approval.
//   - /admin/* — JWT-protected management API for users, homes, caller
//     mappings, and the unmapped-caller list.
//
// The gateway owns component lifecycle: it opens the SQLite registry,
// seeds the default home, starts the challenge validator's reaper, and
// shuts everything down gracefully when its context is canceled.
package gateway
