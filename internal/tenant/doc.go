// ABOUTME: Package doc for tenant resolution.
// ABOUTME: Maps inbound identifiers (home ids, caller ids) to registered homes.

// Package tenant resolves inbound request identifiers to registered homes.
//
// Two identifier kinds arrive at the gateway: explicit home ids carried in
// REST payloads, and opaque voice-platform caller ids (for example Amazon
// user ids) that must be looked up through a caller mapping. The resolver
// handles both, falling back to a configured default home for unmapped
// callers so a single-home deployment works with zero registry setup.
package tenant
