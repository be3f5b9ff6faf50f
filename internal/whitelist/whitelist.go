// Package whitelist implements the login-time allow/deny policy: an
// always-allow Open variant and a JSON-file-backed variant with a
// TTL-bounded cache, matching the precedence rules of the original
// whitelist module.
package whitelist

import "github.com/google/uuid"

// Player is the login-time identity presented to a whitelist check.
// Equality for whitelist matching is on the (Name, UUID) tuple.
type Player struct {
	Name    string
	UUID    uuid.UUID
	HasUUID bool
}

// Decision is the outcome of a whitelist check: either the player is
// allowed through unchanged, or denied with a human-readable reason.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow builds an Allowed decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny builds a Denied decision carrying reason.
func Deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Policy decides whether a Player may proceed to backend login.
type Policy interface {
	Check(p Player) Decision
}

// Denial message catalogue. The admin contact line is a generic
// placeholder rather than any specific operator's address — the
// protocol only requires that a reason string be human-readable, not
// that it name a particular contact.
const (
	UUIDMissingMessage = "Invalid UUID! (UUID Missing)"

	InactiveMessage = "Whitelist Status Inactive!\n" +
		"Please contact the server administrators to reactivate."

	UsernameInvalidMessage = "Invalid Username!\n" +
		"Please contact the server administrators to update your username."

	UUIDInvalidMessage = "Invalid UUID!"

	NotWhitelistedMessage = "Not whitelisted on this server.\n" +
		"Please direct whitelist requests to the server administrators."
)
