// Package oauth manages the lifecycle of imported OAuth tokens: expiry
// classification, refresh against the token endpoint, and bundle import.
package oauth

import "time"

// SafetyMargin is the window before literal expiry during which a token is
// treated as due for refresh.
const SafetyMargin = 5 * time.Minute

// State classifies a token against wall-clock time. It is recomputed on every
// load; nothing beyond the stored expiry persists.
type State int

const (
	StateValid State = iota
	StateExpiringSoon
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateExpiringSoon:
		return "expiring soon"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

// StateAt classifies an expiry timestamp at the given instant.
func StateAt(expiresAt, now time.Time) State {
	if !now.Before(expiresAt) {
		return StateExpired
	}
	if !now.Before(expiresAt.Add(-SafetyMargin)) {
		return StateExpiringSoon
	}
	return StateValid
}
