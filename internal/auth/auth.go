// Package auth is the identity collaborator. The application core only
// observes sessions through the Provider interface; the concrete
// implementation here keeps a local profile in the store, so the quiz
// works entirely offline.
package auth

import "context"

// Session is an authenticated identity.
type Session struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Event is a session transition.
type Event int

const (
	// SignedIn is delivered when a session becomes present.
	SignedIn Event = iota
	// SignedOut is an explicit sign-out, distinct from "no session yet".
	SignedOut
)

// Provider resolves and changes the current identity.
type Provider interface {
	// Current returns the current session, or nil when signed out.
	Current(ctx context.Context) (*Session, error)

	// SignIn establishes a session for the given profile. A returning
	// email keeps its previous user id so history stays attached.
	SignIn(ctx context.Context, displayName, email string) (*Session, error)

	// SignOut ends the current session and notifies watchers.
	SignOut(ctx context.Context) error

	// Watch registers a handler for session transitions and returns its
	// cancel func. The handler receives the new session on SignedIn and
	// nil on SignedOut.
	Watch(fn func(Event, *Session)) (cancel func())
}
