package domain

// User is the cached identity returned by the backend.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Session pairs the bearer token with the identity it was validated for.
// A non-nil User implies the token passed an identity check; the two are
// stored and cleared together.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// SessionState tracks the session guard through a protected-view mount.
type SessionState string

const (
	SessionUnchecked       SessionState = "unchecked"
	SessionChecking        SessionState = "checking"
	SessionAuthenticated   SessionState = "authenticated"
	SessionUnauthenticated SessionState = "unauthenticated"
)
