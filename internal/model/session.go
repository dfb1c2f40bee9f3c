package model

import "time"

// Session states. A session row is either waiting for an OTP to be confirmed
// or fully authenticated; an anonymous client simply has no session row.
const (
	SessionAwaitingOTP   = "awaiting_otp"
	SessionAuthenticated = "authenticated"
)

// OTP purposes for an awaiting session.
const (
	PurposeLogin = "login"
	PurposeReset = "reset"
)

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	State     string    `json:"state"`
	Email     string    `json:"email"`
	Purpose   string    `json:"purpose,omitempty"`
	UserID    *int64    `json:"user_id,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Awaiting reports whether the session is mid OTP challenge.
func (s *Session) Awaiting() bool {
	return s.State == SessionAwaitingOTP
}

// Authenticated reports whether the session carries a verified identity.
func (s *Session) Authenticated() bool {
	return s.State == SessionAuthenticated && s.UserID != nil
}
