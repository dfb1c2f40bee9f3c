package auth

import "errors"

var (
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidEmail is returned when the submitted email is not a usable address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrUserNotFound is returned when no user exists for the given email.
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword is returned when the password does not match the stored hash.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrNoPendingLogin is returned when an OTP or reset step is reached without a
	// prior awaiting session. Handlers turn this into a redirect to /login.
	ErrNoPendingLogin = errors.New("no pending login or reset")
	// ErrInvalidOTP is returned when the submitted code is wrong, already used,
	// or past its expiry.
	ErrInvalidOTP = errors.New("invalid or expired OTP")
)
