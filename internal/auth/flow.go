package auth

import (
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/royalbikeclub/royalbike/internal/model"
	"github.com/royalbikeclub/royalbike/internal/store"
)

const (
	bcryptCost = 10
	otpTTL     = 10 * time.Minute
)

// Mailer delivers one-time codes. Satisfied by email.Client.
type Mailer interface {
	SendOTP(to, code, purpose string) error
}

// Flow drives registration, login, OTP verification, and password reset over
// the user and session stores. Handlers map its sentinel errors to form
// messages or redirects.
type Flow struct {
	users      *store.UserStore
	sessions   *store.SessionStore
	mailer     Mailer
	adminEmail string
	logger     *slog.Logger
}

func NewFlow(us *store.UserStore, ss *store.SessionStore, mailer Mailer, adminEmail string, logger *slog.Logger) *Flow {
	return &Flow{
		users:      us,
		sessions:   ss,
		mailer:     mailer,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Register creates a user with a bcrypt-hashed password. The configured admin
// email registers as an admin; everyone else does not.
func (f *Flow) Register(name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if name == "" || password == "" {
		return nil, ErrInvalidEmail
	}

	existing, err := f.users.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("register lookup: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	isAdmin := f.adminEmail != "" && email == f.adminEmail
	user, err := f.users.Create(name, email, string(hash), isAdmin)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// BeginLogin checks the password, then issues a fresh OTP and opens an
// awaiting session. The code and its expiry are persisted before the mail is
// dispatched; a delivery failure leaves them in place so the next attempt
// reissues cleanly.
func (f *Flow) BeginLogin(email, password string) (*model.Session, error) {
	email = strings.TrimSpace(email)

	user, err := f.users.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("login lookup: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}

	return f.issueOTP(email, model.PurposeLogin)
}

// BeginPasswordReset issues an OTP without a password check, opening an
// awaiting session with the reset purpose.
func (f *Flow) BeginPasswordReset(email string) (*model.Session, error) {
	email = strings.TrimSpace(email)

	user, err := f.users.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("reset lookup: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return f.issueOTP(email, model.PurposeReset)
}

func (f *Flow) issueOTP(email, purpose string) (*model.Session, error) {
	code, err := store.GenerateOTP()
	if err != nil {
		return nil, err
	}
	expiry := time.Now().UTC().Add(otpTTL)

	if err := f.users.SetOTP(email, code, expiry); err != nil {
		return nil, fmt.Errorf("persist otp: %w", err)
	}
	if err := f.mailer.SendOTP(email, code, purpose); err != nil {
		return nil, fmt.Errorf("send otp: %w", err)
	}

	sess, err := f.sessions.CreateAwaiting(email, purpose)
	if err != nil {
		return nil, fmt.Errorf("create awaiting session: %w", err)
	}
	f.logger.Info("otp issued", "email", email, "purpose", purpose)
	return sess, nil
}

// VerifyResult reports what a successful verification produced.
type VerifyResult struct {
	// Session is the promoted session for a login verification, or the still
	// awaiting session for a reset verification.
	Session *model.Session
	Purpose string
	IsAdmin bool
}

// VerifyOTP consumes the submitted code for the session's email. Consumption
// clears the stored code in the same conditional update that checks it, so a
// code verifies at most once.
func (f *Flow) VerifyOTP(token, submitted string) (*VerifyResult, error) {
	sess, err := f.sessions.GetByToken(token)
	if err != nil {
		return nil, fmt.Errorf("verify session lookup: %w", err)
	}
	if sess == nil || !sess.Awaiting() {
		return nil, ErrNoPendingLogin
	}

	user, err := f.users.GetByEmail(sess.Email)
	if err != nil {
		return nil, fmt.Errorf("verify user lookup: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	ok, err := f.users.ConsumeOTP(sess.Email, strings.TrimSpace(submitted), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	if !ok {
		return nil, ErrInvalidOTP
	}

	if sess.Purpose == model.PurposeReset {
		// The session stays awaiting so the reset form can identify the user.
		return &VerifyResult{Session: sess, Purpose: sess.Purpose}, nil
	}

	promoted, err := f.sessions.Promote(sess.ID, user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("promote session: %w", err)
	}
	if promoted == nil {
		return nil, ErrNoPendingLogin
	}
	f.logger.Info("login verified", "email", user.Email, "admin", user.IsAdmin)
	return &VerifyResult{Session: promoted, Purpose: model.PurposeLogin, IsAdmin: user.IsAdmin}, nil
}

// CompleteReset replaces the password for the awaiting reset session and ends
// the session, returning the client to anonymous.
func (f *Flow) CompleteReset(token, newPassword string) error {
	sess, err := f.sessions.GetByToken(token)
	if err != nil {
		return fmt.Errorf("reset session lookup: %w", err)
	}
	if sess == nil || !sess.Awaiting() || sess.Purpose != model.PurposeReset {
		return ErrNoPendingLogin
	}
	if newPassword == "" {
		return ErrIncorrectPassword
	}

	user, err := f.users.GetByEmail(sess.Email)
	if err != nil {
		return fmt.Errorf("reset user lookup: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := f.users.UpdatePassword(sess.Email, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := f.sessions.Delete(sess.ID); err != nil {
		f.logger.Error("delete reset session", "error", err)
	}
	f.logger.Info("password reset", "email", sess.Email)
	return nil
}

// Logout removes the session for a token. Unknown or expired tokens are a no-op.
func (f *Flow) Logout(token string) error {
	sess, err := f.sessions.GetByToken(token)
	if err != nil {
		return fmt.Errorf("logout session lookup: %w", err)
	}
	if sess == nil {
		return nil
	}
	return f.sessions.Delete(sess.ID)
}
