package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/royalbikeclub/royalbike/internal/model"
)

const (
	awaitingTTL      = 15 * time.Minute
	authenticatedTTL = 7 * 24 * time.Hour
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var sess model.Session
	var purpose sql.NullString
	var userID sql.NullInt64

	err := scanner.Scan(
		&sess.ID, &sess.Token, &sess.State, &sess.Email, &purpose,
		&userID, &sess.IsAdmin, &sess.ExpiresAt, &sess.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if purpose.Valid {
		sess.Purpose = purpose.String
	}
	if userID.Valid {
		sess.UserID = &userID.Int64
	}
	return &sess, nil
}

const sessionCols = `id, token, state, email, purpose, user_id, is_admin, expires_at, created_at`

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CreateAwaiting opens an OTP-challenge session for the given email. Any prior
// awaiting session for the same email is removed so only one challenge is live.
func (s *SessionStore) CreateAwaiting(email, purpose string) (*model.Session, error) {
	if purpose != model.PurposeLogin && purpose != model.PurposeReset {
		return nil, fmt.Errorf("invalid purpose %q", purpose)
	}

	_, err := s.db.Exec(
		`DELETE FROM sessions WHERE state = ? AND email = ?`,
		model.SessionAwaitingOTP, email,
	)
	if err != nil {
		return nil, fmt.Errorf("clear awaiting sessions: %w", err)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(awaitingTTL)

	result, err := s.db.Exec(
		`INSERT INTO sessions (token, state, email, purpose, expires_at) VALUES (?, ?, ?, ?, ?)`,
		token, model.SessionAwaitingOTP, email, purpose, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getByID(id)
}

// Promote turns an awaiting session into an authenticated one, binding the
// verified identity and admin role resolved at verification time.
func (s *SessionStore) Promote(id, userID int64, isAdmin bool) (*model.Session, error) {
	expiresAt := time.Now().UTC().Add(authenticatedTTL)
	result, err := s.db.Exec(
		`UPDATE sessions SET state = ?, purpose = NULL, user_id = ?, is_admin = ?, expires_at = ?
		 WHERE id = ? AND state = ?`,
		model.SessionAuthenticated, userID, isAdmin, expiresAt, id, model.SessionAwaitingOTP,
	)
	if err != nil {
		return nil, fmt.Errorf("promote session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.getByID(id)
}

func (s *SessionStore) getByID(id int64) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// GetByToken returns the session for a token, or nil if absent or expired.
func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionCols+` FROM sessions WHERE token = ? AND expires_at > ?`,
		token, time.Now().UTC(),
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
