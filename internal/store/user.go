package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/royalbikeclub/royalbike/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var otp sql.NullString
	var otpExpiry sql.NullTime

	err := scanner.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &otp, &otpExpiry,
		&u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if otp.Valid {
		u.OTP = &otp.String
	}
	if otpExpiry.Valid {
		t := otpExpiry.Time
		u.OTPExpiry = &t
	}
	return &u, nil
}

const userCols = `id, name, email, password_hash, otp, otp_expiry, is_admin, created_at, updated_at`

// GenerateOTP returns a 6-digit numeric code (100000–999999).
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (s *UserStore) Create(name, email, passwordHash string, isAdmin bool) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (name, email, password_hash, is_admin) VALUES (?, ?, ?, ?)`,
		name, email, passwordHash, isAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// SetOTP stores a fresh code and expiry on the user, replacing any pending one.
func (s *UserStore) SetOTP(email, otp string, expiry time.Time) error {
	result, err := s.db.Exec(
		`UPDATE users SET otp = ?, otp_expiry = ?, updated_at = datetime('now') WHERE email = ?`,
		otp, expiry, email,
	)
	if err != nil {
		return fmt.Errorf("set otp: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ConsumeOTP clears the stored code in the same statement that checks it, so
// two concurrent verifications cannot both succeed with one code. Returns true
// if the code matched and was still valid at now.
func (s *UserStore) ConsumeOTP(email, otp string, now time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE users SET otp = NULL, otp_expiry = NULL, updated_at = datetime('now')
		 WHERE email = ? AND otp = ? AND otp_expiry >= ?`,
		email, otp, now,
	)
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *UserStore) UpdatePassword(email, passwordHash string) error {
	result, err := s.db.Exec(
		`UPDATE users SET password_hash = ?, otp = NULL, otp_expiry = NULL, updated_at = datetime('now') WHERE email = ?`,
		passwordHash, email,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
