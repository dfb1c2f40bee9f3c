package store

import (
	"regexp"
	"testing"
	"time"

	"github.com/royalbikeclub/royalbike/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestGenerateOTP(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 100; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("generate otp: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("code %q is not 6 digits", code)
		}
		if code < "100000" || code > "999999" {
			t.Fatalf("code %q outside range", code)
		}
	}
}

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("Alice", "alice@example.com", "hash", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == 0 {
		t.Error("expected non-zero id")
	}
	if u.Name != "Alice" {
		t.Errorf("name = %q, want %q", u.Name, "Alice")
	}
	if u.IsAdmin {
		t.Error("expected non-admin user")
	}
	if u.OTP != nil {
		t.Error("expected no OTP on a fresh user")
	}
}

func TestUserCreateAdmin(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("Root", "admin@example.com", "hash", true)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if !u.IsAdmin {
		t.Error("expected admin user")
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("Alice", "alice@example.com", "hash", false); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("Alice Again", "alice@example.com", "hash2", false); err == nil {
		t.Error("expected unique constraint error for duplicate email")
	}
}

func TestUserGetByEmail(t *testing.T) {
	us := setupUserTestDB(t)

	created, _ := us.Create("Alice", "alice@example.com", "hash", false)

	u, err := us.GetByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if u.ID != created.ID {
		t.Errorf("id = %d, want %d", u.ID, created.ID)
	}
}

func TestUserGetByEmailNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestSetOTP(t *testing.T) {
	us := setupUserTestDB(t)

	us.Create("Alice", "alice@example.com", "hash", false)

	expiry := time.Now().UTC().Add(10 * time.Minute)
	if err := us.SetOTP("alice@example.com", "123456", expiry); err != nil {
		t.Fatalf("set otp: %v", err)
	}

	u, _ := us.GetByEmail("alice@example.com")
	if u.OTP == nil || *u.OTP != "123456" {
		t.Errorf("otp = %v, want 123456", u.OTP)
	}
	if u.OTPExpiry == nil {
		t.Fatal("expected otp expiry to be set")
	}
}

func TestSetOTPUnknownEmail(t *testing.T) {
	us := setupUserTestDB(t)

	err := us.SetOTP("nobody@example.com", "123456", time.Now().UTC())
	if err == nil {
		t.Error("expected error for unknown email")
	}
}

func TestConsumeOTP(t *testing.T) {
	us := setupUserTestDB(t)

	us.Create("Alice", "alice@example.com", "hash", false)
	now := time.Now().UTC()
	us.SetOTP("alice@example.com", "654321", now.Add(10*time.Minute))

	ok, err := us.ConsumeOTP("alice@example.com", "654321", now)
	if err != nil {
		t.Fatalf("consume otp: %v", err)
	}
	if !ok {
		t.Fatal("expected valid code to consume")
	}

	u, _ := us.GetByEmail("alice@example.com")
	if u.OTP != nil || u.OTPExpiry != nil {
		t.Error("expected otp cleared after consumption")
	}
}

func TestConsumeOTPSingleUse(t *testing.T) {
	us := setupUserTestDB(t)

	us.Create("Alice", "alice@example.com", "hash", false)
	now := time.Now().UTC()
	us.SetOTP("alice@example.com", "654321", now.Add(10*time.Minute))

	ok, _ := us.ConsumeOTP("alice@example.com", "654321", now)
	if !ok {
		t.Fatal("first consume should succeed")
	}

	ok, err := us.ConsumeOTP("alice@example.com", "654321", now)
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if ok {
		t.Error("second consume of the same code should fail")
	}
}

func TestConsumeOTPWrongCode(t *testing.T) {
	us := setupUserTestDB(t)

	us.Create("Alice", "alice@example.com", "hash", false)
	now := time.Now().UTC()
	us.SetOTP("alice@example.com", "654321", now.Add(10*time.Minute))

	ok, err := us.ConsumeOTP("alice@example.com", "111111", now)
	if err != nil {
		t.Fatalf("consume otp: %v", err)
	}
	if ok {
		t.Error("wrong code should not consume")
	}

	// The stored code survives a wrong attempt.
	ok, _ = us.ConsumeOTP("alice@example.com", "654321", now)
	if !ok {
		t.Error("correct code should still work after a wrong attempt")
	}
}

func TestConsumeOTPExpired(t *testing.T) {
	us := setupUserTestDB(t)

	us.Create("Alice", "alice@example.com", "hash", false)
	expiry := time.Now().UTC().Add(10 * time.Minute)
	us.SetOTP("alice@example.com", "654321", expiry)

	ok, err := us.ConsumeOTP("alice@example.com", "654321", expiry.Add(time.Second))
	if err != nil {
		t.Fatalf("consume otp: %v", err)
	}
	if ok {
		t.Error("expired code should not consume")
	}
}

func TestConsumeOTPAtExpiryBoundary(t *testing.T) {
	us := setupUserTestDB(t)

	us.Create("Alice", "alice@example.com", "hash", false)
	expiry := time.Now().UTC().Add(10 * time.Minute)
	us.SetOTP("alice@example.com", "654321", expiry)

	// A code submitted exactly at its expiry instant is still valid.
	ok, err := us.ConsumeOTP("alice@example.com", "654321", expiry)
	if err != nil {
		t.Fatalf("consume otp: %v", err)
	}
	if !ok {
		t.Error("code at expiry boundary should consume")
	}
}

func TestUpdatePassword(t *testing.T) {
	us := setupUserTestDB(t)

	us.Create("Alice", "alice@example.com", "old-hash", false)
	us.SetOTP("alice@example.com", "654321", time.Now().UTC().Add(10*time.Minute))

	if err := us.UpdatePassword("alice@example.com", "new-hash"); err != nil {
		t.Fatalf("update password: %v", err)
	}

	u, _ := us.GetByEmail("alice@example.com")
	if u.PasswordHash != "new-hash" {
		t.Errorf("password_hash = %q, want %q", u.PasswordHash, "new-hash")
	}
	if u.OTP != nil {
		t.Error("expected pending otp cleared on password change")
	}
}
