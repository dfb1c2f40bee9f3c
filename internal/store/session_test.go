package store

import (
	"testing"
	"time"

	"github.com/royalbikeclub/royalbike/internal/database"
	"github.com/royalbikeclub/royalbike/internal/model"
)

func setupSessionTestDB(t *testing.T) (*SessionStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db), NewUserStore(db)
}

func TestCreateAwaiting(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	sess, err := ss.CreateAwaiting("alice@example.com", model.PurposeLogin)
	if err != nil {
		t.Fatalf("create awaiting: %v", err)
	}
	if len(sess.Token) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if !sess.Awaiting() {
		t.Error("expected awaiting state")
	}
	if sess.Purpose != model.PurposeLogin {
		t.Errorf("purpose = %q, want %q", sess.Purpose, model.PurposeLogin)
	}
	if sess.UserID != nil {
		t.Error("awaiting session should carry no user id")
	}
}

func TestCreateAwaitingInvalidPurpose(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	if _, err := ss.CreateAwaiting("alice@example.com", "garbage"); err == nil {
		t.Error("expected error for invalid purpose")
	}
}

func TestCreateAwaitingReplacesPrior(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	first, _ := ss.CreateAwaiting("alice@example.com", model.PurposeLogin)
	second, err := ss.CreateAwaiting("alice@example.com", model.PurposeLogin)
	if err != nil {
		t.Fatalf("second create awaiting: %v", err)
	}

	if sess, _ := ss.GetByToken(first.Token); sess != nil {
		t.Error("first awaiting session should have been replaced")
	}
	if sess, _ := ss.GetByToken(second.Token); sess == nil {
		t.Error("second awaiting session should be live")
	}
}

func TestPromote(t *testing.T) {
	ss, us := setupSessionTestDB(t)

	u, _ := us.Create("Alice", "alice@example.com", "hash", false)
	sess, _ := ss.CreateAwaiting("alice@example.com", model.PurposeLogin)

	promoted, err := ss.Promote(sess.ID, u.ID, false)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted == nil {
		t.Fatal("expected promoted session")
	}
	if !promoted.Authenticated() {
		t.Error("expected authenticated state")
	}
	if promoted.Purpose != "" {
		t.Errorf("purpose = %q, want cleared", promoted.Purpose)
	}
	if promoted.UserID == nil || *promoted.UserID != u.ID {
		t.Errorf("user_id = %v, want %d", promoted.UserID, u.ID)
	}
	if promoted.Token != sess.Token {
		t.Error("token should survive promotion")
	}
	if !promoted.ExpiresAt.After(sess.ExpiresAt) {
		t.Error("promotion should extend expiry")
	}
}

func TestPromoteAdmin(t *testing.T) {
	ss, us := setupSessionTestDB(t)

	u, _ := us.Create("Root", "admin@example.com", "hash", true)
	sess, _ := ss.CreateAwaiting("admin@example.com", model.PurposeLogin)

	promoted, err := ss.Promote(sess.ID, u.ID, true)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !promoted.IsAdmin {
		t.Error("expected admin flag on promoted session")
	}
}

func TestPromoteAlreadyAuthenticated(t *testing.T) {
	ss, us := setupSessionTestDB(t)

	u, _ := us.Create("Alice", "alice@example.com", "hash", false)
	sess, _ := ss.CreateAwaiting("alice@example.com", model.PurposeLogin)
	ss.Promote(sess.ID, u.ID, false)

	promoted, err := ss.Promote(sess.ID, u.ID, false)
	if err != nil {
		t.Fatalf("second promote: %v", err)
	}
	if promoted != nil {
		t.Error("promoting an already authenticated session should return nil")
	}
}

func TestGetByTokenNotFound(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	sess, err := ss.GetByToken("nonexistent")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestGetByTokenExpired(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	sess, _ := ss.CreateAwaiting("alice@example.com", model.PurposeLogin)

	past := time.Now().UTC().Add(-time.Hour)
	if _, err := ss.db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`, past, sess.ID); err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expected nil for expired session")
	}
}

func TestSessionDelete(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	sess, _ := ss.CreateAwaiting("alice@example.com", model.PurposeReset)

	if err := ss.Delete(sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := ss.GetByToken(sess.Token); got != nil {
		t.Error("expected session gone after delete")
	}
}

func TestDeleteExpired(t *testing.T) {
	ss, _ := setupSessionTestDB(t)

	stale, _ := ss.CreateAwaiting("old@example.com", model.PurposeLogin)
	fresh, _ := ss.CreateAwaiting("new@example.com", model.PurposeLogin)

	past := time.Now().UTC().Add(-time.Hour)
	if _, err := ss.db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`, past, stale.ID); err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	count, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d, want 1", count)
	}
	if got, _ := ss.GetByToken(fresh.Token); got == nil {
		t.Error("fresh session should survive cleanup")
	}
}
