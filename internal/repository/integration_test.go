package repository

import (
	"path/filepath"
	"testing"
	"time"

	"magizhquiz/internal/database"
	"magizhquiz/internal/models"
)

// openTestDB creates a file-backed sqlite database with the full schema
// applied, rooted in a per-test temp dir.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("RunMigrations() failed: %v", err)
	}
	return db
}

func TestLinkGoogleID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}

	db := openTestDB(t)
	users := NewUserRepository(db)

	user, err := users.CreateUser("alice@example.com", "hash", "Alice")
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	found, err := users.GetUserByGoogleID("google-sub-1")
	if err != nil {
		t.Fatalf("GetUserByGoogleID() failed: %v", err)
	}
	if found != nil {
		t.Fatalf("GetUserByGoogleID() before linking = %+v, want nil", found)
	}

	if err := users.LinkGoogleID(user.ID, "google-sub-1"); err != nil {
		t.Fatalf("LinkGoogleID() failed: %v", err)
	}

	// The password account must now resolve by Google subject
	found, err = users.GetUserByGoogleID("google-sub-1")
	if err != nil {
		t.Fatalf("GetUserByGoogleID() after linking failed: %v", err)
	}
	if found == nil || found.ID != user.ID {
		t.Fatalf("GetUserByGoogleID() after linking = %+v, want user %d", found, user.ID)
	}
	if found.PasswordHash != "hash" {
		t.Errorf("linking must not touch the password hash, got %q", found.PasswordHash)
	}
}

func TestDeleteStaleSessions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}

	db := openTestDB(t)
	users := NewUserRepository(db)
	decks := NewDeckRepository(db)
	quizzes := NewQuizRepository(db)

	user, err := users.CreateUser("bob@example.com", "hash", "Bob")
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	deck, err := decks.CreateDeck(user.ID, "Capitals", "", false, nil)
	if err != nil {
		t.Fatalf("CreateDeck() failed: %v", err)
	}

	newSession := func(t *testing.T) *models.QuizSession {
		t.Helper()
		s, err := quizzes.CreateSession(user.ID, deck.ID, models.ModeExam, 5)
		if err != nil {
			t.Fatalf("CreateSession() failed: %v", err)
		}
		return s
	}
	backdate := func(t *testing.T, id int64) {
		t.Helper()
		old := time.Now().Add(-48 * time.Hour)
		if _, err := db.Exec("UPDATE quiz_sessions SET started_at = ? WHERE id = ?", old, id); err != nil {
			t.Fatalf("failed to backdate session %d: %v", id, err)
		}
	}

	abandoned := newSession(t)
	backdate(t, abandoned.ID)

	finished := newSession(t)
	backdate(t, finished.ID)
	if err := quizzes.CompleteSession(finished.ID, 80); err != nil {
		t.Fatalf("CompleteSession() failed: %v", err)
	}

	recent := newSession(t)

	removed, err := quizzes.DeleteStaleSessions(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("DeleteStaleSessions() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("DeleteStaleSessions() removed %d sessions, want 1", removed)
	}

	if s, err := quizzes.GetSessionByID(abandoned.ID); err != nil || s != nil {
		t.Errorf("abandoned session still present: %+v, err: %v", s, err)
	}
	for _, keep := range []int64{finished.ID, recent.ID} {
		s, err := quizzes.GetSessionByID(keep)
		if err != nil {
			t.Fatalf("GetSessionByID(%d) failed: %v", keep, err)
		}
		if s == nil {
			t.Errorf("session %d was deleted, want kept", keep)
		}
	}
}
