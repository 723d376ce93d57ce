package database

import (
	"path/filepath"
	"testing"
)

// openTestDB creates a file-backed sqlite database with the full schema
// applied, rooted in a per-test temp dir.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("RunMigrations() failed: %v", err)
	}
	return db
}

func TestMigrationsSQLite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}

	db := openTestDB(t)

	// Every table from the schema should be queryable
	tables := []string{
		"users", "decks", "cards", "deck_stars", "card_bookmarks",
		"deck_comments", "quiz_sessions", "quiz_answers", "user_progress",
		"streaks", "daily_challenges", "activity_log", "study_plans",
	}
	for _, table := range tables {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}

	// Running migrations again must be a no-op
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Errorf("second RunMigrations() failed: %v", err)
	}
}

func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}

	db := openTestDB(t)

	first, err := db.ExecReturningID(
		"INSERT INTO users (email, name, username_set) VALUES (?, ?, ?)",
		"first@example.com", "First", false)
	if err != nil {
		t.Fatalf("ExecReturningID() failed: %v", err)
	}
	if first <= 0 {
		t.Fatalf("ExecReturningID() = %d, want a positive id", first)
	}

	second, err := db.ExecReturningID(
		"INSERT INTO users (email, name, username_set) VALUES (?, ?, ?)",
		"second@example.com", "Second", false)
	if err != nil {
		t.Fatalf("ExecReturningID() failed: %v", err)
	}
	if second != first+1 {
		t.Errorf("second id = %d, want %d", second, first+1)
	}
}

func TestTransactionRollback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}

	db := openTestDB(t)

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	if _, err := tx.ExecReturningID(
		"INSERT INTO users (email, name, username_set) VALUES (?, ?, ?)",
		"rolled-back@example.com", "Nobody", false); err != nil {
		t.Fatalf("insert in tx failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if n != 0 {
		t.Errorf("users count after rollback = %d, want 0", n)
	}
}
