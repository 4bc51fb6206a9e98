package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/clockz"
)

// setupTestXDG sets XDG env vars to a temp directory for isolated testing.
func setupTestXDG(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpDir, "state"))
	return tmpDir
}

func openTest(t *testing.T, opts ...Option) *DB {
	t.Helper()
	db, err := OpenPath(filepath.Join(t.TempDir(), "test.db"), opts...)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAndClose(t *testing.T) {
	tmpDir := setupTestXDG(t)

	db, err := Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Conn() == nil {
		t.Fatal("Conn() returned nil")
	}

	dbPath := filepath.Join(tmpDir, "exmachina", "exmachina.db")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("Database file not created at %s: %v", dbPath, err)
	}
}

func TestMigrationsCreateTables(t *testing.T) {
	db := openTest(t)

	for _, table := range []string{"migrations", "options", "transients"} {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("Table %q not found: %v", table, err)
		}
	}
}

func TestDoubleOpen(t *testing.T) {
	setupTestXDG(t)

	db1, err := Open()
	if err != nil {
		t.Fatalf("First Open failed: %v", err)
	}
	defer db1.Close()

	db2, err := Open()
	if err != nil {
		t.Fatalf("Second Open failed: %v", err)
	}
	defer db2.Close()
}

func TestOptionLifecycle(t *testing.T) {
	db := openTest(t)

	if _, ok, err := db.Option("beta_theme_settings"); err != nil || ok {
		t.Fatalf("missing option: ok=%v err=%v", ok, err)
	}

	if err := db.UpdateOption("beta_theme_settings", `{"posts_nav":"numeric"}`); err != nil {
		t.Fatalf("UpdateOption: %v", err)
	}
	if err := db.UpdateOption("beta_theme_settings", `{"posts_nav":"prev-next"}`); err != nil {
		t.Fatalf("UpdateOption overwrite: %v", err)
	}

	v, ok, err := db.Option("beta_theme_settings")
	if err != nil || !ok {
		t.Fatalf("Option: ok=%v err=%v", ok, err)
	}
	if v != `{"posts_nav":"prev-next"}` {
		t.Fatalf("Option = %q", v)
	}

	if err := db.UpdateOption("alpha", "1"); err != nil {
		t.Fatal(err)
	}
	names, err := db.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if diff := cmp.Diff([]string{"alpha", "beta_theme_settings"}, names); diff != "" {
		t.Errorf("Options() mismatch (-want +got):\n%s", diff)
	}

	if err := db.DeleteOption("alpha"); err != nil {
		t.Fatalf("DeleteOption: %v", err)
	}
	if _, ok, _ := db.Option("alpha"); ok {
		t.Fatal("alpha should be gone")
	}
	if err := db.DeleteOption("alpha"); err != nil {
		t.Fatalf("deleting a missing option should not fail: %v", err)
	}
}

func TestTransientExpiry(t *testing.T) {
	clock := clockz.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	db := openTest(t, WithClock(clock))

	if err := db.SetTransient("category_count", "3", 12*time.Hour); err != nil {
		t.Fatalf("SetTransient: %v", err)
	}
	if err := db.SetTransient("forever", "x", 0); err != nil {
		t.Fatalf("SetTransient: %v", err)
	}

	v, ok, err := db.Transient("category_count")
	if err != nil || !ok || v != "3" {
		t.Fatalf("Transient before expiry = %q, %v, %v", v, ok, err)
	}

	clock.Advance(12 * time.Hour)

	if _, ok, err := db.Transient("category_count"); err != nil || ok {
		t.Fatalf("Transient after expiry: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := db.Transient("forever"); !ok {
		t.Fatal("zero-ttl transient should never expire")
	}
}

func TestPurgeExpired(t *testing.T) {
	clock := clockz.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	db := openTest(t, WithClock(clock))

	for _, name := range []string{"a", "b"} {
		if err := db.SetTransient(name, "v", time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.SetTransient("c", "v", time.Hour); err != nil {
		t.Fatal(err)
	}

	clock.Advance(2 * time.Minute)

	n, err := db.PurgeExpired()
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 2 {
		t.Fatalf("purged %d, want 2", n)
	}
	if _, ok, _ := db.Transient("c"); !ok {
		t.Fatal("c should survive the purge")
	}
}
