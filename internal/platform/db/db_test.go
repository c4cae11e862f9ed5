package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"inhand/internal/domain/auth"
	"inhand/internal/platform/config"
	"inhand/migrations"
)

func TestMigrationFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "0001_a.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "0003_dir.sql"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	files, err := migrationFiles(os.DirFS(dir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"0001_a.sql", "0002_b.sql"}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	files, err := migrationFiles(migrations.FS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"0001_init.sql", "0002_audit_jobs.sql"}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("expected embedded %v, got %v", want, files)
	}
}

type recordingEnsurer struct {
	calls []string
	err   error
}

func (r *recordingEnsurer) EnsureUser(_ context.Context, email, _, role string) error {
	r.calls = append(r.calls, email+":"+role)
	return r.err
}

func TestSeed(t *testing.T) {
	r := &recordingEnsurer{}
	if err := Seed(context.Background(), r, config.Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("expected no seeding without email, got %v", r.calls)
	}

	cfg := config.Config{SeedAdminEmail: "admin@example.com", SeedAdminPassword: "pw"}
	if err := Seed(context.Background(), r, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.calls) != 1 || r.calls[0] != "admin@example.com:"+auth.RoleAdmin {
		t.Fatalf("unexpected seed calls: %v", r.calls)
	}

	r.err = errors.New("db down")
	if err := Seed(context.Background(), r, cfg); !errors.Is(err, r.err) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
