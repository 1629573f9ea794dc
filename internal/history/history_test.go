package history

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/curator/internal/shared"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func newRun(strategy string) *Run {
	return &Run{
		Strategy:  strategy,
		URLsTotal: 3,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create assigns ID and sequence", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		first := newRun("title")
		if err := repo.Create(first); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		second := newRun("content")
		if err := repo.Create(second); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if first.ID == "" || second.ID == "" {
			t.Error("expected generated IDs")
		}
		if first.Sequence != 1 || second.Sequence != 2 {
			t.Errorf("expected sequences 1 and 2, got %d and %d", first.Sequence, second.Sequence)
		}
	})

	t.Run("Get round-trips a run", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		run := newRun("content")
		run.DownloadedOK = 2
		run.DownloadedFailed = 1
		if err := repo.Create(run); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}

		if got.Strategy != "content" || got.DownloadedOK != 2 || got.DownloadedFailed != 1 {
			t.Errorf("unexpected run: %+v", got)
		}
		if got.FinishedAt != nil {
			t.Error("expected nil finished_at for running run")
		}
	})

	t.Run("Update records completion", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		run := newRun("title")
		if err := repo.Create(run); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		finished := time.Now()
		run.Status = StatusCompleted
		run.FinishedAt = &finished
		run.FilesMoved = 12
		if err := repo.Update(run); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		got, err := repo.Get(run.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Status != StatusCompleted || got.FilesMoved != 12 {
			t.Errorf("unexpected run after update: %+v", got)
		}
		if got.FinishedAt == nil {
			t.Error("expected finished_at to be set")
		}
	})

	t.Run("Delete soft-deletes", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		run := newRun("title")
		if err := repo.Create(run); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if err := repo.Delete(run.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		if _, err := repo.Get(run.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(run.ID); err == nil {
			t.Error("expected error deleting twice")
		}
	})

	t.Run("List orders most recent first and honors limit", func(t *testing.T) {
		repo := NewRunRepository(testDB(t))

		for _, s := range []string{"title", "content", "title"} {
			if err := repo.Create(newRun(s)); err != nil {
				t.Fatalf("create failed: %v", err)
			}
		}

		runs, err := repo.List(0)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if runs[0].Sequence != 3 || runs[2].Sequence != 1 {
			t.Errorf("expected descending sequence, got %d..%d", runs[0].Sequence, runs[2].Sequence)
		}

		limited, err := repo.List(2)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 runs, got %d", len(limited))
		}
	})

	t.Run("Validate rejects bad status", func(t *testing.T) {
		run := newRun("title")
		run.ID = "some-id"
		run.Status = "napping"

		if err := run.Validate(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
