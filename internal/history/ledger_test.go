package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/oloynet/tinals-player/internal/reconcile"
	"github.com/oloynet/tinals-player/internal/services"
)

func openTestLedger(t *testing.T) (*Ledger, *time.Time) {
	t.Helper()
	ledger, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = ledger.Close() })
	clock := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return clock }
	return ledger, &clock
}

func TestRunLifecycle(t *testing.T) {
	ledger, clock := openTestLedger(t)
	ctx := services.WithRunID(context.Background(), "run-a")

	if err := ledger.BeginRun(ctx, "run-a", []string{"audio", "images"}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	events := []reconcile.Event{
		{Workflow: reconcile.WorkflowSyncAudio, ItemID: "1", Field: "audio", Outcome: reconcile.OutcomeMaterialized, Path: "data/2026/mp3/a.mp3"},
		{Workflow: reconcile.WorkflowSyncImages, ItemID: "1", Field: "image_mobile", Outcome: reconcile.OutcomeFailed, Detail: "decode master"},
		{Workflow: reconcile.WorkflowSyncImages, ItemID: "2", Field: "image", Outcome: reconcile.OutcomeSkipped},
	}
	for _, ev := range events {
		if err := ledger.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	*clock = clock.Add(90 * time.Second)
	if err := ledger.FinishRun(ctx, "run-a", errors.New("wget missing")); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	run, err := ledger.GetRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Materialized != 1 || run.Failed != 1 || run.Error != "wget missing" {
		t.Fatalf("unexpected run summary %+v", run)
	}
	if run.Duration() != 90*time.Second {
		t.Fatalf("unexpected duration %s", run.Duration())
	}
	if len(run.Operations) != 2 || run.Operations[1] != "images" {
		t.Fatalf("unexpected operations %v", run.Operations)
	}

	stored, err := ledger.RunEvents(ctx, "run-a")
	if err != nil {
		t.Fatalf("RunEvents: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 events, got %d", len(stored))
	}
	if stored[0].Path != "data/2026/mp3/a.mp3" || stored[1].Detail != "decode master" || stored[2].Outcome != reconcile.OutcomeSkipped {
		t.Fatalf("unexpected events %+v", stored)
	}
}

func TestRecordRequiresRunID(t *testing.T) {
	ledger, _ := openTestLedger(t)
	err := ledger.Record(context.Background(), reconcile.Event{Workflow: reconcile.WorkflowCheck, Outcome: reconcile.OutcomeCleared})
	if !errors.Is(err, ErrNoRun) {
		t.Fatalf("expected ErrNoRun, got %v", err)
	}
}

func TestRecentRunsNewestFirstAndPrefixLookup(t *testing.T) {
	ledger, clock := openTestLedger(t)
	ctx := context.Background()
	for _, id := range []string{"aaa-1", "bbb-2", "bbb-3"} {
		if err := ledger.BeginRun(ctx, id, []string{"check"}); err != nil {
			t.Fatal(err)
		}
		*clock = clock.Add(time.Minute)
	}

	runs, err := ledger.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "bbb-3" || runs[1].ID != "bbb-2" {
		t.Fatalf("unexpected order %+v", runs)
	}
	if runs[0].FinishedAt != nil {
		t.Fatal("unfinished run should have no finish time")
	}

	if run, err := ledger.GetRun(ctx, "aaa"); err != nil || run.ID != "aaa-1" {
		t.Fatalf("expected prefix match, got %+v %v", run, err)
	}
	if _, err := ledger.GetRun(ctx, "bbb"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ambiguous prefix error, got %v", err)
	}
	if _, err := ledger.GetRun(ctx, "zzz"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := ledger.FinishRun(ctx, "zzz", nil); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found on finish, got %v", err)
	}
}

func TestPruneCascadesEvents(t *testing.T) {
	ledger, clock := openTestLedger(t)
	ctx := services.WithRunID(context.Background(), "old")
	if err := ledger.BeginRun(ctx, "old", nil); err != nil {
		t.Fatal(err)
	}
	if err := ledger.Record(ctx, reconcile.Event{Workflow: reconcile.WorkflowReset, Outcome: reconcile.OutcomeCleared}); err != nil {
		t.Fatal(err)
	}
	*clock = clock.AddDate(0, 0, 40)
	if err := ledger.BeginRun(ctx, "new", nil); err != nil {
		t.Fatal(err)
	}

	removed, err := ledger.Prune(ctx, clock.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one run pruned, got %d", removed)
	}
	events, err := ledger.RunEvents(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("expected cascaded delete, got %d events", len(events))
	}
}

func TestReopenSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	_ = first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer second.Close()

	var count int
	if err := second.db.QueryRow("SELECT COUNT(1) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 recorded migrations, got %d", count)
	}
}
