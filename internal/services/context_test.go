package services_test

import (
	"context"
	"testing"

	"github.com/oloynet/tinals-player/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithItemID(ctx, "42")
	ctx = services.WithWorkflow(ctx, "sync-images")
	ctx = services.WithRunID(ctx, "run-123")

	if id, ok := services.ItemIDFromContext(ctx); !ok || id != "42" {
		t.Fatalf("unexpected item id: %v %v", id, ok)
	}
	if wf, ok := services.WorkflowFromContext(ctx); !ok || wf != "sync-images" {
		t.Fatalf("unexpected workflow: %v %v", wf, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithWorkflow(ctx, "")
	ctx = services.WithItemID(ctx, "")
	if _, ok := services.WorkflowFromContext(ctx); ok {
		t.Fatal("expected no workflow value")
	}
	if _, ok := services.ItemIDFromContext(ctx); ok {
		t.Fatal("expected no item id value")
	}
}
