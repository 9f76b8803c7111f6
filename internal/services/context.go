package services

import "context"

type contextKey string

const (
	itemIDKey   contextKey = "item_id"
	workflowKey contextKey = "workflow"
	runIDKey    contextKey = "run_id"
)

// WithItemID annotates context with the event item identifier.
func WithItemID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the event item identifier if present.
func ItemIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(itemIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithWorkflow annotates context with the reconciliation workflow name.
func WithWorkflow(ctx context.Context, workflow string) context.Context {
	if workflow == "" {
		return ctx
	}
	return context.WithValue(ctx, workflowKey, workflow)
}

// WorkflowFromContext returns the workflow name if present.
func WorkflowFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(workflowKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
