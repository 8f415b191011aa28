package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	inputPathKey contextKey = "input_path"
)

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the batch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithInputPath annotates context with the file currently being processed.
func WithInputPath(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, inputPathKey, path)
}

// InputPathFromContext returns the in-flight input path if present.
func InputPathFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(inputPathKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
