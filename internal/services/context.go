package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	partIndexKey  contextKey = "part_index"
	batchIndexKey contextKey = "batch_index"
	componentKey  contextKey = "component"
)

// WithRunID annotates context with the run identifier.
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

// WithPartIndex annotates context with the 1-based index of the part being built.
func WithPartIndex(ctx context.Context, index int) context.Context {
	if index <= 0 {
		return ctx
	}
	return context.WithValue(ctx, partIndexKey, index)
}

// PartIndexFromContext returns the part index if present.
func PartIndexFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(partIndexKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}

// WithBatchIndex annotates context with the 1-based flush index within a part.
func WithBatchIndex(ctx context.Context, index int) context.Context {
	if index <= 0 {
		return ctx
	}
	return context.WithValue(ctx, batchIndexKey, index)
}

// BatchIndexFromContext returns the batch index if present.
func BatchIndexFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(batchIndexKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}

// WithComponent annotates context with the component doing the work.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(componentKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
