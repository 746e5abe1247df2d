package protocol

import "context"

type runIDKey struct{}

// ContextWithRunID tags ctx with the run the delegated calls belong to.
// Adapters use it to keep per-run resources apart.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run ID set by ContextWithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey{}).(string)

	return runID
}
