package embedder

import "context"

// Embedder is the optional embedding capability. Pipelines hold a nil
// Embedder when the capability is not configured; callers treat a failed
// Embed call the same as an absent capability.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
