package compressor

import "context"

// Compressor is the optional prompt compression capability. It shrinks a
// prompt's token footprint without generating answers. Failures are caught
// by the reasoner, which falls back to the uncompressed prompt.
type Compressor interface {
	Compress(ctx context.Context, prompt string) (string, error)
}
