package dedup

import "context"

// Fingerprints answers layer-one and layer-two membership questions.
type Fingerprints interface {
	ExistsExact(hash string) bool
	ExistsPerceptual(hash string) bool
}

// Index is the semantic nearest-neighbor store.
type Index interface {
	Size() int
	SearchNearest(vector []float32) (score float64, found bool, err error)
}

// Embedder turns extracted text into a unit-norm vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
