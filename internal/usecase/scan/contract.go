package scan

import (
	"context"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

// DuplicateFinder runs the layered duplicate hunt. Read-only.
type DuplicateFinder interface {
	FindDuplicate(ctx context.Context, exactHash, perceptualHash, text string) (domain.ScanVerdict, error)
}

// Fingerprints is the write side of the fingerprint store.
type Fingerprints interface {
	CommitExact(hash string) error
	CommitPerceptual(hash string) error
}

// Index is the write side of the vector index.
type Index interface {
	Add(vector []float32) error
}

// Embedder turns text into a unit-norm vector for indexing.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Extractor pulls cleaned text and any tables out of an uploaded document.
type Extractor interface {
	Text(filename string, data []byte) string
	Tables(filename string, data []byte) [][][]string
}

// Results receives completed scan results.
type Results interface {
	Save(result domain.ScanResult)
}

// Detectors bundles the per-file forensic checks. Function fields keep the
// package-level detectors swappable in tests without extra adapter types.
type Detectors struct {
	PerceptualHash func(filename string, data []byte) (string, error)
	Tamper         func(filename string, data []byte) *domain.Signal
	PDFMetadata    func(filename string, data []byte, text string) *domain.Signal
	PII            func(text string) *domain.PIISignal
}
