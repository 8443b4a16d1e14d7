// Package dedup runs the three-layer duplicate hunt: exact byte hash,
// perceptual image hash, then semantic similarity over extracted text.
// Layers are ordered cheapest first and the hunt stops at the first match.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/metrics"
)

// Service coordinates the layered duplicate check. It never writes to the
// underlying stores; committing fingerprints of new documents is the scan
// orchestrator's job.
type Service struct {
	fingerprints Fingerprints
	index        Index
	embedder     Embedder
	threshold    float64
	minTextLen   int
	logger       *zap.Logger
}

func NewService(
	fingerprints Fingerprints,
	index Index,
	embedder Embedder,
	threshold float64,
	minTextLen int,
	logger *zap.Logger,
) *Service {
	return &Service{
		fingerprints: fingerprints,
		index:        index,
		embedder:     embedder,
		threshold:    threshold,
		minTextLen:   minTextLen,
		logger:       logger,
	}
}

// FindDuplicate checks the document against every prior commit. exactHash is
// the hex SHA-256 of the raw bytes; perceptualHash is empty for non-image
// files; text is the cleaned extracted text, which may be empty.
//
// The semantic layer degrades silently: if the embedding model is unavailable
// or the provider call fails, the hunt reports no duplicate rather than
// failing the scan. A dimensionality mismatch is a deployment error and is
// propagated.
func (s *Service) FindDuplicate(ctx context.Context, exactHash, perceptualHash, text string) (domain.ScanVerdict, error) {
	if s.fingerprints.ExistsExact(exactHash) {
		metrics.DuplicatesTotal.WithLabelValues(string(domain.LayerExact)).Inc()
		return domain.ScanVerdict{IsDuplicate: true, Confidence: 1.0, MatchedLayer: domain.LayerExact}, nil
	}

	if perceptualHash != "" && s.fingerprints.ExistsPerceptual(perceptualHash) {
		metrics.DuplicatesTotal.WithLabelValues(string(domain.LayerPerceptual)).Inc()
		return domain.ScanVerdict{IsDuplicate: true, Confidence: 1.0, MatchedLayer: domain.LayerPerceptual}, nil
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < s.minTextLen {
		return domain.ScanVerdict{MatchedLayer: domain.LayerNone}, nil
	}
	if s.index.Size() == 0 {
		return domain.ScanVerdict{MatchedLayer: domain.LayerNone}, nil
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) || errors.Is(err, domain.ErrEmbeddingProviderError) {
			s.logger.Warn("Semantic layer skipped", zap.Error(err))
			return domain.ScanVerdict{MatchedLayer: domain.LayerNone}, nil
		}
		return domain.ScanVerdict{}, fmt.Errorf("embed document text: %w", err)
	}

	score, found, err := s.index.SearchNearest(vector)
	if err != nil {
		return domain.ScanVerdict{}, fmt.Errorf("search vector index: %w", err)
	}
	if found && score >= s.threshold {
		metrics.DuplicatesTotal.WithLabelValues(string(domain.LayerSemantic)).Inc()
		return domain.ScanVerdict{IsDuplicate: true, Confidence: score, MatchedLayer: domain.LayerSemantic}, nil
	}

	return domain.ScanVerdict{MatchedLayer: domain.LayerNone}, nil
}
