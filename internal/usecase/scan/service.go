// Package scan orchestrates the full analysis of one uploaded document:
// fingerprinting, duplicate hunt, forensic signals, score aggregation and
// result persistence.
package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/detect/pii"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/forensics"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/metrics"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/usecase/score"
)

// Service runs the scan pipeline.
type Service struct {
	extractor    Extractor
	dedup        DuplicateFinder
	fingerprints Fingerprints
	index        Index
	embedder     Embedder
	results      Results
	detectors    Detectors
	minTextLen   int
	logger       *zap.Logger
}

func NewService(
	extractor Extractor,
	dedup DuplicateFinder,
	fingerprints Fingerprints,
	index Index,
	embedder Embedder,
	results Results,
	detectors Detectors,
	minTextLen int,
	logger *zap.Logger,
) *Service {
	return &Service{
		extractor:    extractor,
		dedup:        dedup,
		fingerprints: fingerprints,
		index:        index,
		embedder:     embedder,
		results:      results,
		detectors:    detectors,
		minTextLen:   minTextLen,
		logger:       logger,
	}
}

// DefaultDetectors wires the production forensic checks.
func DefaultDetectors() Detectors {
	return Detectors{
		PerceptualHash: forensics.PerceptualHash,
		Tamper:         forensics.DetectTampering,
		PDFMetadata:    forensics.InspectPDFMetadata,
		PII:            pii.Detect,
	}
}

// Scan analyzes the uploaded document and returns the task id under which the
// result was stored. The caller has already validated filename, size and
// extension; everything past that point degrades instead of failing, except a
// vector dimensionality mismatch, which indicates a broken deployment.
func (s *Service) Scan(ctx context.Context, filename string, content []byte) (string, error) {
	start := time.Now()
	taskID := uuid.NewString()

	sum := sha256.Sum256(content)
	exactHash := hex.EncodeToString(sum[:])

	text := s.extractor.Text(filename, content)
	tables := s.extractor.Tables(filename, content)

	perceptualHash, err := s.detectors.PerceptualHash(filename, content)
	if err != nil {
		s.logger.Warn("Perceptual hash failed",
			zap.String("task_id", taskID), zap.String("filename", filename), zap.Error(err))
		perceptualHash = ""
	}

	verdict, err := s.dedup.FindDuplicate(ctx, exactHash, perceptualHash, text)
	if err != nil {
		return "", fmt.Errorf("duplicate hunt: %w", err)
	}

	assessment := score.Aggregate(score.Signals{
		Tamper:    s.detectors.Tamper(filename, content),
		Metadata:  s.detectors.PDFMetadata(filename, content, text),
		Duplicate: verdict,
		PII:       s.detectors.PII(text),
	})

	if !verdict.IsDuplicate {
		s.commit(ctx, taskID, exactHash, perceptualHash, text)
	}

	processingTime := int(time.Since(start).Milliseconds())
	s.results.Save(domain.ScanResult{
		FileID:            taskID,
		Filename:          filename,
		FileURL:           "/api/v1/files/" + taskID,
		FraudScore:        assessment.Score,
		Severity:          assessment.Severity,
		IsDuplicate:       verdict.IsDuplicate,
		DuplicateSourceID: nil,
		Anomalies:         assessment.Anomalies,
		TextContent:       text,
		Entities:          domain.EmptyEntities(),
		ExtractedTables:   tables,
		ProcessingTime:    processingTime,
		Confidence:        assessment.Confidence,
		Status:            "completed",
		ScannedAt:         time.Now().UTC(),
	})

	metrics.ScansTotal.WithLabelValues(string(assessment.Severity)).Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	for _, anomaly := range assessment.Anomalies {
		metrics.AnomaliesTotal.WithLabelValues(anomaly.Type).Inc()
	}

	s.logger.Info("Scan completed",
		zap.String("task_id", taskID),
		zap.String("filename", filename),
		zap.Int("fraud_score", assessment.Score),
		zap.String("severity", string(assessment.Severity)),
		zap.Bool("is_duplicate", verdict.IsDuplicate),
		zap.String("matched_layer", string(verdict.MatchedLayer)),
		zap.Int("processing_time_ms", processingTime))

	return taskID, nil
}

// commit records the document's fingerprints so future uploads can match it.
// Failures are logged and swallowed: a fingerprint that fails to persist costs
// one missed duplicate later, not this scan.
func (s *Service) commit(ctx context.Context, taskID, exactHash, perceptualHash, text string) {
	if err := s.fingerprints.CommitExact(exactHash); err != nil {
		s.logger.Error("Exact fingerprint commit failed",
			zap.String("task_id", taskID), zap.Error(err))
	}
	if err := s.fingerprints.CommitPerceptual(perceptualHash); err != nil {
		s.logger.Error("Perceptual fingerprint commit failed",
			zap.String("task_id", taskID), zap.Error(err))
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < s.minTextLen {
		return
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) || errors.Is(err, domain.ErrEmbeddingProviderError) {
			s.logger.Warn("Vector indexing skipped",
				zap.String("task_id", taskID), zap.Error(err))
			return
		}
		s.logger.Error("Embedding for indexing failed",
			zap.String("task_id", taskID), zap.Error(err))
		return
	}
	if err := s.index.Add(vector); err != nil {
		s.logger.Error("Vector index add failed",
			zap.String("task_id", taskID), zap.Error(err))
	}
}
