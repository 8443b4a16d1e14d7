// Package admin implements the manual system wipe.
package admin

import (
	"go.uber.org/zap"
)

// Results is the result store being cleared.
type Results interface {
	Clear()
}

// Fingerprints resets both persisted hash sets.
type Fingerprints interface {
	Reset() error
}

// Index rebuilds the vector index empty on disk.
type Index interface {
	RebuildEmpty() error
}

// Service wipes all accumulated scan state.
type Service struct {
	results      Results
	fingerprints Fingerprints
	index        Index
	logger       *zap.Logger
}

func NewService(results Results, fingerprints Fingerprints, index Index, logger *zap.Logger) *Service {
	return &Service{results: results, fingerprints: fingerprints, index: index, logger: logger}
}

// Reset clears results, fingerprints and the vector index. Each wipe is
// attempted regardless of earlier failures, and failures are logged rather
// than returned: the caller always gets a fresh-as-possible system.
func (s *Service) Reset() {
	s.results.Clear()

	if err := s.fingerprints.Reset(); err != nil {
		s.logger.Error("Fingerprint reset failed", zap.Error(err))
	}
	if err := s.index.RebuildEmpty(); err != nil {
		s.logger.Error("Vector index reset failed", zap.Error(err))
	}

	s.logger.Info("System data wiped")
}
