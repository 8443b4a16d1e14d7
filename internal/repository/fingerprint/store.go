// Package fingerprint persists the exact (SHA-256) and perceptual hash sets
// used by the duplicate hunter. Each set is a JSON mapping hash -> true on
// disk; a missing or corrupt file is treated as an empty set so a damaged
// store degrades to "nothing is a duplicate" instead of failing scans.
package fingerprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Store is a file-backed pair of hash sets. Every read-modify-write cycle
// runs under the store mutex so concurrent commits cannot drop each other's
// updates; cross-process writers are still uncoordinated (single-instance
// deployment).
type Store struct {
	mu             sync.Mutex
	exactPath      string
	perceptualPath string
	logger         *zap.Logger
}

// New creates a fingerprint store over the two set files. The files are
// created lazily on first commit.
func New(exactPath, perceptualPath string, logger *zap.Logger) *Store {
	return &Store{
		exactPath:      exactPath,
		perceptualPath: perceptualPath,
		logger:         logger,
	}
}

// ExistsExact reports whether the exact digest has been committed before.
func (s *Store) ExistsExact(digest string) bool {
	if digest == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(s.exactPath)[digest]
}

// ExistsPerceptual reports whether the perceptual hash has been committed
// before. Matching is exact string equality, not hash distance.
func (s *Store) ExistsPerceptual(hash string) bool {
	if hash == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(s.perceptualPath)[hash]
}

// CommitExact adds the digest to the exact set and persists it.
func (s *Store) CommitExact(digest string) error {
	if digest == "" {
		return nil
	}
	return s.commit(s.exactPath, digest)
}

// CommitPerceptual adds the hash to the perceptual set and persists it.
func (s *Store) CommitPerceptual(hash string) error {
	if hash == "" {
		return nil
	}
	return s.commit(s.perceptualPath, hash)
}

// Reset replaces both sets with empty mappings. Each file is reset
// independently; the first failure is reported but does not stop the other.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errExact := s.save(s.exactPath, map[string]bool{})
	errPerceptual := s.save(s.perceptualPath, map[string]bool{})
	return errors.Join(errExact, errPerceptual)
}

func (s *Store) commit(path, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.load(path)
	set[key] = true
	if err := s.save(path, set); err != nil {
		return fmt.Errorf("commit fingerprint: %w", err)
	}
	return nil
}

// load reads a set file, substituting an empty set for missing or malformed
// content. Caller must hold s.mu.
func (s *Store) load(path string) map[string]bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read fingerprint file, treating as empty",
				zap.String("path", path), zap.Error(err))
		}
		return map[string]bool{}
	}

	var set map[string]bool
	if err := json.Unmarshal(data, &set); err != nil {
		s.logger.Warn("Corrupt fingerprint file, treating as empty",
			zap.String("path", path), zap.Error(err))
		return map[string]bool{}
	}
	if set == nil {
		set = map[string]bool{}
	}
	return set
}

// save fully replaces the persisted set via temp file + rename. Caller must
// hold s.mu.
func (s *Store) save(path string, set map[string]bool) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal fingerprint set: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write fingerprint file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace fingerprint file: %w", err)
	}
	return nil
}
