// Package vectorindex is a flat inner-product index over L2-normalized
// embedding vectors, persisted to a single file. Vectors carry no document
// identifier: a match reports that a similar document exists, not which one.
package vectorindex

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

// File layout: magic, dim uint32 LE, count uint32 LE, then count*dim float32 LE.
var fileMagic = [4]byte{'F', 'S', 'I', 'X'}

const headerSize = 4 + 4 + 4

// Index holds the vectors in memory and mirrors every mutation to disk so
// committed entries survive a crash mid-ingestion.
type Index struct {
	mu      sync.RWMutex
	path    string
	dim     int
	vectors [][]float32
	logger  *zap.Logger
}

// Open loads the index file or, when it is missing or unreadable, creates and
// persists a fresh empty index of the given dimensionality.
func Open(path string, dim int, logger *zap.Logger) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid index dimension %d", dim)
	}

	idx := &Index{path: path, dim: dim, logger: logger}

	vectors, err := readIndexFile(path, dim)
	if err != nil {
		logger.Warn("Index file missing or unreadable, recreating empty index",
			zap.String("path", path), zap.Error(err))
		if err := idx.persist(nil); err != nil {
			return nil, fmt.Errorf("create empty index: %w", err)
		}
		return idx, nil
	}

	idx.vectors = vectors
	return idx, nil
}

// Size returns the number of indexed vectors.
func (i *Index) Size() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors)
}

// SearchNearest returns the best match's inner-product similarity. The query
// must already be L2-normalized by the caller, making the score equal to
// cosine similarity. found is false when the index is empty.
func (i *Index) SearchNearest(vec []float32) (float64, bool, error) {
	if len(vec) != i.dim {
		return 0, false, fmt.Errorf("query has %d dims, index has %d: %w",
			len(vec), i.dim, domain.ErrVectorDimMismatch)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(i.vectors) == 0 {
		return 0, false, nil
	}

	best := math.Inf(-1)
	for _, v := range i.vectors {
		score := dot(v, vec)
		if score > best {
			best = score
		}
	}
	return best, true, nil
}

// Add appends a vector and persists the index immediately.
func (i *Index) Add(vec []float32) error {
	if len(vec) != i.dim {
		return fmt.Errorf("vector has %d dims, index has %d: %w",
			len(vec), i.dim, domain.ErrVectorDimMismatch)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	stored := make([]float32, i.dim)
	copy(stored, vec)
	next := append(i.vectors, stored)

	if err := i.persist(next); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	i.vectors = next
	return nil
}

// RebuildEmpty replaces the index with a freshly persisted empty one of the
// same dimensionality.
func (i *Index) RebuildEmpty() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.persist(nil); err != nil {
		return fmt.Errorf("persist empty index: %w", err)
	}
	i.vectors = nil
	return nil
}

// persist writes the given vector set via temp file + rename. Caller must
// hold i.mu (write).
func (i *Index) persist(vectors [][]float32) error {
	buf := make([]byte, headerSize+len(vectors)*i.dim*4)
	copy(buf[:4], fileMagic[:])
	binary.LittleEndian.PutUint32(buf[4:8], uint32(i.dim))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(vectors)))

	off := headerSize
	for _, v := range vectors {
		for _, f := range v {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}

	if err := os.MkdirAll(filepath.Dir(i.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp := i.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	if err := os.Rename(tmp, i.path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

func readIndexFile(path string, dim int) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index file: %w", err)
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("index file truncated: %d bytes", len(data))
	}
	if [4]byte(data[:4]) != fileMagic {
		return nil, fmt.Errorf("bad index file magic")
	}

	fileDim := int(binary.LittleEndian.Uint32(data[4:8]))
	count := int(binary.LittleEndian.Uint32(data[8:12]))
	if fileDim != dim {
		return nil, fmt.Errorf("index file has dim %d, expected %d", fileDim, dim)
	}
	if len(data) != headerSize+count*dim*4 {
		return nil, fmt.Errorf("index file size mismatch: %d bytes for %d vectors", len(data), count)
	}

	vectors := make([][]float32, count)
	off := headerSize
	for n := range vectors {
		v := make([]float32, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[n] = v
	}
	return vectors, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
