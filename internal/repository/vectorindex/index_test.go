package vectorindex

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

const testDim = 4

func newTestIndex(t *testing.T) (*Index, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.index")
	idx, err := Open(path, testDim, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return idx, path
}

func unit(values ...float32) []float32 {
	v := make([]float32, testDim)
	copy(v, values)
	var norm float64
	for _, f := range v {
		norm += float64(f) * float64(f)
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

func TestOpen_CreatesEmptyIndex(t *testing.T) {
	idx, path := newTestIndex(t)

	if idx.Size() != 0 {
		t.Fatalf("expected empty index, got size %d", idx.Size())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected index file persisted on create: %v", err)
	}
}

func TestSearchNearest_EmptyIndex(t *testing.T) {
	idx, _ := newTestIndex(t)

	score, found, err := idx.SearchNearest(unit(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected found=false on empty index")
	}
	if score != 0 {
		t.Fatalf("expected score 0, got %v", score)
	}
}

func TestAddAndSearch(t *testing.T) {
	idx, _ := newTestIndex(t)

	if err := idx.Add(unit(1, 0, 0, 0)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Add(unit(0, 1, 0, 0)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if idx.Size() != 2 {
		t.Fatalf("expected size 2, got %d", idx.Size())
	}

	// Query along the first axis must match the first vector best.
	score, found, err := idx.SearchNearest(unit(1, 0, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected found=true")
	}
	if score < 0.9999 {
		t.Fatalf("expected near-1.0 similarity, got %v", score)
	}

	// Orthogonal query scores ~0 against both.
	score, _, err = idx.SearchNearest(unit(0, 0, 1, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score > 0.0001 {
		t.Fatalf("expected near-zero similarity, got %v", score)
	}
}

func TestSearchNearest_ReturnsBestOfMany(t *testing.T) {
	idx, _ := newTestIndex(t)

	vecs := [][]float32{
		unit(1, 0, 0, 0),
		unit(1, 1, 0, 0),
		unit(0, 0, 1, 1),
	}
	for _, v := range vecs {
		if err := idx.Add(v); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	query := unit(1, 1, 0, 0)
	score, found, err := idx.SearchNearest(query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || score < 0.9999 {
		t.Fatalf("expected exact self-match near 1.0, got found=%v score=%v", found, score)
	}
}

func TestDimensionMismatch(t *testing.T) {
	idx, _ := newTestIndex(t)

	if err := idx.Add([]float32{1, 0}); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch on Add, got %v", err)
	}
	if _, _, err := idx.SearchNearest([]float32{1, 0}); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch on SearchNearest, got %v", err)
	}
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.index")

	idx, err := Open(path, testDim, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	stored := unit(3, 4, 0, 0)
	if err := idx.Add(stored); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reopened, err := Open(path, testDim, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Size() != 1 {
		t.Fatalf("expected size 1 after reopen, got %d", reopened.Size())
	}

	score, found, err := reopened.SearchNearest(stored)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found || score < 0.9999 {
		t.Fatalf("expected self-match after reopen, got found=%v score=%v", found, score)
	}
}

func TestCorruptFile_RecreatedEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.index")

	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	idx, err := Open(path, testDim, zap.NewNop())
	if err != nil {
		t.Fatalf("Open over corrupt file: %v", err)
	}
	if idx.Size() != 0 {
		t.Fatalf("expected fresh empty index, got size %d", idx.Size())
	}

	// The fresh index must be readable on the next open too.
	if _, err := Open(path, testDim, zap.NewNop()); err != nil {
		t.Fatalf("reopen after recreate: %v", err)
	}
}

func TestWrongDimensionFile_RecreatedEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.index")

	idx, err := Open(path, testDim, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := idx.Add(unit(1, 0, 0, 0)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Opening with a different dimension discards the old file.
	other, err := Open(path, testDim+1, zap.NewNop())
	if err != nil {
		t.Fatalf("Open with new dim: %v", err)
	}
	if other.Size() != 0 {
		t.Fatalf("expected empty index after dim change, got %d", other.Size())
	}
}

func TestRebuildEmpty(t *testing.T) {
	idx, path := newTestIndex(t)

	for i := 0; i < 3; i++ {
		if err := idx.Add(unit(1, 2, 3, 4)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if err := idx.RebuildEmpty(); err != nil {
		t.Fatalf("RebuildEmpty: %v", err)
	}
	if idx.Size() != 0 {
		t.Fatalf("expected size 0 after rebuild, got %d", idx.Size())
	}

	reopened, err := Open(path, testDim, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Size() != 0 {
		t.Fatalf("rebuild was not persisted, size %d", reopened.Size())
	}
}
