package admin

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

type mockResults struct{ cleared bool }

func (m *mockResults) Clear() { m.cleared = true }

type mockFingerprints struct {
	called bool
	err    error
}

func (m *mockFingerprints) Reset() error {
	m.called = true
	return m.err
}

type mockIndex struct {
	called bool
	err    error
}

func (m *mockIndex) RebuildEmpty() error {
	m.called = true
	return m.err
}

func TestResetWipesEverything(t *testing.T) {
	results := &mockResults{}
	fp := &mockFingerprints{}
	idx := &mockIndex{}

	NewService(results, fp, idx, zap.NewNop()).Reset()

	if !results.cleared || !fp.called || !idx.called {
		t.Errorf("reset skipped a store: results=%v fingerprints=%v index=%v",
			results.cleared, fp.called, idx.called)
	}
}

func TestResetContinuesPastFailures(t *testing.T) {
	results := &mockResults{}
	fp := &mockFingerprints{err: errors.New("disk full")}
	idx := &mockIndex{}

	NewService(results, fp, idx, zap.NewNop()).Reset()

	if !idx.called {
		t.Error("index reset skipped after fingerprint failure")
	}
}
