package scan

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

type mockDedup struct {
	verdict domain.ScanVerdict
	err     error
}

func (m *mockDedup) FindDuplicate(_ context.Context, _, _, _ string) (domain.ScanVerdict, error) {
	return m.verdict, m.err
}

type mockFingerprints struct {
	exact      []string
	perceptual []string
}

func (m *mockFingerprints) CommitExact(h string) error {
	m.exact = append(m.exact, h)
	return nil
}

func (m *mockFingerprints) CommitPerceptual(h string) error {
	m.perceptual = append(m.perceptual, h)
	return nil
}

type mockIndex struct {
	added [][]float32
}

func (m *mockIndex) Add(v []float32) error {
	m.added = append(m.added, v)
	return nil
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	return m.vec, m.err
}

type mockExtractor struct {
	text   string
	tables [][][]string
}

func (m *mockExtractor) Text(_ string, _ []byte) string { return m.text }

func (m *mockExtractor) Tables(_ string, _ []byte) [][][]string {
	if m.tables == nil {
		return [][][]string{}
	}
	return m.tables
}

type mockResults struct {
	saved []domain.ScanResult
}

func (m *mockResults) Save(r domain.ScanResult) { m.saved = append(m.saved, r) }

func quietDetectors() Detectors {
	return Detectors{
		PerceptualHash: func(string, []byte) (string, error) { return "", nil },
		Tamper:         func(string, []byte) *domain.Signal { return nil },
		PDFMetadata:    func(string, []byte, string) *domain.Signal { return nil },
		PII:            func(string) *domain.PIISignal { return nil },
	}
}

type fixture struct {
	svc          *Service
	extractor    *mockExtractor
	fingerprints *mockFingerprints
	index        *mockIndex
	embedder     *mockEmbedder
	results      *mockResults
}

func newFixture(verdict domain.ScanVerdict, text string, detectors Detectors) *fixture {
	f := &fixture{
		extractor:    &mockExtractor{text: text},
		fingerprints: &mockFingerprints{},
		index:        &mockIndex{},
		embedder:     &mockEmbedder{vec: []float32{1, 0, 0}},
		results:      &mockResults{},
	}
	f.svc = NewService(
		f.extractor,
		&mockDedup{verdict: verdict},
		f.fingerprints,
		f.index,
		f.embedder,
		f.results,
		detectors,
		20,
		zap.NewNop(),
	)
	return f
}

const longText = "This invoice covers consulting services for August 2024."

func TestScanNonDuplicateCommitsFingerprints(t *testing.T) {
	detectors := quietDetectors()
	detectors.PerceptualHash = func(string, []byte) (string, error) { return "p:aa55", nil }
	f := newFixture(domain.ScanVerdict{MatchedLayer: domain.LayerNone}, longText, detectors)

	taskID, err := f.svc.Scan(context.Background(), "invoice.png", []byte("raw bytes"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if taskID == "" {
		t.Fatal("Scan() returned empty task id")
	}

	if len(f.fingerprints.exact) != 1 || len(f.fingerprints.exact[0]) != 64 {
		t.Errorf("exact commits = %v, want one hex sha256", f.fingerprints.exact)
	}
	if len(f.fingerprints.perceptual) != 1 || f.fingerprints.perceptual[0] != "p:aa55" {
		t.Errorf("perceptual commits = %v, want [p:aa55]", f.fingerprints.perceptual)
	}
	if len(f.index.added) != 1 {
		t.Errorf("index adds = %d, want 1", len(f.index.added))
	}
}

func TestScanDuplicateCommitsNothing(t *testing.T) {
	verdict := domain.ScanVerdict{IsDuplicate: true, Confidence: 1.0, MatchedLayer: domain.LayerExact}
	f := newFixture(verdict, longText, quietDetectors())

	taskID, err := f.svc.Scan(context.Background(), "invoice.pdf", []byte("raw bytes"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(f.fingerprints.exact)+len(f.fingerprints.perceptual) != 0 {
		t.Error("duplicate scan must not commit fingerprints")
	}
	if len(f.index.added) != 0 {
		t.Error("duplicate scan must not grow the index")
	}

	result, err := getSaved(f.results, taskID)
	if err != nil {
		t.Fatal(err)
	}
	if result.FraudScore != 100 || result.Severity != domain.SeverityCritical {
		t.Errorf("result score/severity = %d/%v, want 100/CRITICAL", result.FraudScore, result.Severity)
	}
	if !result.IsDuplicate {
		t.Error("result.IsDuplicate = false, want true")
	}
	if result.DuplicateSourceID != nil {
		t.Errorf("DuplicateSourceID = %v, want nil", result.DuplicateSourceID)
	}
}

func TestScanShortTextSkipsIndexing(t *testing.T) {
	f := newFixture(domain.ScanVerdict{MatchedLayer: domain.LayerNone}, "tiny", quietDetectors())

	if _, err := f.svc.Scan(context.Background(), "note.pdf", []byte("raw")); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(f.fingerprints.exact) != 1 {
		t.Error("exact fingerprint must still be committed for short text")
	}
	if f.embedder.calls != 0 || len(f.index.added) != 0 {
		t.Error("short text must not be embedded or indexed")
	}
}

func TestScanMultibyteShortTextSkipsIndexing(t *testing.T) {
	// Ten characters across 28 bytes; the threshold counts characters.
	f := newFixture(domain.ScanVerdict{MatchedLayer: domain.LayerNone}, "वेतन पर्ची", quietDetectors())

	if _, err := f.svc.Scan(context.Background(), "note.pdf", []byte("raw")); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if f.embedder.calls != 0 || len(f.index.added) != 0 {
		t.Error("text under the character threshold must not be embedded or indexed")
	}
}

func TestScanCarriesExtractedTables(t *testing.T) {
	f := newFixture(domain.ScanVerdict{MatchedLayer: domain.LayerNone}, longText, quietDetectors())
	f.extractor.tables = [][][]string{{{"Item", "Amount"}, {"Consulting", "1200"}}}

	taskID, err := f.svc.Scan(context.Background(), "invoice.pdf", []byte("raw"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	result, err := getSaved(f.results, taskID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(result.ExtractedTables, f.extractor.tables) {
		t.Errorf("ExtractedTables = %v, want %v", result.ExtractedTables, f.extractor.tables)
	}
}

func TestScanEmbedderUnavailableStillSucceeds(t *testing.T) {
	f := newFixture(domain.ScanVerdict{MatchedLayer: domain.LayerNone}, longText, quietDetectors())
	f.embedder.err = domain.ErrEmbeddingUnavailable

	taskID, err := f.svc.Scan(context.Background(), "invoice.pdf", []byte("raw"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(f.index.added) != 0 {
		t.Error("index must not grow when embedding is unavailable")
	}
	if _, err := getSaved(f.results, taskID); err != nil {
		t.Error(err)
	}
}

func TestScanResultShape(t *testing.T) {
	detectors := quietDetectors()
	detectors.PII = func(string) *domain.PIISignal {
		return &domain.PIISignal{Types: []string{"PAN_DETECTED"}, Confidence: 0.75}
	}
	f := newFixture(domain.ScanVerdict{MatchedLayer: domain.LayerNone}, longText, detectors)

	taskID, err := f.svc.Scan(context.Background(), "salary.pdf", []byte("raw"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	result, err := getSaved(f.results, taskID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Filename != "salary.pdf" {
		t.Errorf("Filename = %q", result.Filename)
	}
	if result.FileURL != "/api/v1/files/"+taskID {
		t.Errorf("FileURL = %q", result.FileURL)
	}
	if result.FraudScore != 20 || result.Severity != domain.SeveritySafe {
		t.Errorf("score/severity = %d/%v, want 20/SAFE", result.FraudScore, result.Severity)
	}
	if result.Status != "completed" {
		t.Errorf("Status = %q, want completed", result.Status)
	}
	if result.TextContent != longText {
		t.Errorf("TextContent = %q", result.TextContent)
	}
	if len(result.Entities) != 3 {
		t.Errorf("Entities = %v, want empty ORG/PERSON/GPE shape", result.Entities)
	}
	if result.ExtractedTables == nil || len(result.ExtractedTables) != 0 {
		t.Errorf("ExtractedTables = %v, want empty", result.ExtractedTables)
	}
	if result.ScannedAt.IsZero() {
		t.Error("ScannedAt is zero")
	}
}

func getSaved(m *mockResults, taskID string) (domain.ScanResult, error) {
	for _, r := range m.saved {
		if r.FileID == taskID {
			return r, nil
		}
	}
	return domain.ScanResult{}, errResultMissing(taskID)
}

type errResultMissing string

func (e errResultMissing) Error() string { return "no saved result for task " + string(e) }
