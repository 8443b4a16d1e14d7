package domain

import "time"

// MatchLayer identifies which duplicate-detection layer produced a verdict.
type MatchLayer string

const (
	LayerNone       MatchLayer = "NONE"
	LayerExact      MatchLayer = "EXACT"
	LayerPerceptual MatchLayer = "PERCEPTUAL"
	LayerSemantic   MatchLayer = "SEMANTIC"
)

// ScanVerdict is the outcome of a duplicate check. It is computed per request
// and never persisted.
type ScanVerdict struct {
	IsDuplicate  bool       `json:"is_duplicate"`
	Confidence   float64    `json:"confidence"`
	MatchedLayer MatchLayer `json:"matched_layer"`
}

// Severity is a coarse bucketing of the numeric fraud score.
type Severity string

const (
	SeveritySafe     Severity = "SAFE"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Anomaly is a single fraud indicator attached to a scan result.
type Anomaly struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// FraudAssessment is the aggregated fraud decision for one document.
type FraudAssessment struct {
	Score      int
	Severity   Severity
	Anomalies  []Anomaly
	Confidence float64
}

// Signal carries an optional detector finding (tampering, metadata fraud).
// A nil *Signal means the detector found nothing.
type Signal struct {
	Message    string
	Confidence float64
}

// PIISignal carries the PII detector finding. Types is non-empty when present.
type PIISignal struct {
	Types      []string
	Confidence float64
}

// ScanResult is the full per-document analysis handed back to the caller and
// kept in the result store until the next reset.
type ScanResult struct {
	FileID            string              `json:"file_id"`
	Filename          string              `json:"filename"`
	FileURL           string              `json:"file_url"`
	FraudScore        int                 `json:"fraud_score"`
	Severity          Severity            `json:"severity"`
	IsDuplicate       bool                `json:"is_duplicate"`
	DuplicateSourceID *string             `json:"duplicate_source_id"`
	Anomalies         []Anomaly           `json:"anomalies"`
	TextContent       string              `json:"text_content"`
	Entities          map[string][]string `json:"entities"`
	ExtractedTables   [][][]string        `json:"extracted_tables"`
	ProcessingTime    int                 `json:"processing_time"`
	Confidence        float64             `json:"confidence"`
	Status            string              `json:"status"`
	ScannedAt         time.Time           `json:"scanned_at"`
}

// EmptyEntities returns the entity map shape with no extracted entities.
// Advanced entity extraction requires an NER model that is not bundled, so the
// engine reports the empty shape, same as the original pipeline without its
// language model.
func EmptyEntities() map[string][]string {
	return map[string][]string{"ORG": {}, "PERSON": {}, "GPE": {}}
}
