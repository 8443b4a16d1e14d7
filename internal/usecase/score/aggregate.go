// Package score turns raw detector signals into the final fraud assessment.
package score

import (
	"math"
	"strings"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

// Severity thresholds on the 0-100 fraud score.
const (
	criticalThreshold = 70
	warningThreshold  = 30
)

// Signals collects the per-detector findings for one document. Nil pointers
// mean the detector found nothing.
type Signals struct {
	Tamper    *domain.Signal
	Metadata  *domain.Signal
	Duplicate domain.ScanVerdict
	PII       *domain.PIISignal
}

// Aggregate folds the signals into a score, severity and anomaly list.
//
// Tampering and metadata fraud floor the score at 90 and 85 respectively. A
// duplicate verdict pins it to 100 regardless of anything else. Detected PII
// adds 20 points, but only when the document still looks clean; PII on an
// already suspicious document adds nothing. The overall confidence is the
// mean of the anomaly confidences, or zero when there are none.
func Aggregate(signals Signals) domain.FraudAssessment {
	score := 0
	anomalies := []domain.Anomaly{}

	if signals.Tamper != nil {
		score = max(score, 90)
		anomalies = append(anomalies, domain.Anomaly{
			Type:        "Forensic Tampering",
			Description: signals.Tamper.Message,
			Confidence:  signals.Tamper.Confidence,
		})
	}

	if signals.Metadata != nil {
		score = max(score, 85)
		anomalies = append(anomalies, domain.Anomaly{
			Type:        "Metadata Fraud",
			Description: signals.Metadata.Message,
			Confidence:  signals.Metadata.Confidence,
		})
	}

	if signals.Duplicate.IsDuplicate {
		score = 100
		anomalies = append(anomalies, domain.Anomaly{
			Type:        "Duplicate Discovery",
			Description: "Visual or text match found.",
			Confidence:  signals.Duplicate.Confidence,
		})
	}

	if signals.PII != nil {
		if score < warningThreshold {
			score += 20
		}
		anomalies = append(anomalies, domain.Anomaly{
			Type:        "PII Detected",
			Description: "Contains: " + strings.Join(signals.PII.Types, ", "),
			Confidence:  signals.PII.Confidence,
		})
	}

	if score > 100 {
		score = 100
	}

	return domain.FraudAssessment{
		Score:      score,
		Severity:   severityFor(score),
		Anomalies:  anomalies,
		Confidence: meanConfidence(anomalies),
	}
}

func severityFor(score int) domain.Severity {
	switch {
	case score >= criticalThreshold:
		return domain.SeverityCritical
	case score >= warningThreshold:
		return domain.SeverityWarning
	default:
		return domain.SeveritySafe
	}
}

func meanConfidence(anomalies []domain.Anomaly) float64 {
	if len(anomalies) == 0 {
		return 0
	}
	var sum float64
	for _, a := range anomalies {
		sum += a.Confidence
	}
	return math.Round(sum/float64(len(anomalies))*10000) / 10000
}
