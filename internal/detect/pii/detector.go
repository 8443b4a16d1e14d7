// Package pii scans extracted text for Indian government identifiers.
package pii

import (
	"regexp"
	"strings"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

var (
	panPattern     = regexp.MustCompile(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`)
	aadhaarPattern = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
)

const (
	TypePAN     = "PAN_DETECTED"
	TypeAadhaar = "AADHAAR_DETECTED"
)

// Detect reports which identifier classes appear in text. Returns nil when
// nothing matches. Confidence reflects how many distinct classes were found:
// a lone 12-digit number could be an account number, but a document carrying
// both a PAN and an Aadhaar is almost certainly an identity document.
func Detect(text string) *domain.PIISignal {
	if text == "" {
		return nil
	}

	var types []string
	if panPattern.MatchString(strings.ToUpper(text)) {
		types = append(types, TypePAN)
	}
	if aadhaarPattern.MatchString(text) {
		types = append(types, TypeAadhaar)
	}
	if len(types) == 0 {
		return nil
	}

	confidence := 0.75
	if len(types) > 1 {
		confidence = 0.95
	}
	return &domain.PIISignal{Types: types, Confidence: confidence}
}
