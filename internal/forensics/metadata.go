package forensics

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

var (
	textYearPattern = regexp.MustCompile(`\b(20\d{2})\b`)
	anyYearPattern  = regexp.MustCompile(`\d{4}`)
)

// InspectPDFMetadata compares the creation date hidden in the PDF trailer
// against the years printed in the document body. A file whose metadata says
// it was created after every date it displays was regenerated from an older
// document. It also flags design tools not used for genuine financial
// paperwork.
//
// The trailer walk shares the panicky parser with text extraction and runs
// under the same recover.
func InspectPDFMetadata(filename string, data []byte, text string) (signal *domain.Signal) {
	if strings.ToLower(strings.TrimSpace(filenameExt(filename))) != ".pdf" {
		return nil
	}
	defer func() {
		if recover() != nil {
			signal = nil
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil
	}
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return nil
	}

	metadataYear := firstYear(info.Key("CreationDate").Text())
	bodyYear := maxYear(text)
	if metadataYear > 0 && bodyYear > 0 && metadataYear > bodyYear {
		confidence := 0.78
		if metadataYear-bodyYear >= 4 {
			confidence = 0.92
		}
		return &domain.Signal{
			Message:    "METADATA_MISMATCH: Hidden year is later than document year",
			Confidence: confidence,
		}
	}

	if creator := info.Key("Creator").Text(); strings.Contains(strings.ToLower(creator), "canva") {
		return &domain.Signal{
			Message:    "SUSPICIOUS_CREATOR_TOOL: Canva",
			Confidence: 0.85,
		}
	}

	return nil
}

func filenameExt(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return filename[i:]
	}
	return ""
}

func firstYear(s string) int {
	m := anyYearPattern.FindString(s)
	if m == "" {
		return 0
	}
	y, _ := strconv.Atoi(m)
	return y
}

func maxYear(text string) int {
	maxY := 0
	for _, m := range textYearPattern.FindAllString(text, -1) {
		if y, _ := strconv.Atoi(m); y > maxY {
			maxY = y
		}
	}
	return maxY
}
