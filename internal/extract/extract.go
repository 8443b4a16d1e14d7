// Package extract pulls plain text out of uploaded documents. Images carry no
// text layer here; OCR is out of scope and image uploads extract to "".
package extract

import (
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	specialChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,:/-]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Extractor dispatches on file extension. Extraction failures are not scan
// failures: a document whose text cannot be read still goes through the hash
// and forensic layers, so errors surface as empty text plus a warning log.
type Extractor struct {
	maxPDFPages int
	logger      *zap.Logger
}

func NewExtractor(maxPDFPages int, logger *zap.Logger) *Extractor {
	return &Extractor{maxPDFPages: maxPDFPages, logger: logger}
}

// Text returns the cleaned text content of the document.
func (e *Extractor) Text(filename string, data []byte) string {
	var raw string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := pdfText(data, e.maxPDFPages)
		if err != nil {
			e.logger.Warn("PDF text extraction failed",
				zap.String("filename", filename), zap.Error(err))
			return ""
		}
		raw = text
	case ".docx", ".doc":
		text, err := docxText(data)
		if err != nil {
			e.logger.Warn("DOCX text extraction failed",
				zap.String("filename", filename), zap.Error(err))
			return ""
		}
		raw = text
	default:
		return ""
	}
	return CleanText(raw)
}

// Tables returns the tables found in a PDF document, one table per page at
// most, each as rows of cell strings. Non-PDF documents and extraction
// failures yield an empty slice.
func (e *Extractor) Tables(filename string, data []byte) [][][]string {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return [][][]string{}
	}
	tables, err := pdfTables(data, e.maxPDFPages)
	if err != nil {
		e.logger.Warn("PDF table extraction failed",
			zap.String("filename", filename), zap.Error(err))
		return [][][]string{}
	}
	return tables
}

// CleanText strips control and symbol noise that throws off both the PII
// regexes and the embedding model, then collapses runs of whitespace. Letters
// and digits of any script survive; financial documents are not Latin-only.
func CleanText(s string) string {
	s = specialChars.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
