package forensics

import (
	"bytes"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
)

// Editing tools whose presence in the EXIF Software tag marks the image as
// post-processed. Matched case-insensitively as substrings.
var editingSoftware = []string{
	"photoshop",
	"gimp",
	"lightroom",
	"snapseed",
	"picsart",
	"canva",
	"pixlr",
	"affinity",
}

// DetectTampering inspects image EXIF metadata for post-capture editing.
// Documents without EXIF (PDFs, DOCX, stripped images) yield no signal; a
// camera original carries no editing trace.
func DetectTampering(filename string, data []byte) *domain.Signal {
	if !isImage(filename) {
		return nil
	}

	meta, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	if tag, err := meta.Get(exif.Software); err == nil {
		if software, err := tag.StringVal(); err == nil {
			lower := strings.ToLower(software)
			for _, tool := range editingSoftware {
				if strings.Contains(lower, tool) {
					return &domain.Signal{
						Message:    "EDITING_SOFTWARE_DETECTED: " + strings.TrimSpace(software),
						Confidence: 0.88,
					}
				}
			}
		}
	}

	// A modification timestamp later than the capture timestamp means the
	// file was re-saved after the shutter fired.
	modified := tagString(meta, exif.DateTime)
	original := tagString(meta, exif.DateTimeOriginal)
	if modified != "" && original != "" && modified != original {
		return &domain.Signal{
			Message:    "TIMESTAMP_MISMATCH: modified " + modified + ", captured " + original,
			Confidence: 0.72,
		}
	}

	return nil
}

func tagString(meta *exif.Exif, field exif.FieldName) string {
	tag, err := meta.Get(field)
	if err != nil {
		return ""
	}
	val, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(val)
}
