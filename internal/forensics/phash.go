// Package forensics inspects uploaded files for visual fingerprints and signs
// of manipulation.
package forensics

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/corona10/goimagehash"
)

func isImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// PerceptualHash computes the pHash of an image upload. Non-image files have
// no visual fingerprint and return "" without error; an undecodable image
// returns an error.
func PerceptualHash(filename string, data []byte) (string, error) {
	if !isImage(filename) {
		return "", nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("perception hash: %w", err)
	}
	return hash.ToString(), nil
}
