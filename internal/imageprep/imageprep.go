// Package imageprep prepares photographed or scanned image invoices for OCR.
package imageprep

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// EnhanceForOCR applies a grayscale/contrast/sharpen pass that noticeably
// improves text recognition on phone photos of invoices. The enhanced copy is
// written next to the cache dir and the new path returned; the original file
// is never modified.
func EnhanceForOCR(imagePath, cacheDir string) (string, error) {
	src, err := imaging.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}

	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	img = imaging.AdjustBrightness(img, 10)
	img = imaging.AdjustGamma(img, 1.2)

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	base := filepath.Base(imagePath)
	out := filepath.Join(cacheDir, "enhanced-"+base[:len(base)-len(filepath.Ext(base))]+".jpg")
	if err := imaging.Save(img, out); err != nil {
		return "", fmt.Errorf("save enhanced image: %w", err)
	}
	return out, nil
}
