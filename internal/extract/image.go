package extract

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// tesseractBin is the OCR binary invoked for image files. Overridable for
// tests.
var tesseractBin = "tesseract"

// readImage runs the image through the external tesseract OCR tool and
// returns the recognized text. Tesseract wants a file path, so the bytes go
// through a temp file.
func readImage(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "ocr-*.img")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for OCR: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp file for OCR: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file for OCR: %w", err)
	}

	cmd := exec.Command(tesseractBin, tmp.Name(), "stdout")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed (is it installed?): %v: %s", err, stderr.String())
	}
	return out.String(), nil
}
