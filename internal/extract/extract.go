// Package extract converts uploaded files into plain text. Each supported
// format has its own reader; everything else is rejected before any reader
// runs.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedType marks a file extension no reader handles.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrExtractionFailed marks a reader that ran and could not produce text.
	ErrExtractionFailed = errors.New("extraction failed")
)

var supported = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true,
	".txt": true, ".md": true, ".csv": true,
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".gif": true,
}

// Supported reports whether the file's extension has a reader. It is the
// cheap pre-check for upload boundaries; Extract repeats it anyway.
func Supported(filename string) bool {
	return supported[strings.ToLower(filepath.Ext(filename))]
}

// Extract dispatches on the file extension and returns the trimmed text
// content. A result that trims to nothing is a failure: there is nothing to
// ingest from such a file.
func Extract(data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = readPDF(data)
	case ".docx", ".doc":
		text, err = readWord(data)
	case ".png", ".jpg", ".jpeg", ".bmp", ".gif":
		text, err = readImage(data)
	case ".txt", ".md", ".csv":
		text, err = readTextFile(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrExtractionFailed, filename, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text found in %s", ErrExtractionFailed, filename)
	}
	return text, nil
}

func readTextFile(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(data), nil
}
