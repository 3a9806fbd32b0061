package visualsearch

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is an image staged for upload.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Size returns the payload length in bytes.
func (f File) Size() int {
	return len(f.Data)
}

// IsImage reports whether the file's MIME type is image/*.
func (f File) IsImage() bool {
	return isImageMIME(f.MIME)
}

// FileFromPath reads path and detects its MIME type from the content.
func FileFromPath(path string) (File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return File{}, ErrNoFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read image: %w", err)
	}
	return File{Name: filepath.Base(path), MIME: detectMIME(data), Data: data}, nil
}

// detectMIME tries the stdlib sniffer first and falls back to mimetype for
// formats it reports as octet-stream (HEIC, AVIF and friends).
func detectMIME(head []byte) string {
	if len(head) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(head)
	if mt != "application/octet-stream" {
		return mt
	}
	return mimetype.Detect(head).String()
}

func isImageMIME(mime string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mime)), "image/")
}
