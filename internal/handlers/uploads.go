package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// defaultUploadLimit caps multipart parsing when a handler was not given an
// explicit budget.
const defaultUploadLimit int64 = 32 << 20

// uploadLimit normalizes a configured multipart memory budget.
func uploadLimit(n int64) int64 {
	if n <= 0 {
		return defaultUploadLimit
	}
	return n
}

// saveUpload copies the named multipart file into a temp file under dir and
// returns its path. A missing field returns "" with no error so optional
// uploads fall through to the relay's empty-path no-op.
func saveUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", fmt.Errorf("read multipart field %s: %w", field, err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("spool upload %s: %w", field, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return tmp.Name(), nil
}

// discardUpload removes a spooled temp file that never reached the relay.
func discardUpload(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}
