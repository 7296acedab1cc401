// Package storage keeps patient file bytes in an opaque blob store keyed by
// a generated path.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// PatientFilesPrefix namespaces every patient file key.
const PatientFilesPrefix = "patient_files"

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidKey   = errors.New("invalid blob key")
)

// BlobStore stores and retrieves raw bytes.
type BlobStore interface {
	// Save writes content under key and returns the number of bytes written.
	Save(ctx context.Context, key string, content io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewPatientFileKey returns a fresh key such as patient_files/<uuid>_scan.pdf.
func NewPatientFileKey(fileName string) string {
	return path.Join(PatientFilesPrefix, uuid.NewString()+"_"+SanitizeFileName(fileName))
}

// SanitizeFileName reduces a client supplied name to a safe base name.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		out = "upload"
	}
	if len(out) > 100 {
		out = out[len(out)-100:]
	}
	return out
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
