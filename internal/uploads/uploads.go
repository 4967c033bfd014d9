// Package uploads turns multipart file fields into saved-file descriptors.
// Controllers receive a normalized list; optional attachments never produce
// an error when absent.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing; larger
// files spill to temp files.
const maxUploadMemory = 32 << 20

// FileDescriptor describes one saved upload. RelPath is relative to the
// upload root so stored references stay portable across hosts.
type FileDescriptor struct {
	Name       string `json:"name"`
	StoredName string `json:"storedName"`
	RelPath    string `json:"relPath"`
	Size       int64  `json:"size"`
}

// Saver persists multipart files under uuid-based names. The upload
// directory is created on construction.
type Saver struct {
	dir string
}

func NewSaver(dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Saver{dir: dir}, nil
}

// Dir returns the upload root, for static file serving.
func (s *Saver) Dir() string { return s.dir }

// Parse extracts and saves every file under the given form field. A request
// without multipart content or without files yields an empty list, not an
// error.
func (s *Saver) Parse(r *http.Request, field string) ([]FileDescriptor, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		if err == http.ErrNotMultipart {
			return []FileDescriptor{}, nil
		}
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return []FileDescriptor{}, nil
	}

	out := make([]FileDescriptor, 0, len(r.MultipartForm.File[field]))
	for _, header := range r.MultipartForm.File[field] {
		desc, err := s.save(header)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

func (s *Saver) save(header *multipart.FileHeader) (FileDescriptor, error) {
	src, err := header.Open()
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("open uploaded file %s: %w", header.Filename, err)
	}
	defer src.Close()

	storedName := uuid.NewString() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(s.dir, storedName))
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("create stored file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		return FileDescriptor{}, fmt.Errorf("write stored file: %w", err)
	}

	return FileDescriptor{
		Name:       header.Filename,
		StoredName: storedName,
		RelPath:    filepath.ToSlash(filepath.Join("uploads", storedName)),
		Size:       size,
	}, nil
}
