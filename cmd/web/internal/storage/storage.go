// Package storage persists uploaded tweet images on local disk.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid/v5"
)

const uploadSubdir = "tweets"

type FileStorage struct {
	mediaDir string
}

func NewFileStorage(mediaDir string) *FileStorage {
	return &FileStorage{mediaDir: mediaDir}
}

// Save writes the uploaded file under <mediaDir>/tweets/ with a generated
// name and returns the path relative to the media dir. The original
// extension is kept so browsers can sniff the type when serving.
func (s *FileStorage) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	relPath := filepath.Join(uploadSubdir, id.String()+filepath.Ext(fh.Filename))

	fullPath := filepath.Join(s.mediaDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write media file: %w", err)
	}
	return filepath.ToSlash(relPath), nil
}
