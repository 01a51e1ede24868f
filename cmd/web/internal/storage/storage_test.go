package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func uploadedFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}

func TestSaveWritesFileUnderMediaDir(t *testing.T) {
	mediaDir := t.TempDir()
	s := NewFileStorage(mediaDir)

	content := []byte("fake image bytes")
	relPath, err := s.Save(uploadedFile(t, "test_image.jpg", content))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !strings.HasPrefix(relPath, "tweets/") {
		t.Errorf("Save() path = %q, want tweets/ prefix", relPath)
	}
	if filepath.Ext(relPath) != ".jpg" {
		t.Errorf("Save() path = %q, want .jpg extension", relPath)
	}

	got, err := os.ReadFile(filepath.Join(mediaDir, filepath.FromSlash(relPath)))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("saved content = %q, want %q", got, content)
	}
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	s := NewFileStorage(t.TempDir())

	first, err := s.Save(uploadedFile(t, "same.png", []byte("a")))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := s.Save(uploadedFile(t, "same.png", []byte("b")))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first == second {
		t.Errorf("two uploads with the same name share the path %q", first)
	}
}
