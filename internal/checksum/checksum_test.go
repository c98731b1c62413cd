package checksum

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileMD5_KnownDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fastq")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	got, err := FileMD5(path)
	if err != nil {
		t.Fatalf("FileMD5: %v", err)
	}
	// md5("hello world")
	if got != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Fatalf("unexpected digest %q", got)
	}
}

func TestFileMD5_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	got, err := FileMD5(path)
	if err != nil {
		t.Fatalf("FileMD5: %v", err)
	}
	if got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("unexpected digest %q", got)
	}
}

func TestFileMD5_MissingFileIsAccessError(t *testing.T) {
	_, err := FileMD5(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	var accessErr *FileAccessError
	if !errors.As(err, &accessErr) {
		t.Fatalf("expected FileAccessError, got %T", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped ErrNotExist, got %v", err)
	}
}
