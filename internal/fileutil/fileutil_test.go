package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestStage(t *testing.T) {
	dir := t.TempDir()

	staged, err := Stage(dir, "stage-*.tmp", func(w io.Writer) error {
		_, err := io.WriteString(w, "hello world")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(staged.Path) != dir {
		t.Fatalf("staged outside dir: %s", staged.Path)
	}
	if staged.Size != int64(len("hello world")) {
		t.Fatalf("size = %d", staged.Size)
	}
	const want = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if staged.SHA256 != want {
		t.Fatalf("digest = %s, want %s", staged.SHA256, want)
	}

	got, err := os.ReadFile(staged.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestStageRemovesFileOnWriteError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")

	_, err := Stage(dir, "stage-*.tmp", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected staged file removed, found %d entries", len(entries))
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")

	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err := Exists(path)
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatal(err)
	}
	ok, err = Exists(path)
	if err != nil || ok {
		t.Fatalf("Exists after remove = %v, %v", ok, err)
	}
}
