package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// Staged describes a file written by Stage.
type Staged struct {
	Path   string
	Size   int64
	SHA256 string
}

// Stage writes a new temp file in dir through write, syncs it and returns
// its path with a SHA256 digest of the written bytes. The file is removed
// when write or the sync fails.
func Stage(dir, pattern string, write func(io.Writer) error) (Staged, error) {
	out, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return Staged{}, fmt.Errorf("create staged file: %w", err)
	}
	path := out.Name()
	fail := func(err error) (Staged, error) {
		_ = out.Close()
		_ = os.Remove(path)
		return Staged{}, err
	}

	hasher := sha256.New()
	counter := &countingWriter{w: io.MultiWriter(out, hasher)}
	if err := write(counter); err != nil {
		return fail(err)
	}
	if err := out.Sync(); err != nil {
		return fail(fmt.Errorf("sync staged file: %w", err))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return Staged{}, fmt.Errorf("close staged file: %w", err)
	}
	return Staged{Path: path, Size: counter.n, SHA256: digest(hasher)}, nil
}

// RemoveIfExists removes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether path names an existing file.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func digest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
