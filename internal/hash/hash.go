// Package hash computes file digests.
//
// rip uses SHA-256 digests to verify that a cross-device copy matches its
// source before the source is removed. The package provides both a real
// implementation using crypto/sha256 and a fake implementation for testing.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrDigestMismatch is returned by Verify when two files differ.
var ErrDigestMismatch = errors.New("digest mismatch")

// Hasher provides an abstraction for file hashing operations.
type Hasher interface {
	// HashFile computes the hash of the file at the given path.
	HashFile(path string) (string, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashFile computes the SHA-256 hash of the file at the given path.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verify hashes src and dst with h and returns ErrDigestMismatch if they differ.
func Verify(h Hasher, src, dst string) error {
	want, err := h.HashFile(src)
	if err != nil {
		return fmt.Errorf("hash %s: %w", src, err)
	}
	got, err := h.HashFile(dst)
	if err != nil {
		return fmt.Errorf("hash %s: %w", dst, err)
	}
	if want != got {
		return fmt.Errorf("%w: %s (%s) vs %s (%s)", ErrDigestMismatch, src, want, dst, got)
	}
	return nil
}

// FakeHasher implements Hasher with predetermined digests for testing.
type FakeHasher struct {
	hashes map[string]string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		hashes: make(map[string]string),
	}
}

// SetHash sets the hash for a specific path.
func (h *FakeHasher) SetHash(path, hash string) {
	h.hashes[path] = hash
}

// HashFile returns the predetermined hash for path, or "fakehash".
func (h *FakeHasher) HashFile(path string) (string, error) {
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	return "fakehash", nil
}
