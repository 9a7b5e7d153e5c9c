// Package fileutil holds file helpers shared by the merge and encoding paths.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
)

// CopyFileVerified copies src to dst atomically and verifies the result by
// re-reading dst and comparing size and SHA-256 with the source. dst is never
// left half-written: the copy lands under a temporary name and is renamed into
// place only after the bytes are flushed.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	pending, err := renameio.NewPendingFile(dst, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck

	srcHasher := sha256.New()
	written, err := io.Copy(pending, io.TeeReader(in, srcHasher))
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if written != srcInfo.Size() {
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("finalize destination: %w", err)
	}

	dstSum, dstSize, err := hashFile(dst)
	if err != nil {
		return fmt.Errorf("verify destination: %w", err)
	}
	if dstSize != srcInfo.Size() || !bytes.Equal(srcHasher.Sum(nil), dstSum) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}

func hashFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	hasher := sha256.New()
	n, err := io.Copy(hasher, f)
	if err != nil {
		return nil, 0, err
	}
	return hasher.Sum(nil), n, nil
}

// FileSize returns the size of path, or 0 when it cannot be read.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
