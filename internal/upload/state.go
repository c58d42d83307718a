package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// State remembers which export files were already sent, keyed by path and
// content hash. *localstore.Store satisfies it.
type State interface {
	IsImported(ctx context.Context, path, hash string) (bool, error)
	MarkImported(ctx context.Context, path, hash string) error
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
