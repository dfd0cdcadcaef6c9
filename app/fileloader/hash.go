package fileloader

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/minio/highwayhash"
)

// hashKey seeds HighwayHash so file signatures stay stable across runs. The
// key must be exactly 32 bytes.
var hashKey = []byte("sweepview-file-identity-key-0001")

// HashFile returns a stable hex signature of the file content. Derived view
// caches use it to tell datasets apart.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := highwayhash.New(hashKey)
	if err != nil {
		return "", fmt.Errorf("init hash: %w", err)
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
