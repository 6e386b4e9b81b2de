package normalize

import (
	"crypto/sha256"
	"fmt"
	"os"
)

// HashBytes returns the stable content hash used for import dedup.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}

// HashFile hashes the file at path. The whole file is read: statements are
// a few hundred KB at most.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return HashBytes(data), nil
}
