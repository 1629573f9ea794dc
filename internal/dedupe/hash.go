package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/curator/internal/shared"
)

// HashFile computes the SHA-256 of the file's full byte contents,
// streaming from disk. Read failures wrap [shared.ErrUnreadableFile] so
// callers can skip the file instead of aborting the batch.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", shared.ErrUnreadableFile, path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("%w: %s: %v", shared.ErrUnreadableFile, path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
