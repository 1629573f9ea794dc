// package playlist reads the line-delimited playlist URL list that drives
// a download run.
package playlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/curator/internal/shared"
)

// ReadList reads playlist URLs from the file at path.
//
// Each non-blank, non-comment line is one URL; leading and trailing
// whitespace is trimmed and order is preserved (download order = file
// order). A missing file wraps [shared.ErrNotFound]. An empty file yields
// an empty slice and no error.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: list file %s", shared.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open list file %s: %w", path, err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list file %s: %w", path, err)
	}

	return urls, nil
}
