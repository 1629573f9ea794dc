package playlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/curator/internal/shared"
)

func TestReadList(t *testing.T) {
	writeList := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "list.txt")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write list file: %v", err)
		}
		return path
	}

	t.Run("reads URLs in order", func(t *testing.T) {
		path := writeList(t, "https://example.com/a\nhttps://example.com/b\nhttps://example.com/c\n")

		urls, err := ReadList(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
		if len(urls) != len(want) {
			t.Fatalf("expected %d URLs, got %d", len(want), len(urls))
		}
		for i, u := range want {
			if urls[i] != u {
				t.Errorf("urls[%d] = %s, want %s", i, urls[i], u)
			}
		}
	})

	t.Run("trims whitespace and skips blanks and comments", func(t *testing.T) {
		path := writeList(t, "  https://example.com/a  \n\n# a comment\n\thttps://example.com/b\n   \n")

		urls, err := ReadList(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(urls) != 2 {
			t.Fatalf("expected 2 URLs, got %d: %v", len(urls), urls)
		}
		if urls[0] != "https://example.com/a" || urls[1] != "https://example.com/b" {
			t.Errorf("unexpected URLs: %v", urls)
		}
	})

	t.Run("empty file yields empty list", func(t *testing.T) {
		path := writeList(t, "")

		urls, err := ReadList(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(urls) != 0 {
			t.Errorf("expected no URLs, got %v", urls)
		}
	})

	t.Run("missing file wraps ErrNotFound", func(t *testing.T) {
		_, err := ReadList(filepath.Join(t.TempDir(), "missing.txt"))
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
