// Package revision records which upstream revision a corpus directory holds.
package revision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MarkerName is the file under the corpus root that holds the revision.
const MarkerName = "COMMIT"

// MarkerPath returns the marker location for root.
func MarkerPath(root string) string {
	return filepath.Join(root, MarkerName)
}

// Current returns the revision recorded under root, or "" if none is.
func Current(root string) (string, error) {
	data, err := os.ReadFile(MarkerPath(root))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading revision marker: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// NeedsRefresh reports whether root must be refetched to hold pinned.
// A missing marker is the first-run case and is not an error.
func NeedsRefresh(root, pinned string) (bool, error) {
	current, err := Current(root)
	if err != nil {
		return false, err
	}
	return current != pinned, nil
}

// Commit records pinned as the revision held under root. It must only be
// called once the corpus has been completely extracted.
func Commit(root, pinned string) error {
	if err := os.WriteFile(MarkerPath(root), []byte(pinned), 0o644); err != nil {
		return fmt.Errorf("writing revision marker: %w", err)
	}
	return nil
}
