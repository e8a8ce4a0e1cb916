package importer

import (
	"fmt"
	"os"
)

// ReadLocalFile reads a local HTML file to text. No parsing happens here; the
// controller normalizes the markup afterwards.
func ReadLocalFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
