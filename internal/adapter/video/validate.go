package video

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateFile checks that the path points at a readable MP4 file.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("not a file: %s", path)
	}
	if strings.ToLower(filepath.Ext(path)) != ".mp4" {
		return fmt.Errorf("not an MP4 file: %s", path)
	}
	return nil
}
