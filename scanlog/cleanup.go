package scanlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cleanup removes scan log files older than the retention period.
func Cleanup(dir string, retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	files, err := filepath.Glob(filepath.Join(dir, "finlens-*.log"))
	if err != nil {
		return fmt.Errorf("failed to list scan log files: %w", err)
	}

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				return fmt.Errorf("failed to remove %s: %w", file, err)
			}
		}
	}
	return nil
}
