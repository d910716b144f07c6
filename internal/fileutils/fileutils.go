// Package fileutils validates CSV input files and cleans up transient
// copies created during processing.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bkowalczyk/pnl-csv/internal/logging"
)

// ValidateCSVFile checks that path points to a regular .csv file within the
// size limit. It returns the file size on success.
func ValidateCSVFile(path string, maxSizeBytes int64) (int64, error) {
	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		return 0, fmt.Errorf("unsupported file type %q: only .csv files are accepted", filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("accessing %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	if info.Size() > maxSizeBytes {
		return 0, fmt.Errorf("file size %d exceeds limit of %d bytes", info.Size(), maxSizeBytes)
	}
	return info.Size(), nil
}

// RemoveTransient deletes a temporary file, logging instead of failing when
// the file is already gone.
func RemoveTransient(path string, logger logging.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).WithField("file", path).Warn("Failed to remove transient file")
	}
}
