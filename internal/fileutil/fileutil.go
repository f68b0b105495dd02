// Package fileutil writes output files through an afero filesystem.
package fileutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileExists checks if a regular file exists at the given path
func FileExists(fs afero.Fs, filePath string) bool {
	info, err := fs.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteFileWithOverwrite writes data to a file, respecting the overwrite flag.
// Returns true if the file was written, false if it was skipped
func WriteFileWithOverwrite(fs afero.Fs, filePath string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if FileExists(fs, filePath) && !overwrite {
		return false, nil
	}

	if err := fs.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	// written in place; readers may observe a partially written file
	if err := afero.WriteFile(fs, filePath, data, perm); err != nil {
		return false, err
	}

	return true, nil
}

// MarshalJSON encodes data with two-space indentation. HTML characters are
// left unescaped so titles and URLs read the same as in the source data.
func MarshalJSON(data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSONFile writes data as JSON to a file, respecting the overwrite flag.
// Returns true if the file was written, false if it was skipped
func WriteJSONFile(fs afero.Fs, data any, filePath string, overwrite bool) (bool, error) {
	if FileExists(fs, filePath) && !overwrite {
		slog.Info("JSON file already exists, skipping", "filename", filePath, "overwrite", overwrite)
		return false, nil
	}

	jsonData, err := MarshalJSON(data)
	if err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	slog.Debug("Writing JSON file", "filename", filePath, "bytes", len(jsonData))
	written, err := WriteFileWithOverwrite(fs, filePath, jsonData, 0644, overwrite)
	if err != nil {
		return false, fmt.Errorf("failed to write JSON file: %w", err)
	}

	return written, nil
}
