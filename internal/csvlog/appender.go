package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Appender appends rows to per-account CSV logs. Each file gets a header
// row exactly once, when the appender creates it; existing files are only
// ever appended to.
type Appender struct{}

// NewAppender creates a CSV appender.
func NewAppender() *Appender {
	return &Appender{}
}

// Append writes row to the CSV file at path, creating the file (and its
// directory) with a leading header row if it does not exist yet.
func (a *Appender) Append(path string, header, row []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir for %s: %w", path, err)
	}

	_, statErr := os.Stat(path)
	if statErr != nil && !os.IsNotExist(statErr) {
		return fmt.Errorf("stat %s: %w", path, statErr)
	}
	writeHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeHeader {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
