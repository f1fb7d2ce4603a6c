// Package export writes snapshot rows to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// CSVFile is a CSV writer flushed after every row, so rows already
// written survive a run that ends on timeout.
type CSVFile struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	path   string
	rows   int
}

// Create opens path for writing, truncating an existing file.
func Create(path string) (*CSVFile, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}
	return &CSVFile{
		file:   file,
		writer: csv.NewWriter(file),
		path:   path,
	}, nil
}

func (c *CSVFile) WriteRow(fields []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return fmt.Errorf("write to closed CSV file %s", c.path)
	}
	if err := c.writer.Write(fields); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV row: %w", err)
	}
	c.rows++
	return nil
}

// Rows returns the number of rows written, header included.
func (c *CSVFile) Rows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

func (c *CSVFile) Path() string { return c.path }

func (c *CSVFile) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return nil
	}
	c.writer.Flush()
	flushErr := c.writer.Error()
	closeErr := c.file.Close()
	c.file = nil
	if flushErr != nil {
		return fmt.Errorf("failed to flush CSV file: %w", flushErr)
	}
	return closeErr
}
