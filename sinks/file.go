package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/tarungka/sieve/internal/tuple"
)

// FileWriter writes the collected tuples as a single Chart document, replacing the file
// on every run.
type FileWriter struct {
	filePath string
}

func NewFileWriter(filePath string) *FileWriter {
	return &FileWriter{filePath: filePath}
}

func (f *FileWriter) Write(ctx context.Context, chartType string, tuples []*tuple.Tuple) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Trace().Str("file_path", f.filePath).Msg("Preparing to open file for writing")

	// Ensure parent directory exists
	dir := filepath.Dir(f.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Err(err).Str("directory", dir).Msg("Failed to create parent directories")
		return fmt.Errorf("failed to create parent directories: %w", err)
	}

	if _, err := os.Stat(f.filePath); err == nil {
		log.Warn().Str("file_path", f.filePath).Msg("File already exists; replacing it")
	}

	file, err := os.Create(f.filePath)
	if err != nil {
		log.Err(err).Str("file_path", f.filePath).Msg("Failed to open file")
		return fmt.Errorf("failed to open file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if tuples == nil {
		tuples = []*tuple.Tuple{}
	}
	if err := enc.Encode(Chart{ChartType: chartType, Tuples: tuples}); err != nil {
		file.Close()
		log.Err(err).Msg("Failed to write to file")
		return fmt.Errorf("failed to write to file: %w", err)
	}
	if err := file.Close(); err != nil {
		log.Err(err).Msg("Failed to close file")
		return err
	}
	log.Debug().Int("tuples", len(tuples)).Msgf("Chart written to file: %s", f.filePath)
	return nil
}
