package sources

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/tarungka/sieve/internal/logger"
	"github.com/tarungka/sieve/internal/metrics"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
	"github.com/tarungka/sieve/stream"
)

// ErrTrailingData is returned for a line that holds more than one JSON value.
var ErrTrailingData = errors.New("trailing data after JSON object")

// JSONLinesSource reads one JSON object per line. The file is opened on Open and
// released on Close, so every open rescans it from the start.
type JSONLinesSource struct {
	id       string
	filePath string
	schema   *schema.Schema

	state        stream.State
	file         *os.File
	scanner      *bufio.Scanner
	line         int
	outputSchema *schema.Schema

	logger  zerolog.Logger
	metrics *metrics.OperatorMetrics
}

func NewJSONLinesSource(id, filePath string, s *schema.Schema) *JSONLinesSource {
	return &JSONLinesSource{
		id:       id,
		filePath: filePath,
		schema:   s,
		logger:   logger.GetLogger("source").With().Str("operator", id).Str("file_path", filePath).Logger(),
		metrics:  metrics.NewOperatorMetrics(id),
	}
}

func (j *JSONLinesSource) ID() string {
	return j.id
}

func (j *JSONLinesSource) Schema() *schema.Schema {
	return j.schema
}

func (j *JSONLinesSource) State() stream.State {
	return j.state
}

func (j *JSONLinesSource) Metrics() *metrics.OperatorMetrics {
	return j.metrics
}

func (j *JSONLinesSource) Open(ctx context.Context) error {
	if j.state == stream.StateOpen {
		return nil
	}
	j.logger.Trace().Msg("opening file for reading")
	file, err := os.Open(j.filePath)
	if err != nil {
		j.logger.Err(err).Msg("failed to open file")
		return fmt.Errorf("%s: %w", j.id, err)
	}
	j.file = file
	j.scanner = bufio.NewScanner(file)
	j.scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	j.line = 0
	j.outputSchema = j.schema
	j.state = stream.StateOpen
	j.metrics.MarkOpened(time.Now())
	return nil
}

func (j *JSONLinesSource) GetNextTuple(ctx context.Context) (*tuple.Tuple, error) {
	if j.state != stream.StateOpen {
		return nil, fmt.Errorf("%s: %w", j.id, stream.ErrOperatorNotOpen)
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !j.scanner.Scan() {
			if err := j.scanner.Err(); err != nil {
				return nil, fmt.Errorf("%s: reading line %d: %w", j.id, j.line+1, err)
			}
			return nil, io.EOF
		}
		j.line++
		raw := bytes.TrimSpace(j.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		row := make(map[string]any)
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&row); err != nil {
			j.logger.Err(err).Int("line", j.line).Msg("error when decoding line")
			return nil, fmt.Errorf("%s: line %d: %w", j.id, j.line, err)
		}
		// one object per line, nothing after it
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			j.logger.Error().Int("line", j.line).Msg("trailing data after JSON object")
			return nil, fmt.Errorf("%s: line %d: %w", j.id, j.line, ErrTrailingData)
		}
		t, err := DecodeRow(j.schema, row)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", j.id, j.line, err)
		}
		j.metrics.IncrementOut()
		return t, nil
	}
}

func (j *JSONLinesSource) Close() error {
	if j.state == stream.StateClosed {
		return nil
	}
	j.state = stream.StateClosed
	j.scanner = nil
	err := j.file.Close()
	j.file = nil
	j.logger.Trace().Int("lines", j.line).Msg("closed")
	return err
}

func (j *JSONLinesSource) OutputSchema() *schema.Schema {
	return j.outputSchema
}
