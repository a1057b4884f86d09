package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/tarungka/sieve/internal/tuple"
)

// Writer hands the tuples collected by a visualization sink to the rendering side.
type Writer interface {
	Write(ctx context.Context, chartType string, tuples []*tuple.Tuple) error
}

// Chart is the document a FileWriter produces.
type Chart struct {
	ChartType string         `json:"chart_type"`
	Tuples    []*tuple.Tuple `json:"tuples"`
}

// ConsoleWriter prints one JSON object per tuple.
type ConsoleWriter struct {
	out io.Writer
}

// NewConsoleWriter writes to out, or to stdout when out is nil.
func NewConsoleWriter(out io.Writer) *ConsoleWriter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleWriter{out: out}
}

func (c *ConsoleWriter) Write(ctx context.Context, chartType string, tuples []*tuple.Tuple) error {
	enc := json.NewEncoder(c.out)
	for _, t := range tuples {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(t); err != nil {
			log.Err(err).Str("tuple", t.ID.String()).Msg("Failed to write tuple")
			return fmt.Errorf("writing tuple %s: %w", t.ID, err)
		}
	}
	log.Debug().Int("tuples", len(tuples)).Str("chart_type", chartType).Msg("Tuples written to console")
	return nil
}
