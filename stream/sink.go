package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
)

// Chart types understood by the rendering layer.
const (
	ChartBar       = "bar"
	ChartLine      = "line"
	ChartPie       = "pie"
	ChartWordCloud = "wordcloud"
	ChartTable     = "table"
)

// VisualizationSink is a terminal stage that buffers its whole input for a chart.
type VisualizationSink struct {
	BaseOperator
	chartType string
	result    []*tuple.Tuple
}

// NewVisualizationSink creates a new VisualizationSink.
func NewVisualizationSink(id, chartType string) *VisualizationSink {
	return &VisualizationSink{
		BaseOperator: *NewBaseOperator(id),
		chartType:    chartType,
		result:       []*tuple.Tuple{},
	}
}

// Open opens the upstream chain. A fresh open starts with an empty buffer.
func (s *VisualizationSink) Open(ctx context.Context) error {
	if s.IsOpen() {
		return nil
	}
	if err := s.BaseOperator.Open(ctx); err != nil {
		return err
	}
	s.result = []*tuple.Tuple{}
	return nil
}

// CollectAllTuples drains the upstream into the buffer and returns a copy of it. Once the
// upstream is exhausted further calls return the same tuples without pulling them again.
func (s *VisualizationSink) CollectAllTuples(ctx context.Context) ([]*tuple.Tuple, error) {
	for {
		t, err := s.GetNextTuple(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		s.result = append(s.result, t)
	}
	s.logger.Debug().Int("tuples", len(s.result)).Str("chart_type", s.chartType).Msg("collected all tuples")
	return slices.Clone(s.result), nil
}

// TransformToOutputSchema always fails: a sink is the end of the schema chain.
func (s *VisualizationSink) TransformToOutputSchema(inputs ...*schema.Schema) (*schema.Schema, error) {
	return nil, fmt.Errorf("%s: %w", s.id, ErrInvalidOutputSchemaForSink)
}

func (s *VisualizationSink) ChartType() string {
	return s.chartType
}
