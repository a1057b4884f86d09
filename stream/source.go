package stream

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/tarungka/sieve/internal/logger"
	"github.com/tarungka/sieve/internal/metrics"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
)

// TupleSource is a leaf operator that scans an in-memory list of tuples.
// Every open starts a new scan from the first tuple.
type TupleSource struct {
	id     string
	schema *schema.Schema
	tuples []*tuple.Tuple

	state        State
	cursor       int
	outputSchema *schema.Schema

	logger  zerolog.Logger
	metrics *metrics.OperatorMetrics
}

// NewTupleSource creates a source over tuples, all of which must be bound to s.
func NewTupleSource(id string, s *schema.Schema, tuples ...*tuple.Tuple) (*TupleSource, error) {
	for i, t := range tuples {
		if !t.Schema().Equal(s) {
			return nil, fmt.Errorf("%s: tuple %d has schema %s, expected %s", id, i, t.Schema(), s)
		}
	}
	return &TupleSource{
		id:      id,
		schema:  s,
		tuples:  tuples,
		logger:  logger.GetLogger("source").With().Str("operator", id).Logger(),
		metrics: metrics.NewOperatorMetrics(id),
	}, nil
}

// ID returns the unique identifier of the operator.
func (s *TupleSource) ID() string {
	return s.id
}

// Schema is the declared schema, available before open.
func (s *TupleSource) Schema() *schema.Schema {
	return s.schema
}

func (s *TupleSource) State() State {
	return s.state
}

func (s *TupleSource) Metrics() *metrics.OperatorMetrics {
	return s.metrics
}

func (s *TupleSource) Open(ctx context.Context) error {
	if s.state == StateOpen {
		return nil
	}
	s.cursor = 0
	s.outputSchema = s.schema
	s.state = StateOpen
	s.metrics.MarkOpened(time.Now())
	s.logger.Trace().Int("tuples", len(s.tuples)).Msg("opened")
	return nil
}

func (s *TupleSource) GetNextTuple(ctx context.Context) (*tuple.Tuple, error) {
	if s.state != StateOpen {
		return nil, fmt.Errorf("%s: %w", s.id, ErrOperatorNotOpen)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cursor >= len(s.tuples) {
		return nil, io.EOF
	}
	t := s.tuples[s.cursor]
	s.cursor++
	s.metrics.IncrementOut()
	return t, nil
}

func (s *TupleSource) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	s.logger.Trace().Int("emitted", s.cursor).Msg("closed")
	return nil
}

func (s *TupleSource) OutputSchema() *schema.Schema {
	return s.outputSchema
}
