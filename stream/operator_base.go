package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tarungka/sieve/internal/logger"
	"github.com/tarungka/sieve/internal/metrics"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
)

// BaseOperator is a pass-through stage that the concrete stages embed. It owns the
// open/closed state and the single upstream reference.
type BaseOperator struct {
	// The unique identifier of the operator.
	id string
	// Closed or open; only Open and Close change it.
	state State
	// The upstream operator, owned exclusively by this operator.
	input Operator
	// Captured from the upstream at open.
	outputSchema *schema.Schema

	logger  zerolog.Logger
	metrics *metrics.OperatorMetrics
}

// NewBaseOperator creates a new BaseOperator.
func NewBaseOperator(id string) *BaseOperator {
	return &BaseOperator{
		id:      id,
		state:   StateClosed,
		logger:  logger.GetLogger("operator").With().Str("operator", id).Logger(),
		metrics: metrics.NewOperatorMetrics(id),
	}
}

// ID returns the unique identifier of the operator.
func (o *BaseOperator) ID() string {
	return o.id
}

func (o *BaseOperator) State() State {
	return o.state
}

func (o *BaseOperator) IsOpen() bool {
	return o.state == StateOpen
}

func (o *BaseOperator) Metrics() *metrics.OperatorMetrics {
	return o.metrics
}

// SetInputOperator binds the upstream operator. The topology is fixed while open.
func (o *BaseOperator) SetInputOperator(input Operator) error {
	if o.state != StateClosed {
		o.logger.Error().Msg("attempt to change the input operator of an open operator")
		return fmt.Errorf("%s: %w", o.id, ErrInputOperatorChangedAfterOpen)
	}
	o.input = input
	return nil
}

func (o *BaseOperator) InputOperator() Operator {
	return o.input
}

// Open opens the upstream and captures its schema.
func (o *BaseOperator) Open(ctx context.Context) error {
	if o.state == StateOpen {
		return nil
	}
	if o.input == nil {
		return fmt.Errorf("%s: %w", o.id, ErrNoInputOperator)
	}
	if err := o.input.Open(ctx); err != nil {
		return fmt.Errorf("%s: opening input %s: %w", o.id, o.input.ID(), err)
	}
	o.outputSchema = o.input.OutputSchema()
	o.state = StateOpen
	o.metrics.MarkOpened(time.Now())
	o.logger.Trace().Msg("opened")
	return nil
}

// GetNextTuple forwards the next upstream tuple.
func (o *BaseOperator) GetNextTuple(ctx context.Context) (*tuple.Tuple, error) {
	if o.state != StateOpen {
		return nil, fmt.Errorf("%s: %w", o.id, ErrOperatorNotOpen)
	}
	t, err := o.input.GetNextTuple(ctx)
	if err != nil {
		return nil, err
	}
	o.metrics.IncrementIn()
	o.metrics.IncrementOut()
	return t, nil
}

// Close closes the upstream first and then this operator. The operator ends up closed
// even when the upstream fails to close; that failure is returned.
func (o *BaseOperator) Close() error {
	if o.state == StateClosed {
		return nil
	}

	var err error
	if o.input != nil {
		if closeErr := o.input.Close(); closeErr != nil {
			o.logger.Err(closeErr).Msg("error when closing the input operator")
			err = fmt.Errorf("%s: closing input %s: %w", o.id, o.input.ID(), closeErr)
		}
	}
	o.state = StateClosed
	o.logger.Trace().Msg("closed")
	return err
}

func (o *BaseOperator) OutputSchema() *schema.Schema {
	return o.outputSchema
}

// TransformToOutputSchema passes its single input schema through.
func (o *BaseOperator) TransformToOutputSchema(inputs ...*schema.Schema) (*schema.Schema, error) {
	if len(inputs) != 1 || inputs[0] == nil {
		return nil, fmt.Errorf("%s: %w: expected exactly one input schema, got %d", o.id, ErrInvalidInputSchemas, len(inputs))
	}
	return inputs[0], nil
}
