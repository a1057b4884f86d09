package stream

import (
	"context"
	"errors"

	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
)

var (
	// ErrInputOperatorChangedAfterOpen is returned when the upstream of an open operator is rebound.
	ErrInputOperatorChangedAfterOpen = errors.New("input operator changed after open")

	// ErrInvalidOutputSchemaForSink is returned when a sink is asked to transform a schema.
	ErrInvalidOutputSchemaForSink = errors.New("sink does not produce an output schema")

	// ErrOperatorNotOpen is returned when tuples are pulled from a closed operator.
	ErrOperatorNotOpen = errors.New("operator is not open")

	// ErrNoInputOperator is returned when a stage is opened without an upstream.
	ErrNoInputOperator = errors.New("no input operator")

	// ErrInvalidInputSchemas is returned when a stage is not given exactly one input schema.
	ErrInvalidInputSchemas = errors.New("invalid input schemas")
)

// State is the lifecycle state of an operator. Operators start and end Closed.
type State int

const (
	StateClosed State = iota
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Operator is the pull contract shared by every pipeline stage.
// The lifecycle is: Open -> GetNextTuple* -> Close.
type Operator interface {
	// ID returns the unique identifier of the operator.
	ID() string
	// Open prepares the operator and everything upstream of it. Opening an open
	// operator does nothing.
	Open(ctx context.Context) error
	// GetNextTuple blocks until the next tuple is available. It returns io.EOF once
	// upstream is exhausted, and keeps returning io.EOF on later calls.
	GetNextTuple(ctx context.Context) (*tuple.Tuple, error)
	// Close releases the operator and, recursively, its upstream. It may be called any
	// number of times, including before Open.
	Close() error
	// OutputSchema returns the schema captured at open, nil before the first open.
	OutputSchema() *schema.Schema
}

// Stage is an operator that pulls from exactly one upstream operator.
type Stage interface {
	Operator
	// SetInputOperator binds the upstream. Only allowed while closed.
	SetInputOperator(input Operator) error
	InputOperator() Operator
	// TransformToOutputSchema returns the schema this stage produces for the given inputs.
	TransformToOutputSchema(inputs ...*schema.Schema) (*schema.Schema, error)
}

// Sink is the terminal stage of a pipeline. It never transforms schemas; instead it
// drains its upstream into a buffer handed to the rendering layer.
type Sink interface {
	Stage
	// CollectAllTuples pulls until upstream is exhausted and returns every tuple in order.
	CollectAllTuples(ctx context.Context) ([]*tuple.Tuple, error)
	// ChartType labels the kind of output, e.g. "bar".
	ChartType() string
}

// Schemaed is implemented by sources whose schema is known before they are opened.
type Schemaed interface {
	Schema() *schema.Schema
}
