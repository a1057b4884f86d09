package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/tarungka/sieve/internal/predicate"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
)

// FilterOperator forwards the upstream tuples that satisfy its predicate.
type FilterOperator struct {
	BaseOperator
	predicate predicate.FilterPredicate
}

// NewFilterOperator creates a new FilterOperator.
func NewFilterOperator(id string, p predicate.FilterPredicate) *FilterOperator {
	return &FilterOperator{
		BaseOperator: *NewBaseOperator(id),
		predicate:    p,
	}
}

func (f *FilterOperator) Predicate() predicate.FilterPredicate {
	return f.predicate
}

// Open opens the upstream and checks the predicate against the upstream schema before
// any tuple flows. On a bad predicate the operator is closed again.
func (f *FilterOperator) Open(ctx context.Context) error {
	if f.IsOpen() {
		return nil
	}
	if err := f.BaseOperator.Open(ctx); err != nil {
		return err
	}
	if err := f.predicate.Validate(f.outputSchema); err != nil {
		f.logger.Err(err).Str("predicate", f.predicate.String()).Msg("predicate does not fit the input schema")
		if closeErr := f.Close(); closeErr != nil {
			return errors.Join(err, closeErr)
		}
		return err
	}
	f.logger.Debug().Str("predicate", f.predicate.String()).Msg("filter opened")
	return nil
}

// GetNextTuple pulls until a tuple passes the predicate or upstream is exhausted.
func (f *FilterOperator) GetNextTuple(ctx context.Context) (*tuple.Tuple, error) {
	if !f.IsOpen() {
		return nil, fmt.Errorf("%s: %w", f.id, ErrOperatorNotOpen)
	}
	for {
		t, err := f.input.GetNextTuple(ctx)
		if err != nil {
			return nil, err
		}
		f.metrics.IncrementIn()

		ok, err := f.predicate.Evaluate(ctx, t)
		if err != nil {
			f.metrics.IncrementErrors()
			f.logger.Err(err).Str("tuple", t.ID.String()).Msg("error when evaluating the predicate")
			return nil, fmt.Errorf("%s: %w", f.id, err)
		}
		if ok {
			f.metrics.IncrementOut()
			return t, nil
		}
		f.metrics.IncrementDropped()
		f.logger.Trace().Str("tuple", t.ID.String()).Msg("dropped")
	}
}

// TransformToOutputSchema returns the input schema unchanged once the predicate is
// known to be valid for it.
func (f *FilterOperator) TransformToOutputSchema(inputs ...*schema.Schema) (*schema.Schema, error) {
	out, err := f.BaseOperator.TransformToOutputSchema(inputs...)
	if err != nil {
		return nil, err
	}
	if err := f.predicate.Validate(out); err != nil {
		return nil, fmt.Errorf("%s: %w", f.id, err)
	}
	return out, nil
}
