package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tarungka/sieve/internal/logger"
	"github.com/tarungka/sieve/internal/metrics"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
)

// Pipeline is a linear pull chain: source -> stages... -> sink.
type Pipeline struct {
	source Operator
	stages []Stage
	sink   Sink

	logger zerolog.Logger
}

// NewPipeline creates a new Pipeline.
func NewPipeline(source Operator, sink Sink) *Pipeline {
	return &Pipeline{
		source: source,
		sink:   sink,
		logger: logger.GetLogger("pipeline"),
	}
}

// AddStage appends a stage between the source and the sink.
func (p *Pipeline) AddStage(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Operators returns the chain from source to sink.
func (p *Pipeline) Operators() []Operator {
	ops := make([]Operator, 0, len(p.stages)+2)
	ops = append(ops, p.source)
	for _, s := range p.stages {
		ops = append(ops, s)
	}
	return append(ops, p.sink)
}

// Sink returns the terminal stage.
func (p *Pipeline) Sink() Sink {
	return p.sink
}

// Connect binds every stage to its upstream. It fails if any operator is open.
func (p *Pipeline) Connect() error {
	var upstream Operator = p.source
	for _, stage := range p.stages {
		if err := stage.SetInputOperator(upstream); err != nil {
			return err
		}
		upstream = stage
	}
	return p.sink.SetInputOperator(upstream)
}

// Validate propagates the source schema through the stages and returns the schema the sink
// receives. If the source does not implement Schemaed, Validate returns a nil schema and a
// nil error; such chains are checked when they are opened.
func (p *Pipeline) Validate() (*schema.Schema, error) {
	src, ok := p.source.(Schemaed)
	if !ok {
		return nil, nil
	}
	current := src.Schema()
	for _, stage := range p.stages {
		next, err := stage.TransformToOutputSchema(current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// RegisterMetrics adds the counters of every instrumented operator to r.
func (p *Pipeline) RegisterMetrics(r *metrics.Registry) {
	for _, op := range p.Operators() {
		if inst, ok := op.(metrics.Instrumented); ok {
			r.Register(inst.Metrics())
		}
	}
}

// Run connects and validates the chain, opens it from the sink, drains it and closes it.
func (p *Pipeline) Run(ctx context.Context) (result []*tuple.Tuple, err error) {
	if err := p.Connect(); err != nil {
		return nil, fmt.Errorf("connecting pipeline: %w", err)
	}
	if _, err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating pipeline: %w", err)
	}

	p.logger.Debug().Int("stages", len(p.stages)).Str("sink", p.sink.ID()).Msg("opening pipeline")
	if err := p.sink.Open(ctx); err != nil {
		// part of the chain may be open
		return nil, errors.Join(fmt.Errorf("opening pipeline: %w", err), p.closeAll())
	}
	defer func() {
		if closeErr := p.sink.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("closing pipeline: %w", closeErr))
		}
	}()

	result, err = p.sink.CollectAllTuples(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Info().Int("tuples", len(result)).Str("chart_type", p.sink.ChartType()).Msg("pipeline finished")
	return result, nil
}

// closeAll closes every operator individually, for chains whose open failed half way.
func (p *Pipeline) closeAll() error {
	var errs []error
	ops := p.Operators()
	for i := len(ops) - 1; i >= 0; i-- {
		if err := ops[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
