package pipeline

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tarungka/sieve/internal/catalog"
	"github.com/tarungka/sieve/internal/predicate"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/sinks"
	"github.com/tarungka/sieve/sources"
	"github.com/tarungka/sieve/stream"
)

// Job is a built pipeline together with the writer that receives its output.
type Job struct {
	Name     string
	Schema   *schema.Schema
	Pipeline *stream.Pipeline
	Writer   sinks.Writer
}

// Build wires the operator chain described by c and checks every predicate against the
// schema. cat resolves filter references and, once the chain is valid, stores named
// filters; it may be nil when no filter refers to it.
func Build(c Config, cat *catalog.Catalog) (*Job, error) {
	c.Source.Name = qualify(c.Name, c.Source.Name, "source")
	c.Sink.Name = qualify(c.Name, c.Sink.Name, "sink")

	s, err := c.BuildSchema()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	src, err := sources.New(c.Source, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	writer, err := sinks.New(c.Sink)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}

	p := stream.NewPipeline(src, sinks.NewVisualizationSink(c.Sink))
	named := make(map[string]predicate.FilterPredicate)
	for i, fc := range c.Filters {
		pred, err := resolveFilter(fc, cat)
		if err != nil {
			return nil, fmt.Errorf("%s: filter %d: %w", c.Name, i, err)
		}
		if fc.Ref == "" && fc.Name != "" {
			named[fc.Name] = pred
		}
		id := fc.Name
		if id == "" {
			id = fc.Ref
		}
		p.AddStage(stream.NewFilterOperator(qualify(c.Name, id, fmt.Sprintf("filter-%d", i)), pred))
	}

	if _, err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}
	// only predicates that fit the schema reach the catalog
	if cat != nil {
		for name, pred := range named {
			if err := cat.Save(name, pred); err != nil {
				return nil, fmt.Errorf("%s: saving filter %q: %w", c.Name, name, err)
			}
		}
	}
	log.Debug().Str("pipeline", c.Name).Int("filters", len(c.Filters)).Str("schema", s.String()).Msg("Built pipeline")
	return &Job{Name: c.Name, Schema: s, Pipeline: p, Writer: writer}, nil
}

func resolveFilter(fc FilterConfig, cat *catalog.Catalog) (predicate.FilterPredicate, error) {
	if fc.Ref != "" {
		if fc.Attribute != "" || fc.Condition != "" {
			return predicate.FilterPredicate{}, fmt.Errorf("%w: ref %q also declares a predicate", ErrInvalidFilter, fc.Ref)
		}
		if cat == nil {
			return predicate.FilterPredicate{}, fmt.Errorf("%w: ref %q needs a catalog", ErrInvalidFilter, fc.Ref)
		}
		return cat.Load(fc.Ref)
	}

	if fc.Attribute == "" || fc.Condition == "" {
		return predicate.FilterPredicate{}, fmt.Errorf("%w: attribute and condition are required", ErrInvalidFilter)
	}
	return predicate.Parse(fc.Attribute, fc.Condition, fc.Value)
}

// qualify prefixes operator ids with the pipeline name so that the metrics of different
// pipelines in one workflow do not collide.
func qualify(pipeline, id, fallback string) string {
	if id == "" {
		id = fallback
	}
	if pipeline == "" {
		return id
	}
	return pipeline + "." + id
}
