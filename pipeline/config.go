package pipeline

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	"github.com/tarungka/sieve/internal/catalog"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/sinks"
	"github.com/tarungka/sieve/sources"
)

var (
	// ErrNoPipelines is returned when a workflow declares nothing to run.
	ErrNoPipelines = errors.New("workflow declares no pipelines")

	// ErrInvalidFilter is returned for a filter entry that is neither a reference nor a
	// complete predicate.
	ErrInvalidFilter = errors.New("invalid filter")
)

// AttributeConfig is one schema entry; Type is an attribute type name such as "long".
type AttributeConfig struct {
	Name string `koanf:"name" json:"name"`
	Type string `koanf:"type" json:"type"`
}

// FilterConfig is either an inline predicate or a reference to one in the catalog. An
// inline predicate with a Name is also saved to the catalog under that name.
type FilterConfig struct {
	Name      string `koanf:"name" json:"name"`
	Attribute string `koanf:"attribute" json:"attribute"`
	Condition string `koanf:"condition" json:"condition"`
	Value     string `koanf:"value" json:"value"`
	Ref       string `koanf:"ref" json:"ref"`
}

// Config describes one linear pipeline: source, filters in order, visualization sink.
type Config struct {
	Name    string               `koanf:"name" json:"name"`
	Schema  []AttributeConfig    `koanf:"schema" json:"schema"`
	Source  sources.SourceConfig `koanf:"source" json:"source"`
	Filters []FilterConfig       `koanf:"filters" json:"filters"`
	Sink    sinks.SinkConfig     `koanf:"sink" json:"sink"`
}

// WorkflowConfig is the whole workflow file.
type WorkflowConfig struct {
	Pipelines []Config       `koanf:"pipelines" json:"pipelines"`
	Catalog   catalog.Config `koanf:"catalog" json:"catalog"`
}

// Load reads the workflow from ko. A file either lists its pipelines under "pipelines"
// or describes a single pipeline at the top level. Pipelines run in the listed order.
func Load(ko *koanf.Koanf) (*WorkflowConfig, error) {
	var wf WorkflowConfig
	if err := ko.Unmarshal("catalog", &wf.Catalog); err != nil {
		log.Err(err).Msg("Error when un-marshaling catalog")
		return nil, err
	}

	if ko.Exists("pipelines") {
		if err := ko.Unmarshal("pipelines", &wf.Pipelines); err != nil {
			log.Err(err).Msg("Error when un-marshaling pipelines")
			return nil, err
		}
	} else if ko.Exists("source") {
		var single Config
		if err := ko.Unmarshal("", &single); err != nil {
			log.Err(err).Msg("Error when un-marshaling pipeline")
			return nil, err
		}
		wf.Pipelines = []Config{single}
	}
	if len(wf.Pipelines) == 0 {
		return nil, ErrNoPipelines
	}
	for i := range wf.Pipelines {
		if wf.Pipelines[i].Name == "" {
			wf.Pipelines[i].Name = fmt.Sprintf("pipeline-%d", i)
		}
	}
	log.Debug().Int("pipelines", len(wf.Pipelines)).Msg("Loaded workflow")
	return &wf, nil
}

// BuildSchema converts the configured attributes into a schema.
func (c Config) BuildSchema() (*schema.Schema, error) {
	attrs := make([]schema.Attribute, 0, len(c.Schema))
	for _, a := range c.Schema {
		t, err := schema.ParseAttributeType(a.Type)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		attrs = append(attrs, schema.Attribute{Name: a.Name, Type: t})
	}
	return schema.New(attrs...)
}
