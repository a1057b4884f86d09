package sources

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
	"github.com/tarungka/sieve/stream"
)

// SourceCreator builds a leaf operator that produces tuples bound to s.
type SourceCreator func(config SourceConfig, s *schema.Schema) (stream.Operator, error)

// SourceFactory creates sources based on configuration
type SourceFactory struct {
	mu       sync.RWMutex
	creators map[string]SourceCreator
}

var defaultFactory = &SourceFactory{
	creators: make(map[string]SourceCreator),
}

func init() {
	RegisterSource("jsonl", newJSONLines)
	RegisterSource("inline", newInline)
}

// RegisterSource registers a new source type with the default factory. Registering a
// name again replaces the previous creator.
func RegisterSource(name string, creator SourceCreator) {
	defaultFactory.mu.Lock()
	defer defaultFactory.mu.Unlock()
	defaultFactory.creators[name] = creator
}

// New creates the source described by config.
func New(config SourceConfig, s *schema.Schema) (stream.Operator, error) {
	defaultFactory.mu.RLock()
	creator, exists := defaultFactory.creators[config.ConnectionType]
	defaultFactory.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown source type: %q", config.ConnectionType)
	}
	log.Debug().Msgf("Creating source %q of type %s", config.Name, config.ConnectionType)
	return creator(config, s)
}

func sourceID(config SourceConfig) string {
	if config.Name != "" {
		return config.Name
	}
	return "source"
}

func newJSONLines(config SourceConfig, s *schema.Schema) (stream.Operator, error) {
	path := config.Config["file_path"]
	if path == "" {
		log.Error().Msg("Missing file_path in config")
		return nil, fmt.Errorf("jsonl source: missing file_path")
	}
	return NewJSONLinesSource(sourceID(config), path, s), nil
}

func newInline(config SourceConfig, s *schema.Schema) (stream.Operator, error) {
	tuples := make([]*tuple.Tuple, 0, len(config.Rows))
	for i, row := range config.Rows {
		t, err := DecodeRow(s, row)
		if err != nil {
			return nil, fmt.Errorf("inline source: row %d: %w", i, err)
		}
		tuples = append(tuples, t)
	}
	src, err := stream.NewTupleSource(sourceID(config), s, tuples...)
	if err != nil {
		return nil, err
	}
	return src, nil
}
