package sinks

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tarungka/sieve/stream"
)

// New creates the writer for config. An empty type writes to the console.
func New(config SinkConfig) (Writer, error) {
	sinkType := config.ConnectionType
	log.Debug().Msgf("Creating writer for sink: %s", sinkType)
	switch sinkType {
	case "", "console":
		return NewConsoleWriter(nil), nil
	case "file":
		if config.Config["file_path"] == "" {
			log.Error().Msg("Missing file_path in config")
			return nil, fmt.Errorf("missing file_path")
		}
		return NewFileWriter(config.Config["file_path"]), nil
	default:
		return nil, fmt.Errorf("unknown sink type: %s", sinkType)
	}
}

// NewVisualizationSink builds the terminal stage for config. The chart type defaults to
// a table.
func NewVisualizationSink(config SinkConfig) *stream.VisualizationSink {
	id := config.Name
	if id == "" {
		id = "sink"
	}
	chartType := config.ChartType
	if chartType == "" {
		chartType = stream.ChartTable
	}
	return stream.NewVisualizationSink(id, chartType)
}
