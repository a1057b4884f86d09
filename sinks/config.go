package sinks

// SinkConfig describes the visualization sink of a pipeline and where its buffered
// tuples are written after the run.
type SinkConfig struct {
	Name           string            `koanf:"name" json:"name"`
	ChartType      string            `koanf:"chart_type" json:"chart_type"`
	ConnectionType string            `koanf:"type" json:"type"`
	Config         map[string]string `koanf:"config" json:"config"`
}
