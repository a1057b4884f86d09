package sources

// SourceConfig describes where a pipeline reads its tuples from.
type SourceConfig struct {
	Name           string            `koanf:"name" json:"name"`
	ConnectionType string            `koanf:"type" json:"type"`
	Config         map[string]string `koanf:"config" json:"config"`
	// Rows holds the records of an inline source.
	Rows []map[string]any `koanf:"rows" json:"rows"`
}
