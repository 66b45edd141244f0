package config

// Output formats accepted by the dump command.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config is the top-level structure of the configuration file.
type Config struct {
	Log     *LogConfig     `hcl:"log,block" json:"log,omitempty"`
	Parser  *ParserConfig  `hcl:"parser,block" json:"parser,omitempty"`
	Output  *OutputConfig  `hcl:"output,block" json:"output,omitempty"`
	Metrics *MetricsConfig `hcl:"metrics,block" json:"metrics,omitempty"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `hcl:"level,optional" json:"level"` // debug, info, warn, error
	JSON  bool   `hcl:"json,optional" json:"json"`
}

// ParserConfig configures the iptables-save parser.
type ParserConfig struct {
	// Strict rejects stray COMMIT lines and tables left open.
	Strict bool `hcl:"strict,optional" json:"strict"`
}

// OutputConfig configures structured output.
type OutputConfig struct {
	Format string `hcl:"format,optional" json:"format"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// Textfile is written in the Prometheus text format after each run.
	// Empty disables the export.
	Textfile string `hcl:"textfile,optional" json:"textfile,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing blocks and empty attributes.
func (c *Config) applyDefaults() {
	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Parser == nil {
		c.Parser = &ParserConfig{}
	}
	if c.Output == nil {
		c.Output = &OutputConfig{}
	}
	if c.Output.Format == "" {
		c.Output.Format = FormatYAML
	}
	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
}
