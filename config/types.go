package config

// Config represents the complete configuration structure
type Config struct {
	URL            string        `mapstructure:"url"`
	APIKey         string        `mapstructure:"api_key"`
	DefaultTimeout string        `mapstructure:"default_timeout"`
	InboxID        string        `mapstructure:"inbox_id"`
	Output         OutputConfig  `mapstructure:"output"`
	Filters        FilterConfig  `mapstructure:"filters"`
	Logging        LoggingConfig `mapstructure:"logging"`
}

// OutputConfig contains defaults for the file commands
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	Spinner bool   `mapstructure:"spinner"`
}

// FilterConfig maps filter names to document filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
