package config

import (
	"time"

	"github.com/vyrodovalexey/avamap/internal/observability"
	"github.com/vyrodovalexey/avamap/internal/rules"
)

// Document identity.
const (
	APIVersionPrefix = "avamap.io/"
	APIVersion       = APIVersionPrefix + "v1"
	Kind             = "RuleSet"
)

// Defaults for engine settings.
const (
	DefaultRegexCacheSize = 256
	DefaultRegexTimeout   = time.Second
	DefaultCulture        = "invariant"
	DefaultMaxIncludes    = 10
)

// Config is a RuleSet document.
type Config struct {
	APIVersion string   `yaml:"apiVersion" json:"apiVersion"`
	Kind       string   `yaml:"kind" json:"kind"`
	Metadata   Metadata `yaml:"metadata" json:"metadata"`
	Spec       Spec     `yaml:"spec" json:"spec"`
}

// Metadata names a rule set.
type Metadata struct {
	Name        string            `yaml:"name" json:"name"`
	Labels      map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty" json:"annotations,omitempty"`
}

// Spec holds the settings and rules of a rule set.
type Spec struct {
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Engine  EngineConfig  `yaml:"engine" json:"engine"`

	// Include lists rule files whose rules are appended after Rules, in
	// order. Relative paths resolve against the including file.
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`

	Rules []rules.Rule `yaml:"rules" json:"rules"`
}

// LoggingConfig configures the logger an embedder builds for the engine.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" koanf:"level"`
	Format string `yaml:"format" json:"format" koanf:"format"`
	Output string `yaml:"output" json:"output" koanf:"output"`
}

// EngineConfig configures the built-in operators.
type EngineConfig struct {
	// RegexCacheSize bounds the compiled replace patterns kept. Zero
	// disables caching.
	RegexCacheSize int `yaml:"regexCacheSize" json:"regexCacheSize" koanf:"regex_cache_size"`

	// RegexTimeout bounds a single regex replace. Zero means no limit.
	RegexTimeout Duration `yaml:"regexTimeout" json:"regexTimeout" koanf:"regex_timeout"`

	// Culture is the default culture of number and format: "invariant",
	// "current" or a locale name such as "de-DE".
	Culture string `yaml:"culture" json:"culture" koanf:"culture"`

	// EnableJoinFields registers the join_fields operator.
	EnableJoinFields bool `yaml:"enableJoinFields" json:"enableJoinFields" koanf:"enable_join_fields"`
}

// DefaultConfig returns a document with default settings and no rules.
func DefaultConfig() *Config {
	return &Config{
		APIVersion: APIVersion,
		Kind:       Kind,
		Spec: Spec{
			Logging: DefaultLoggingConfig(),
			Engine:  DefaultEngineConfig(),
		},
	}
}

// DefaultLoggingConfig returns the default logging settings.
func DefaultLoggingConfig() LoggingConfig {
	def := observability.DefaultLogConfig()
	return LoggingConfig{
		Level:  def.Level,
		Format: def.Format,
		Output: def.Output,
	}
}

// DefaultEngineConfig returns the default engine settings.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RegexCacheSize: DefaultRegexCacheSize,
		RegexTimeout:   Duration(DefaultRegexTimeout),
		Culture:        DefaultCulture,
	}
}

// LogConfig converts the logging settings for observability.NewLogger.
func (c LoggingConfig) LogConfig() observability.LogConfig {
	out := observability.DefaultLogConfig()
	if c.Level != "" {
		out.Level = c.Level
	}
	if c.Format != "" {
		out.Format = c.Format
	}
	if c.Output != "" {
		out.Output = c.Output
	}
	return out
}
