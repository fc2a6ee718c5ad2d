package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/vyrodovalexey/avamap/internal/rules"
)

// EnvPrefix prefixes environment overrides. AVAMAP_ENGINE__CULTURE=de-DE
// sets spec.engine.culture; a double underscore separates levels.
const EnvPrefix = "AVAMAP_"

// Include errors.
var (
	// ErrIncludeCycle indicates a file that includes itself, directly or not.
	ErrIncludeCycle = errors.New("circular include")

	// ErrTooManyIncludes indicates that the include budget was exhausted.
	ErrTooManyIncludes = errors.New("too many includes")
)

// envVarPattern matches $$, ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\$|\$\{([^}:]+)(?::-([^}]*))?\}`)

// Loader handles configuration loading from files and readers.
type Loader struct {
	maxIncludes  int
	envPrefix    string
	loadedFiles  map[string]bool
	includeCount int
	files        []string
}

// LoaderOption is a functional option for configuring the loader.
type LoaderOption func(*Loader)

// WithMaxIncludes bounds the number of included files per load.
func WithMaxIncludes(n int) LoaderOption {
	return func(l *Loader) {
		l.maxIncludes = n
	}
}

// WithEnvPrefix sets the prefix of environment overrides. An empty prefix
// disables them.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		maxIncludes: DefaultMaxIncludes,
		envPrefix:   EnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadConfig loads a document from a file path with default loader settings.
func LoadConfig(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// LoadConfigFromReader loads a document from r with default loader
// settings. Relative includes resolve against the working directory.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	return NewLoader().LoadFromReader(r)
}

// Load loads a document from a file path.
func (l *Loader) Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath) //nolint:gosec // path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	l.reset()
	l.loadedFiles[absPath] = true
	l.files = append(l.files, absPath)

	cfg, err := l.parse(substituteEnvVars(string(data)), filepath.Dir(absPath))
	if err != nil {
		return nil, err
	}
	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader loads a document from r.
func (l *Loader) LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	l.reset()
	cfg, err := l.parse(substituteEnvVars(string(data)), wd)
	if err != nil {
		return nil, err
	}
	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Files returns the absolute paths read by the last load, the document
// first and then its includes.
func (l *Loader) Files() []string {
	return append([]string(nil), l.files...)
}

func (l *Loader) reset() {
	l.loadedFiles = make(map[string]bool)
	l.includeCount = 0
	l.files = nil
}

// parse decodes a substituted document over the defaults and appends the
// rules of its includes.
func (l *Loader) parse(content, baseDir string) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for _, inc := range cfg.Spec.Include {
		includePath := inc
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}

		included, err := l.loadRules(includePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load include %s: %w", inc, err)
		}
		cfg.Spec.Rules = append(cfg.Spec.Rules, included...)
	}

	return cfg, nil
}

// loadRules reads an included file: either a bare rule list or a RuleSet
// document, whose own includes are followed.
func (l *Loader) loadRules(path string) ([]rules.Rule, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	if l.loadedFiles[absPath] {
		return nil, fmt.Errorf("%w: %s", ErrIncludeCycle, absPath)
	}
	if l.includeCount >= l.maxIncludes {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyIncludes, l.maxIncludes)
	}

	l.loadedFiles[absPath] = true
	defer delete(l.loadedFiles, absPath)
	l.includeCount++
	l.files = append(l.files, absPath)

	data, err := os.ReadFile(absPath) //nolint:gosec // path checked against the include stack
	if err != nil {
		return nil, fmt.Errorf("failed to read include %s: %w", path, err)
	}
	content := substituteEnvVars(string(data))

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(content), &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		return rules.ParseYAML([]byte(content))
	}

	doc, err := l.parse(content, filepath.Dir(absPath))
	if err != nil {
		return nil, err
	}
	return doc.Spec.Rules, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} with environment
// values and $$ with a literal $.
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		if match == "$$" {
			return "$"
		}

		sub := envVarPattern.FindStringSubmatch(match)
		if v, ok := os.LookupEnv(sub[1]); ok {
			return v
		}
		return sub[2]
	})
}

// envSettings is the part of a document environment overrides may touch.
type envSettings struct {
	Logging LoggingConfig `koanf:"logging"`
	Engine  EngineConfig  `koanf:"engine"`
}

// applyEnvOverrides layers prefixed environment variables over the logging
// and engine settings of cfg.
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	if l.envPrefix == "" {
		return nil
	}

	k := koanf.New(".")
	prefix := l.envPrefix
	if err := k.Load(env.Provider(prefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", ".")
	}), nil); err != nil {
		return fmt.Errorf("failed to load environment overrides: %w", err)
	}
	if len(k.Keys()) == 0 {
		return nil
	}

	settings := envSettings{Logging: cfg.Spec.Logging, Engine: cfg.Spec.Engine}
	err := k.UnmarshalWithConf("", &settings, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
			WeaklyTypedInput: true,
			Result:           &settings,
		},
	})
	if err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}

	cfg.Spec.Logging = settings.Logging
	cfg.Spec.Engine = settings.Engine
	return nil
}
