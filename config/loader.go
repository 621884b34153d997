package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/philipp01105/jsonlog/formatter"
)

// EnvPrefix prefixes the environment variables overriding formatter
// settings.
const EnvPrefix = "JSONLOG"

// settingKeys are the scalar keys that can be overridden from the
// environment.
var settingKeys = []string{
	"format",
	"datefmt",
	"timezone",
	"style",
	"mix_extra",
	"mix_extra_position",
	"encoder.ensure_ascii",
	"encoder.skip_circular_check",
	"encoder.allow_nan",
	"encoder.indent",
	"encoder.item_separator",
	"encoder.key_separator",
	"encoder.sort_keys",
	"encoder.skip_keys",
	"encoder.escape_html",
}

type loaderConfig struct {
	defaults        map[string]any
	sectionDefaults map[string]map[string]any
	rules           *Registry
	envFile         string
}

// Option configures Load and LoadReader.
type Option func(*loaderConfig)

// WithDefaults sets settings shared by every formatter. They have the
// lowest precedence.
func WithDefaults(settings map[string]any) Option {
	return func(c *loaderConfig) { c.defaults = settings }
}

// WithSectionDefaults sets settings for the named formatter. They
// override every shared default but not the formatter's file section.
func WithSectionDefaults(name string, settings map[string]any) Option {
	return func(c *loaderConfig) { c.sectionDefaults[strings.ToLower(name)] = settings }
}

// WithRule registers a rule usable as {name: ..., rule: <name>}.
func WithRule(name string, rule formatter.AttributeRule) Option {
	return func(c *loaderConfig) { c.rules.Register(name, rule) }
}

// WithEnvFile loads a .env file into the process environment before
// the configuration is read. Variables already set are kept.
func WithEnvFile(path string) Option {
	return func(c *loaderConfig) { c.envFile = path }
}

// Loader holds a parsed configuration file.
type Loader struct {
	v   *viper.Viper
	cfg loaderConfig
}

// Load reads a YAML, JSON or TOML file; the type is taken from the
// extension.
func Load(path string, opts ...Option) (*Loader, error) {
	l, err := newLoader(opts)
	if err != nil {
		return nil, err
	}
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, &formatter.ConfigurationError{Field: path, Reason: "cannot read config", Err: err}
	}
	return l, nil
}

// LoadReader reads configuration of the given type ("yaml", "json",
// "toml") from r.
func LoadReader(r io.Reader, configType string, opts ...Option) (*Loader, error) {
	l, err := newLoader(opts)
	if err != nil {
		return nil, err
	}
	l.v.SetConfigType(configType)
	if err := l.v.ReadConfig(r); err != nil {
		return nil, &formatter.ConfigurationError{Field: configType, Reason: "cannot read config", Err: err}
	}
	return l, nil
}

func newLoader(opts []Option) (*Loader, error) {
	cfg := loaderConfig{
		sectionDefaults: make(map[string]map[string]any),
		rules:           NewRegistry(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.envFile != "" {
		if err := godotenv.Load(cfg.envFile); err != nil {
			return nil, &formatter.ConfigurationError{Field: cfg.envFile, Reason: "cannot load env file", Err: err}
		}
	}
	return &Loader{v: viper.New(), cfg: cfg}, nil
}

// Names returns the configured formatter names in sorted order.
// Names are case-insensitive and reported in lower case.
func (l *Loader) Names() []string {
	seen := make(map[string]bool)
	for name := range l.v.GetStringMap("formatters") {
		seen[strings.ToLower(name)] = true
	}
	for name := range l.cfg.sectionDefaults {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config returns the merged and validated settings of the named
// formatter.
func (l *Loader) Config(name string) (FormatterConfig, error) {
	name = strings.ToLower(name)
	section := "formatters." + name

	fileSection := l.v.Get(section)
	progSection, hasProg := l.cfg.sectionDefaults[name]
	if fileSection == nil && !hasProg {
		return FormatterConfig{}, &formatter.ConfigurationError{Field: section, Reason: "not defined"}
	}

	sv := viper.New()
	layers := []struct {
		field string
		value any
	}{
		{"defaults (programmatic)", l.cfg.defaults},
		{"defaults", l.v.Get("defaults")},
		{section + " (programmatic)", progSection},
		{section, fileSection},
	}
	for _, layer := range layers {
		if layer.value == nil {
			continue
		}
		m, ok := layer.value.(map[string]any)
		if !ok {
			return FormatterConfig{}, &formatter.ConfigurationError{
				Field: layer.field, Reason: fmt.Sprintf("must be a mapping, got %T", layer.value),
			}
		}
		if err := sv.MergeConfigMap(copyMap(m)); err != nil {
			return FormatterConfig{}, &formatter.ConfigurationError{Field: layer.field, Reason: "cannot merge", Err: err}
		}
	}

	envBase := EnvPrefix + "_FORMATTERS_" + strings.ToUpper(name) + "_"
	for _, key := range settingKeys {
		env := envBase + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, ok := os.LookupEnv(env); ok {
			if err := sv.BindEnv(key, env); err != nil {
				return FormatterConfig{}, &formatter.ConfigurationError{Field: env, Reason: "cannot bind", Err: err}
			}
		}
	}

	return decode(section, sv.AllSettings())
}

// Options returns the formatter options of the named formatter.
func (l *Loader) Options(name string) (formatter.Options, error) {
	cfg, err := l.Config(name)
	if err != nil {
		return formatter.Options{}, err
	}
	return cfg.Options("formatters."+strings.ToLower(name), l.cfg.rules)
}

// Formatter constructs the named formatter.
func (l *Loader) Formatter(name string) (*formatter.JSONFormatter, error) {
	opts, err := l.Options(name)
	if err != nil {
		return nil, err
	}
	f, err := formatter.NewJSONFormatter(opts)
	if err != nil {
		return nil, fmt.Errorf("formatter %q: %w", name, err)
	}
	return f, nil
}

// Formatters constructs every configured formatter. All construction
// errors are reported together.
func (l *Loader) Formatters() (map[string]*formatter.JSONFormatter, error) {
	out := make(map[string]*formatter.JSONFormatter)
	var errs error
	for _, name := range l.Names() {
		f, err := l.Formatter(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out[name] = f
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// copyMap deep-copies nested maps and lists. Viper merges nested maps in
// place, so layers are copied to keep the loaded file intact.
func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
