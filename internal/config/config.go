// Package config loads the YAML configuration of the xmd command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-xmd/internal/codeeval"
	"github.com/alnah/go-xmd/internal/fileutil"
	"github.com/alnah/go-xmd/internal/logging"
	"github.com/alnah/go-xmd/internal/render"
	"github.com/alnah/go-xmd/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// userConfigDir is the directory below os.UserConfigDir searched by name.
const userConfigDir = "go-xmd"

// Defaults.
const (
	DefaultTemplate       = render.HTMLTufte
	DefaultTypesetCommand = "pdflatex"
	DefaultServerAddr     = ":8080"
	DefaultMaxSourceBytes = 10 << 20
	DefaultLogLevel       = "info"
)

// Config holds all configuration of the command.
type Config struct {
	Template  string          `yaml:"template"`
	Output    OutputConfig    `yaml:"output"`
	Assets    AssetsConfig    `yaml:"assets"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Typeset   TypesetConfig   `yaml:"typeset"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Debug     bool            `yaml:"debug"`
}

// OutputConfig defines where compiled documents are written.
type OutputConfig struct {
	Dir       string `yaml:"dir"` // empty: next to the source
	Overwrite bool   `yaml:"overwrite"`
}

// AssetsConfig points at a directory of template bundles overriding the
// embedded ones.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"`
}

// EvaluatorConfig locates the code evaluator.
type EvaluatorConfig struct {
	URL          string        `yaml:"url"`
	PingAttempts int           `yaml:"pingAttempts"`
	PingDelay    time.Duration `yaml:"pingDelay"`
	Command      []string      `yaml:"command"` // optional launcher argv
}

// TypesetConfig controls the PDF post-processors.
type TypesetConfig struct {
	Enabled bool   `yaml:"enabled"`
	Command string `yaml:"command"`
	HTML    bool   `yaml:"html"` // print HTML templates with headless Chrome
}

// ServerConfig configures "xmd serve".
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	MaxSourceBytes int64  `yaml:"maxSourceBytes"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Template: string(DefaultTemplate),
		Evaluator: EvaluatorConfig{
			URL:          codeeval.DefaultURL,
			PingAttempts: codeeval.DefaultPingAttempts,
			PingDelay:    codeeval.DefaultPingDelay,
		},
		Typeset: TypesetConfig{Command: DefaultTypesetCommand},
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			MaxSourceBytes: DefaultMaxSourceBytes,
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: logging.FormatConsole},
	}
}

// Validate checks every field with a constrained domain.
func (c *Config) Validate() error {
	if _, err := render.ParseTemplate(c.Template); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	if c.Evaluator.URL != "" && !fileutil.IsURL(c.Evaluator.URL) {
		return fmt.Errorf("%w: evaluator.url %q must start with http:// or https://", ErrInvalidValue, c.Evaluator.URL)
	}
	if c.Evaluator.PingAttempts < 1 {
		return fmt.Errorf("%w: evaluator.pingAttempts must be positive, got %d", ErrInvalidValue, c.Evaluator.PingAttempts)
	}
	if c.Evaluator.PingDelay <= 0 {
		return fmt.Errorf("%w: evaluator.pingDelay must be positive, got %s", ErrInvalidValue, c.Evaluator.PingDelay)
	}
	if c.Typeset.Enabled && strings.TrimSpace(c.Typeset.Command) == "" {
		return fmt.Errorf("%w: typeset.command is required when typeset is enabled", ErrInvalidValue)
	}
	if c.Server.MaxSourceBytes <= 0 {
		return fmt.Errorf("%w: server.maxSourceBytes must be positive, got %d", ErrInvalidValue, c.Server.MaxSourceBytes)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q (must be %s or %s)", ErrInvalidValue, c.Log.Format, logging.FormatConsole, logging.FormatJSON)
	}
	return nil
}

// LoadConfig loads a configuration by file path, or by name from
// ./name.yaml, ./name.yml, then the user config directory. Keys missing from
// the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(f, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchPaths lists the files LoadConfig tries for a name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, userConfigDir, name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
