package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-xmd/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath   string // XMD_CONFIG: config file name or path
	Template     string // XMD_TEMPLATE: default template
	OutputDir    string // XMD_OUTPUT_DIR: parent directory of outputs
	EvaluatorURL string // XMD_EVALUATOR_URL: code evaluator base URL
	AssetPath    string // XMD_ASSET_PATH: custom template bundles
	ServerAddr   string // XMD_SERVER_ADDR: listen address of "xmd serve"
	LogLevel     string // XMD_LOG_LEVEL: debug, info, warn, error
	LogFormat    string // XMD_LOG_FORMAT: console, json
}

// knownEnvVars lists valid XMD_* environment variables.
var knownEnvVars = map[string]bool{
	"XMD_CONFIG":        true,
	"XMD_TEMPLATE":      true,
	"XMD_OUTPUT_DIR":    true,
	"XMD_EVALUATOR_URL": true,
	"XMD_ASSET_PATH":    true,
	"XMD_SERVER_ADDR":   true,
	"XMD_LOG_LEVEL":     true,
	"XMD_LOG_FORMAT":    true,
	"XMD_CONTAINER":     true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig(env *Environment) *envConfig {
	return &envConfig{
		ConfigPath:   env.getenv("XMD_CONFIG"),
		Template:     env.getenv("XMD_TEMPLATE"),
		OutputDir:    env.getenv("XMD_OUTPUT_DIR"),
		EvaluatorURL: env.getenv("XMD_EVALUATOR_URL"),
		AssetPath:    env.getenv("XMD_ASSET_PATH"),
		ServerAddr:   env.getenv("XMD_SERVER_ADDR"),
		LogLevel:     env.getenv("XMD_LOG_LEVEL"),
		LogFormat:    env.getenv("XMD_LOG_FORMAT"),
	}
}

// warnUnknownEnvVars prints a warning for unrecognized XMD_* variables,
// such as XMD_TEMPLTE.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, "XMD_") {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values on top of the config file.
// Precedence: CLI flags > env vars > config file > defaults
// (flags are applied afterwards by mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Template != "" {
		cfg.Template = env.Template
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.EvaluatorURL != "" {
		cfg.Evaluator.URL = env.EvaluatorURL
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.ServerAddr != "" {
		cfg.Server.Addr = env.ServerAddr
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
