package main

import (
	"io"

	"go.uber.org/zap"

	xmd "github.com/alnah/go-xmd"
	"github.com/alnah/go-xmd/internal/config"
	"github.com/alnah/go-xmd/internal/logging"
)

// loadConfig resolves the configuration: file (when named) then env vars.
// Flags are merged by the caller, which validates the result.
func loadConfig(name string, envCfg *envConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, err
		}
	}
	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// configName picks the -c flag over XMD_CONFIG.
func configName(flagValue string, envCfg *envConfig) string {
	if flagValue != "" {
		return flagValue
	}
	return envCfg.ConfigPath
}

// newLogger builds the command logger. -v forces debug, -q forces error.
func newLogger(cfg *config.Config, f commonFlags, w io.Writer) (*zap.SugaredLogger, error) {
	level := cfg.Log.Level
	switch {
	case f.verbose:
		level = "debug"
	case f.quiet:
		level = "error"
	}
	return logging.New(level, cfg.Log.Format, w)
}

// compilerOptions maps the configuration onto compiler options.
func compilerOptions(cfg *config.Config, log *zap.SugaredLogger) []xmd.Option {
	opts := []xmd.Option{
		xmd.WithPing(cfg.Evaluator.PingAttempts, cfg.Evaluator.PingDelay),
		xmd.WithDebug(cfg.Debug),
		xmd.WithLogger(log),
	}
	if cfg.Evaluator.URL != "" {
		opts = append(opts, xmd.WithEvaluatorURL(cfg.Evaluator.URL))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, xmd.WithAssetPath(cfg.Assets.BasePath))
	}
	return opts
}
