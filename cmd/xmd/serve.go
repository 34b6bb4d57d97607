package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"

	xmd "github.com/alnah/go-xmd"
	"github.com/alnah/go-xmd/internal/server"
)

// runServe serves remote compilations until ctx is done.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		printServeUsage(env.Stdout)
		return nil
	}
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}

	envCfg := loadEnvConfig(env)
	name := configName(flags.common.config, envCfg)
	cfg, err := loadConfig(name, envCfg)
	if err != nil {
		return withHint(err, nil, name)
	}
	mergeServeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return withHint(err, cfg, name)
	}

	log, err := newLogger(cfg, flags.common, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if len(cfg.Evaluator.Command) > 0 {
		stop, err := launchEvaluator(ctx, cfg, log)
		if err != nil {
			return withHint(err, cfg, name)
		}
		defer stop()
	}

	c, err := xmd.NewCompiler(compilerOptions(cfg, log)...)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	srv, err := server.New(server.Options{
		Compiler:       c,
		MaxSourceBytes: cfg.Server.MaxSourceBytes,
		Concurrency:    flags.concurrency,
		Registry:       reg,
		Logger:         log,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
