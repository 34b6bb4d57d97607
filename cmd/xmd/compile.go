package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	xmd "github.com/alnah/go-xmd"
	"github.com/alnah/go-xmd/internal/codeeval"
	"github.com/alnah/go-xmd/internal/config"
	"github.com/alnah/go-xmd/internal/image"
	"github.com/alnah/go-xmd/internal/typeset"
)

// runCompile compiles one document and writes its output image.
func runCompile(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseCompileFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		printCompileUsage(env.Stdout)
		return nil
	}
	if err != nil {
		return err
	}
	switch len(positional) {
	case 0:
		return ErrNoInput
	case 1:
	default:
		return fmt.Errorf("%w: compile takes one file, got %d", ErrUsage, len(positional))
	}

	envCfg := loadEnvConfig(env)
	name := configName(flags.common.config, envCfg)
	cfg, err := loadConfig(name, envCfg)
	if err != nil {
		return withHint(err, nil, name)
	}
	mergeCompileFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return withHint(err, cfg, name)
	}

	log, err := newLogger(cfg, flags.common, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	return withHint(compileFile(ctx, positional[0], flags, cfg, log, env), cfg, name)
}

func compileFile(ctx context.Context, srcPath string, flags *compileFlags, cfg *config.Config, log *zap.SugaredLogger, env *Environment) error {
	start := env.now()
	tmpl, err := xmd.ParseTemplate(cfg.Template)
	if err != nil {
		return err
	}

	files, name, err := xmd.BuildInputImage(srcPath)
	if err != nil {
		return err
	}
	source, _ := files.Get(name)

	var (
		s      xmd.Serializer
		outDir string
	)
	if flags.json {
		s = &xmd.PayloadSerializer{W: env.Stdout}
	} else {
		outDir = resolveOutputDir(srcPath, flags.output, cfg, tmpl)
		s = &xmd.DirSerializer{Dir: outDir, Overwrite: cfg.Output.Overwrite}
	}

	in := xmd.Input{Source: source, Name: name, Files: files, Template: tmpl}
	if flags.remote != "" {
		err = compileRemote(ctx, flags.remote, in, s, log)
	} else {
		err = compileLocal(ctx, in, s, cfg, flags.common.verbose, log)
	}
	if err != nil {
		return err
	}

	if flags.json {
		return nil
	}
	var pdf string
	if cfg.Typeset.Enabled && (!tmpl.IsHTML() || cfg.Typeset.HTML) {
		if pdf, err = typesetOutput(ctx, tmpl, outDir, cfg, log); err != nil {
			return err
		}
	}

	if !flags.common.quiet {
		elapsed := env.now().Sub(start).Round(time.Millisecond)
		fmt.Fprintf(env.Stdout, "%s -> %s (%s, %s)\n", srcPath, outDir, tmpl, elapsed)
		if pdf != "" {
			fmt.Fprintf(env.Stdout, "PDF: %s\n", pdf)
		}
	}
	return nil
}

// resolveOutputDir returns the -o directory as is, otherwise
// <source>_<template> inside output.dir or next to the source.
func resolveOutputDir(srcPath, flagOutput string, cfg *config.Config, tmpl xmd.Template) string {
	if flagOutput != "" {
		return flagOutput
	}
	parent := cfg.Output.Dir
	if parent == "" {
		parent = filepath.Dir(srcPath)
	}
	return filepath.Join(parent, image.OutputDirName(filepath.Base(srcPath), string(tmpl)))
}

func compileLocal(ctx context.Context, in xmd.Input, s xmd.Serializer, cfg *config.Config, verbose bool, log *zap.SugaredLogger) error {
	if len(cfg.Evaluator.Command) > 0 {
		stop, err := launchEvaluator(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	opts := compilerOptions(cfg, log)
	if verbose {
		opts = append(opts, xmd.WithProgress(func(done, total int) {
			log.Debugw("rendering", "done", done, "total", total)
		}))
	}
	c, err := xmd.NewCompiler(opts...)
	if err != nil {
		return err
	}
	_, err = c.CompileTo(ctx, in, s)
	return err
}

// compileRemote compiles on an xmd server. A partial output returned with a
// generation error is still serialized.
func compileRemote(ctx context.Context, url string, in xmd.Input, s xmd.Serializer, log *zap.SugaredLogger) error {
	out, err := xmd.NewRemoteClient(url).Compile(ctx, in)
	if out == nil {
		return err
	}
	if err != nil {
		log.Errorw("remote generation failed, serializing partial output", "server", url, "error", err)
	}
	if serr := s.Serialize(context.WithoutCancel(ctx), out); serr != nil {
		return errors.Join(err, fmt.Errorf("%w: %w", ErrWriteOutput, serr))
	}
	return err
}

// launchEvaluator starts evaluator.command and waits for it to answer.
// The returned func stops it.
func launchEvaluator(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (func(), error) {
	url := cfg.Evaluator.URL
	if url == "" {
		url = codeeval.DefaultURL
		cfg.Evaluator.URL = url
	}
	client := codeeval.New(url,
		codeeval.WithPing(cfg.Evaluator.PingAttempts, cfg.Evaluator.PingDelay),
		codeeval.WithLogger(log))
	l := codeeval.NewLauncher(cfg.Evaluator.Command, log)
	if err := l.Start(ctx, client); err != nil {
		if out := l.Close(); out != "" {
			log.Debugw("evaluator output", "output", out)
		}
		return nil, err
	}
	return func() {
		if out := l.Close(); out != "" {
			log.Debugw("evaluator output", "output", out)
		}
	}, nil
}

func typesetOutput(ctx context.Context, tmpl xmd.Template, dir string, cfg *config.Config, log *zap.SugaredLogger) (string, error) {
	ts := typeset.For(tmpl, cfg.Typeset.Command, log)
	defer func() { _ = ts.Close() }()
	return ts.Typeset(ctx, dir)
}
