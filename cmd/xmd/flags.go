package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-xmd/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// evaluatorFlags locate the code evaluator.
type evaluatorFlags struct {
	url string
}

// compileFlags holds all flags for the compile command.
type compileFlags struct {
	common    commonFlags
	eval      evaluatorFlags
	template  string
	output    string
	overwrite bool
	remote    string
	assetPath string
	pdf       bool
	json      bool
	debug     bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common      commonFlags
	eval        evaluatorFlags
	addr        string
	concurrency int
	assetPath   string
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	eval   evaluatorFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// addEvaluatorFlags adds evaluator flags to a FlagSet.
func addEvaluatorFlags(fs *flag.FlagSet, f *evaluatorFlags) {
	fs.StringVar(&f.url, "eval-url", "", "code evaluator base URL")
}

func newCompileFlagSet(f *compileFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.StringVarP(&f.template, "template", "t", "", "html_tufte, html_slides, tex_doc or tex_tufte")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.BoolVar(&f.overwrite, "overwrite", false, "replace an existing output directory")
	fs.StringVar(&f.remote, "remote", "", "compile on the xmd server at this URL")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom template bundle directory")
	fs.BoolVar(&f.pdf, "pdf", false, "typeset the output to PDF")
	fs.BoolVar(&f.json, "json", false, "write the output image as JSON to stdout")
	fs.BoolVar(&f.debug, "debug", false, "store the document tree under __debug")
	addEvaluatorFlags(fs, &f.eval)
	addCommonFlags(fs, &f.common)
	return fs
}

func newServeFlagSet(f *serveFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringVar(&f.addr, "addr", "", "listen address (default :8080)")
	fs.IntVar(&f.concurrency, "concurrency", 0, "simultaneous compilations (0 = auto)")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom template bundle directory")
	addEvaluatorFlags(fs, &f.eval)
	addCommonFlags(fs, &f.common)
	return fs
}

func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	addEvaluatorFlags(fs, &f.eval)
	addCommonFlags(fs, &f.common)
	return fs
}

// parseFlagSet parses args, reporting parse errors to errOut.
// Returns flag.ErrHelp unwrapped for -h.
func parseFlagSet(fs *flag.FlagSet, args []string, errOut io.Writer) ([]string, error) {
	fs.SetOutput(errOut)
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return fs.Args(), nil
}

// parseCompileFlags parses compile command flags and returns positional args.
func parseCompileFlags(args []string, errOut io.Writer) (*compileFlags, []string, error) {
	f := &compileFlags{}
	rest, err := parseFlagSet(newCompileFlagSet(f), args, errOut)
	return f, rest, err
}

func parseServeFlags(args []string, errOut io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	rest, err := parseFlagSet(newServeFlagSet(f), args, errOut)
	return f, rest, err
}

func parseDoctorFlags(args []string, errOut io.Writer) (*doctorFlags, []string, error) {
	f := &doctorFlags{}
	rest, err := parseFlagSet(newDoctorFlagSet(f), args, errOut)
	return f, rest, err
}

// mergeCompileFlags applies explicitly set flags on top of cfg.
func mergeCompileFlags(f *compileFlags, cfg *config.Config) {
	if f.template != "" {
		cfg.Template = f.template
	}
	if f.overwrite {
		cfg.Output.Overwrite = true
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.eval.url != "" {
		cfg.Evaluator.URL = f.eval.url
	}
	if f.pdf {
		cfg.Typeset.Enabled = true
		cfg.Typeset.HTML = true
	}
	if f.debug {
		cfg.Debug = true
	}
}

func mergeServeFlags(f *serveFlags, cfg *config.Config) {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.eval.url != "" {
		cfg.Evaluator.URL = f.eval.url
	}
}
