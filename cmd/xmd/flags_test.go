package main

import (
	"errors"
	"io"
	"testing"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-xmd/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseCompileFlags
// ---------------------------------------------------------------------------

func TestParseCompileFlags(t *testing.T) {
	t.Parallel()

	f, rest, err := parseCompileFlags([]string{
		"doc.xmd", "-t", "tex_doc", "-o", "out", "--overwrite",
		"--eval-url", "http://eval:5000", "--remote", "http://xmd:8080",
		"--pdf", "--debug", "-c", "work", "-v",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseCompileFlags() error = %v", err)
	}
	if len(rest) != 1 || rest[0] != "doc.xmd" {
		t.Errorf("positional = %v, want [doc.xmd]", rest)
	}
	if f.template != "tex_doc" || f.output != "out" || !f.overwrite || !f.pdf || !f.debug {
		t.Errorf("flags = %+v", f)
	}
	if f.eval.url != "http://eval:5000" || f.remote != "http://xmd:8080" {
		t.Errorf("urls = %q, %q", f.eval.url, f.remote)
	}
	if f.common.config != "work" || !f.common.verbose || f.common.quiet {
		t.Errorf("common = %+v", f.common)
	}
}

func TestParseCompileFlags_Errors(t *testing.T) {
	t.Parallel()

	if _, _, err := parseCompileFlags([]string{"--bogus"}, io.Discard); !errors.Is(err, ErrUsage) {
		t.Errorf("unknown flag error = %v, want ErrUsage", err)
	}
	if _, _, err := parseCompileFlags([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("-h error = %v, want flag.ErrHelp", err)
	}
}

// ---------------------------------------------------------------------------
// TestMergeCompileFlags - Set flags override config, unset flags keep it
// ---------------------------------------------------------------------------

func TestMergeCompileFlags(t *testing.T) {
	t.Parallel()

	t.Run("set flags win", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		mergeCompileFlags(&compileFlags{
			template:  "tex_tufte",
			overwrite: true,
			assetPath: "/assets",
			eval:      evaluatorFlags{url: "http://eval:5000"},
			pdf:       true,
			debug:     true,
		}, cfg)

		if cfg.Template != "tex_tufte" || !cfg.Output.Overwrite || cfg.Assets.BasePath != "/assets" {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.Evaluator.URL != "http://eval:5000" || !cfg.Typeset.Enabled || !cfg.Typeset.HTML || !cfg.Debug {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("unset flags keep config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Template = "html_slides"
		cfg.Output.Overwrite = true
		mergeCompileFlags(&compileFlags{}, cfg)

		if cfg.Template != "html_slides" || !cfg.Output.Overwrite || cfg.Typeset.Enabled {
			t.Errorf("cfg = %+v", cfg)
		}
	})
}

func TestMergeServeFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	mergeServeFlags(&serveFlags{addr: "127.0.0.1:9000"}, cfg)
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Evaluator.URL != config.DefaultConfig().Evaluator.URL {
		t.Errorf("Evaluator.URL = %q, want the default", cfg.Evaluator.URL)
	}
}
