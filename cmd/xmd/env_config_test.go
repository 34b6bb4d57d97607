package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-xmd/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	env, _, _ := testEnv(map[string]string{
		"XMD_CONFIG":        "work",
		"XMD_TEMPLATE":      "tex_doc",
		"XMD_OUTPUT_DIR":    "/out",
		"XMD_EVALUATOR_URL": "http://eval:5000",
		"XMD_ASSET_PATH":    "/assets",
		"XMD_SERVER_ADDR":   ":9090",
		"XMD_LOG_LEVEL":     "debug",
		"XMD_LOG_FORMAT":    "json",
	})

	want := &envConfig{
		ConfigPath:   "work",
		Template:     "tex_doc",
		OutputDir:    "/out",
		EvaluatorURL: "http://eval:5000",
		AssetPath:    "/assets",
		ServerAddr:   ":9090",
		LogLevel:     "debug",
		LogFormat:    "json",
	}
	if diff := cmp.Diff(want, loadEnvConfig(env)); diff != "" {
		t.Errorf("loadEnvConfig() mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env values override the file, empty values do not
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Template = "html_slides"
	cfg.Log.Level = "warn"

	applyEnvConfig(&envConfig{Template: "tex_tufte", EvaluatorURL: "http://eval:5000"}, cfg)

	if cfg.Template != "tex_tufte" {
		t.Errorf("Template = %q, want tex_tufte", cfg.Template)
	}
	if cfg.Evaluator.URL != "http://eval:5000" {
		t.Errorf("Evaluator.URL = %q", cfg.Evaluator.URL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want the file value warn", cfg.Log.Level)
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"XMD_CONFIG=work",
		"XMD_OUTPUT=out",
		"XMDX=1",
		"PATH=/bin",
	})

	got := buf.String()
	if !strings.Contains(got, "XMD_OUTPUT ") {
		t.Errorf("warnings = %q, want XMD_OUTPUT", got)
	}
	if strings.Count(got, "warning:") != 1 {
		t.Errorf("warnings = %q, want exactly one", got)
	}
}
