package main

// Notes:
// - runMain: we test command dispatch and exit codes through observable
//   stdout/stderr. Compilation itself is covered in compile_test.go.
// - isVerbose: flag detection before parsing.

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// testEnv returns an environment writing to buffers with the given
// XMD_* variables.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    time.Now,
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return vars[k] },
	}
	return env, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// TestRunMain - Main entry point exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantCode     int
		wantInStdout []string
		wantInStderr []string
	}{
		{
			name:         "no args shows usage and exits with ExitUsage",
			args:         []string{"xmd"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"Usage: xmd"},
		},
		{
			name:         "version command exits 0",
			args:         []string{"xmd", "version"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"xmd " + Version},
		},
		{
			name:         "help command exits 0",
			args:         []string{"xmd", "help"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: xmd", "Commands:", "compile", "serve"},
		},
		{
			name:         "help compile shows compile help",
			args:         []string{"xmd", "help", "compile"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: xmd compile", "--template"},
		},
		{
			name:         "help unknown command",
			args:         []string{"xmd", "help", "nope"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"Unknown command: nope"},
		},
		{
			name:         "compile -h prints compile help",
			args:         []string{"xmd", "compile", "-h"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: xmd compile"},
		},
		{
			name:         "unknown command exits with ExitUsage",
			args:         []string{"xmd", "unknown"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unknown command: unknown"},
		},
		{
			name:         "compile without file",
			args:         []string{"xmd", "compile"},
			wantCode:     ExitIO,
			wantInStderr: []string{"no input file specified"},
		},
		{
			name:         "compile with unknown flag",
			args:         []string{"xmd", "compile", "--nope", "doc.xmd"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"invalid usage"},
		},
		{
			name:         "compile with two files",
			args:         []string{"xmd", "compile", "a.xmd", "b.xmd"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"compile takes one file"},
		},
		{
			name:         "serve with an argument",
			args:         []string{"xmd", "serve", "extra"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"serve takes no arguments"},
		},
		{
			name:         "completion without shell prints usage",
			args:         []string{"xmd", "completion"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: xmd completion"},
		},
		{
			name:         "completion with unknown shell",
			args:         []string{"xmd", "completion", "tcsh"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unsupported shell"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil)
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d\nstderr: %s", code, tt.wantCode, stderr)
			}
			for _, want := range tt.wantInStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout should contain %q, got %q", want, stdout)
				}
			}
			for _, want := range tt.wantInStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr should contain %q, got %q", want, stderr)
				}
			}
		})
	}
}

func TestRunMain_WarnsUnknownEnvVars(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv(nil)
	env.Environ = func() []string { return []string{"XMD_TEMPLTE=tex_doc", "XMD_TEMPLATE=tex_doc", "HOME=/root"} }

	runMain([]string{"xmd", "version"}, env)

	if !strings.Contains(stderr.String(), "unknown environment variable XMD_TEMPLTE") {
		t.Errorf("stderr = %q, want a warning for XMD_TEMPLTE", stderr)
	}
	if strings.Contains(stderr.String(), "XMD_TEMPLATE ") {
		t.Errorf("stderr = %q, warned about a known variable", stderr)
	}
}

// ---------------------------------------------------------------------------
// TestIsVerbose
// ---------------------------------------------------------------------------

func TestIsVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"compile", "-v", "a.xmd"}, true},
		{[]string{"serve", "--verbose"}, true},
		{[]string{"compile", "a.xmd"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := isVerbose(tt.args); got != tt.want {
			t.Errorf("isVerbose(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
