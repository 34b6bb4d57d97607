package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-xmd/internal/codeeval"
	"github.com/alnah/go-xmd/internal/config"
)

// evaluatorPingTimeout bounds the doctor's evaluator check.
const evaluatorPingTimeout = 2 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	TeX       toolInfo      `json:"tex"`
	Chrome    chromeInfo    `json:"chrome"`
	Evaluator evaluatorInfo `json:"evaluator"`
	Env       envInfo       `json:"environment"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// toolInfo holds the TeX engine lookup result.
type toolInfo struct {
	Command string `json:"command"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// evaluatorInfo holds the evaluator reachability result.
type evaluatorInfo struct {
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
	Launcher  bool   `json:"launcher"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = usage.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	flags, _, err := parseDoctorFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		printDoctorUsage(env.Stdout)
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	envCfg := loadEnvConfig(env)
	name := configName(flags.common.config, envCfg)
	cfg, err := loadConfig(name, envCfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", withHint(err, nil, name))
		return exitCodeFor(err)
	}
	if flags.eval.url != "" {
		cfg.Evaluator.URL = flags.eval.url
	}

	result := runDoctor(ctx, cfg, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkTeX(result, cfg.Typeset.Command)
	checkChrome(result)
	checkEvaluator(ctx, result, cfg)
	checkEnvironment(result, env)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkTeX looks the TeX engine up on PATH. Only tex_* PDFs need it.
func checkTeX(result *doctorResult, command string) {
	if command == "" {
		command = config.DefaultTypesetCommand
	}
	result.TeX.Command = command
	path, err := exec.LookPath(command)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s not found: tex_doc and tex_tufte cannot be typeset to PDF", command))
		return
	}
	result.TeX.Found = true
	result.TeX.Path = path
}

// checkChrome detects Chrome/Chromium. Only html_* PDFs need it.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found: html templates cannot be printed to PDF. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from rod lookup or ROD_BROWSER_BIN
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEvaluator pings the evaluator once.
func checkEvaluator(ctx context.Context, result *doctorResult, cfg *config.Config) {
	url := cfg.Evaluator.URL
	if url == "" {
		url = codeeval.DefaultURL
	}
	result.Evaluator.URL = url
	result.Evaluator.Launcher = len(cfg.Evaluator.Command) > 0

	ctx, cancel := context.WithTimeout(ctx, evaluatorPingTimeout)
	defer cancel()
	if err := codeeval.New(url).Ping(ctx); err != nil {
		msg := fmt.Sprintf("code evaluator not reachable at %s: documents with run chunks will fail", url)
		if result.Evaluator.Launcher {
			msg = fmt.Sprintf("code evaluator not reachable at %s (evaluator.command launches it on compile)", url)
		}
		result.Warnings = append(result.Warnings, msg)
		return
	}
	result.Evaluator.Reachable = true
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" && result.Chrome.Found {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint names the detected signal.
func isContainer(env *Environment) (bool, string) {
	if env.getenv("XMD_CONTAINER") == "1" {
		return true, "XMD_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := env.getenv("container"); v != "" {
		return true, "container=" + v
	}
	if env.getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory typesetters write to.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "xmd-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	_ = f.Close()
	_ = os.Remove(filepath.Clean(f.Name()))
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "xmd doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "TeX")
	if r.TeX.Found {
		fmt.Fprintf(w, "  [OK] %s: %s\n", r.TeX.Command, r.TeX.Path)
	} else {
		fmt.Fprintf(w, "  [WARN] %s: not found\n", r.TeX.Command)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Code evaluator")
	if r.Evaluator.Reachable {
		fmt.Fprintf(w, "  [OK] Reachable at %s\n", r.Evaluator.URL)
	} else {
		fmt.Fprintf(w, "  [WARN] Not reachable at %s\n", r.Evaluator.URL)
	}
	if r.Evaluator.Launcher {
		fmt.Fprintln(w, "  [OK] Launcher: configured")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to compile")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
