// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-xmd/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for headless Chrome launch errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForConfigNotFound suggests --config or the user config file to create.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-xmd") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable, or pass --overwrite")
}

// ForTemplateNotFound lists the known template ids.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForEvaluator returns hints for an unreachable code evaluator.
func ForEvaluator(url string) string {
	hints := []string{"start the evaluator or set evaluator.command to launch it"}
	if url != "" {
		hints = append(hints, "check it answers GET "+strings.TrimSuffix(url, "/")+"/ping")
	}
	return formatHints(hints)
}

// ForTypesetter returns hints for a missing or failing LaTeX command.
func ForTypesetter(command string) string {
	if command == "" {
		command = "pdflatex"
	}
	return format("install " + command + " (TeX Live or MiKTeX) and check main.log in the output directory")
}

// ForImageExtension lists the picture formats documents may reference.
func ForImageExtension() string {
	return format("supported formats: .jpg, .jpeg, .png, .svg; remote URLs are kept as they are")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
