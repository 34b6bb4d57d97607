package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long   string   // --output
	Short  string   // -o (empty if none)
	Bool   bool     // takes no value
	Desc   string   // help text
	Values []string // for enum flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	FilePattern string // glob for file arguments, empty when none
}

// flagValues lists the closed value sets of enum flags.
var flagValues = map[string][]string{
	"template": templateNames(),
}

// extractFlags reads flag definitions from a pflag.FlagSet.
func extractFlags(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		flags = append(flags, flagDef{
			Long:   f.Name,
			Short:  f.Shorthand,
			Bool:   f.Value.Type() == "bool",
			Desc:   f.Usage,
			Values: flagValues[f.Name],
		})
	})
	return flags
}

// getCommands returns the command registry for completion.
// Flags come from the FlagSets the commands parse with.
func getCommands() []commandDef {
	return []commandDef{
		{
			Name:        "compile",
			Desc:        "Compile an XMD document",
			Flags:       extractFlags(newCompileFlagSet(&compileFlags{})),
			FilePattern: "*.xmd",
		},
		{Name: "serve", Desc: "Serve remote compilations", Flags: extractFlags(newServeFlagSet(&serveFlags{}))},
		{Name: "doctor", Desc: "Check the environment", Flags: extractFlags(newDoctorFlagSet(&doctorFlags{}))},
		{Name: "config", Desc: "Print the effective configuration"},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes a shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

func generateBash(w io.Writer) error {
	var b strings.Builder
	cmds := getCommands()
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}

	b.WriteString("# bash completion for xmd\n")
	b.WriteString("_xmd() {\n")
	b.WriteString("  local cur prev cmd\n")
	b.WriteString("  cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("  prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("  cmd=\"${COMP_WORDS[1]}\"\n")
	b.WriteString("  if [[ $COMP_CWORD -eq 1 ]]; then\n")
	fmt.Fprintf(&b, "    COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(names, " "))
	b.WriteString("    return\n  fi\n")
	b.WriteString("  case \"$cmd\" in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("      case \"$prev\" in\n")
		for _, f := range c.Flags {
			if len(f.Values) > 0 {
				fmt.Fprintf(&b, "        --%s%s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n",
					f.Long, shortAlt(f.Short), strings.Join(f.Values, " "))
			}
		}
		b.WriteString("      esac\n")
		var words []string
		for _, f := range c.Flags {
			words = append(words, "--"+f.Long)
		}
		fmt.Fprintf(&b, "      if [[ $cur == -* ]]; then COMPREPLY=($(compgen -W %q -- \"$cur\")); return; fi\n", strings.Join(words, " "))
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "      COMPREPLY=($(compgen -f -X '!%s' -- \"$cur\") $(compgen -d -- \"$cur\"))\n", c.FilePattern)
		}
		b.WriteString("      ;;\n")
	}
	b.WriteString("  esac\n}\n")
	b.WriteString("complete -o filenames -F _xmd xmd\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func shortAlt(short string) string {
	if short == "" {
		return ""
	}
	return "|-" + short
}

func generateZsh(w io.Writer) error {
	var b strings.Builder
	cmds := getCommands()

	b.WriteString("#compdef xmd\n\n")
	b.WriteString("_xmd() {\n")
	b.WriteString("  local -a commands\n  commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("  )\n")
	b.WriteString("  if (( CURRENT == 2 )); then\n    _describe 'command' commands\n    return\n  fi\n")
	b.WriteString("  case $words[2] in\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n      _arguments \\\n", c.Name)
		for _, f := range c.Flags {
			spec := "'--" + f.Long + "[" + zshEscape(f.Desc) + "]"
			if !f.Bool {
				if len(f.Values) > 0 {
					spec += ":value:(" + strings.Join(f.Values, " ") + ")"
				} else {
					spec += ":value:_files"
				}
			}
			fmt.Fprintf(&b, "        %s' \\\n", spec)
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "        '*:file:_files -g \"%s\"'\n", c.FilePattern)
		} else {
			b.WriteString("        && return\n")
		}
		b.WriteString("      ;;\n")
	}
	b.WriteString("  esac\n}\n\n")
	b.WriteString("compdef _xmd xmd\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func zshEscape(s string) string {
	r := strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")
	return r.Replace(s)
}

func generateFish(w io.Writer) error {
	var b strings.Builder
	cmds := getCommands()

	b.WriteString("# fish completion for xmd\n")
	b.WriteString("complete -c xmd -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c xmd -n __fish_use_subcommand -a %s -d %q\n", c.Name, c.Desc)
	}
	for _, c := range cmds {
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c xmd -n '__fish_seen_subcommand_from %s' -l %s", c.Name, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			if !f.Bool {
				line += " -r"
			}
			if len(f.Values) > 0 {
				line += fmt.Sprintf(" -a %q", strings.Join(f.Values, " "))
			}
			line += fmt.Sprintf(" -d %q\n", f.Desc)
			b.WriteString(line)
		}
		if c.FilePattern != "" {
			fmt.Fprintf(&b, "complete -c xmd -n '__fish_seen_subcommand_from %s' -F\n", c.Name)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xmd completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(xmd completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(xmd completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    xmd completion fish > ~/.config/fish/completions/xmd.fish")
}
