package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xmd <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  compile      Compile an XMD document")
	fmt.Fprintln(w, "  serve        Serve remote compilations over HTTP")
	fmt.Fprintln(w, "  doctor       Check typesetters, Chrome and the code evaluator")
	fmt.Fprintln(w, "  config       Print the effective configuration")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'xmd help <command>' for details on a specific command.")
}

// printCompileUsage prints usage for the compile command.
func printCompileUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xmd compile <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compile an XMD document with its imports and pictures.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -t, --template <s>        html_tufte, html_slides, tex_doc, tex_tufte")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: <file>_<template>)")
	fmt.Fprintln(w, "      --overwrite           Replace an existing output directory")
	fmt.Fprintln(w, "      --json                Write the output image as JSON to stdout")
	fmt.Fprintln(w, "      --pdf                 Typeset to PDF (pdflatex or Chrome)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom template bundles")
	fmt.Fprintln(w, "      --debug               Store the document tree under __debug")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Evaluation:")
	fmt.Fprintln(w, "      --eval-url <url>      Code evaluator base URL")
	fmt.Fprintln(w, "      --remote <url>        Compile on an xmd server")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xmd serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve remote compilations: POST /, GET /ping, GET /metrics.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --addr <addr>         Listen address (default :8080)")
	fmt.Fprintln(w, "      --concurrency <n>     Simultaneous compilations (0 = auto)")
	fmt.Fprintln(w, "      --eval-url <url>      Code evaluator base URL")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom template bundles")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xmd doctor [--json] [-c config] [--eval-url url]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the TeX engine, Chrome and the code evaluator.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "compile":
		printCompileUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: xmd version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: xmd help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
