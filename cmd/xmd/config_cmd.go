package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-xmd/internal/yamlutil"
)

// runConfig prints the configuration a compile would use, after the config
// file and XMD_* variables are applied.
func runConfig(args []string, env *Environment) error {
	var common commonFlags
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	addCommonFlags(fs, &common)
	if _, err := parseFlagSet(fs, args, env.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printConfigUsage(env.Stdout)
			return nil
		}
		return err
	}

	envCfg := loadEnvConfig(env)
	name := configName(common.config, envCfg)
	cfg, err := loadConfig(name, envCfg)
	if err != nil {
		return withHint(err, nil, name)
	}
	if err := cfg.Validate(); err != nil {
		return withHint(err, cfg, name)
	}

	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(data)
	return err
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xmd config [-c config]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML.")
}
