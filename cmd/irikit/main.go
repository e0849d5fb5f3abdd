/*
Copyright 2025 Trident Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package main provides the irikit binary entry point.
// Irikit validates IRIs against RFC 3987, finds them in text and derives
// valid IRIs from arbitrary values such as column names.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jplu/irikit/config"
)

const (
	Version = "0.1.0"
	appName = "irikit"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	mode       string
	strict     bool
	nfc        bool
	remote     string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Validate, find and coerce IRIs",
		Long: `Irikit checks strings against the RFC 3987 IRI grammar.

It provides:
- Validation of IRIs and IRI references
- Discovery of IRIs embedded in free text
- Coercion of arbitrary values into valid IRIs
- Conversion of IRIs to ASCII URIs

Validation runs locally unless a remote validator endpoint is configured.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.mode, "mode", "", "Validation mode (reference, absolute)")
	pf.BoolVar(&flags.strict, "strict", false, "Apply RFC 3987 bidi rules")
	pf.BoolVar(&flags.nfc, "nfc", false, "Normalize inputs to NFC before coercion")
	pf.StringVar(&flags.remote, "remote", "", "Remote validate-iri endpoint URL")

	newApp := func(c *cobra.Command) (*App, error) {
		return buildApp(c, &flags)
	}

	cmd.AddCommand(
		validateCmd(newApp),
		coerceCmd(newApp),
		findCmd(newApp),
		linkifyCmd(newApp),
		uriCmd(newApp),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(c *cobra.Command, _ []string) {
				fmt.Fprintf(c.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

// buildApp loads the layered configuration, applies explicitly set flags on
// top of it and wires the App to the command's streams.
func buildApp(c *cobra.Command, flags *globalFlags) (*App, error) {
	errOut := c.ErrOrStderr()
	bootstrap := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.NewLoader(bootstrap).Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pf := c.Flags()
	if pf.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if pf.Changed("mode") {
		cfg.Validation.Mode = flags.mode
	}
	if pf.Changed("strict") {
		cfg.Validation.Strict = flags.strict
	}
	if pf.Changed("nfc") {
		cfg.Coercion.NFC = flags.nfc
	}
	if pf.Changed("remote") {
		cfg.Remote.Endpoint = flags.remote
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	return NewApp(cfg, logger, c.InOrStdin(), c.OutOrStdout(), errOut)
}

type appFactory func(*cobra.Command) (*App, error)

func validateCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [iri...]",
		Short: "Check whether each argument, or each stdin line, is a valid IRI",
		RunE: func(c *cobra.Command, args []string) error {
			app, err := newApp(c)
			if err != nil {
				return err
			}
			return app.Validate(c.Context(), args)
		},
	}
}

func coerceCmd(newApp appFactory) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "coerce [value...]",
		Short: "Derive a valid IRI from each argument, or each stdin line",
		RunE: func(c *cobra.Command, args []string) error {
			app, err := newApp(c)
			if err != nil {
				return err
			}
			return app.Coerce(c.Context(), args, trace)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "Prefix each result with the number of rewrite rules applied")
	return cmd
}

func findCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "find",
		Short: "Print every IRI found in stdin",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			app, err := newApp(c)
			if err != nil {
				return err
			}
			return app.Find()
		},
	}
}

func linkifyCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "linkify",
		Short: "Render stdin as HTML with IRIs turned into links",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			app, err := newApp(c)
			if err != nil {
				return err
			}
			return app.Linkify()
		},
	}
}

func uriCmd(newApp appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "uri [iri...]",
		Short: "Convert each argument, or each stdin line, to an ASCII URI",
		RunE: func(c *cobra.Command, args []string) error {
			app, err := newApp(c)
			if err != nil {
				return err
			}
			return app.ToURI(args)
		},
	}
}
