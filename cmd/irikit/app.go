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

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jplu/irikit/config"
	"github.com/jplu/irikit/iri"
	"github.com/jplu/irikit/remote"
)

// errRejected is returned when at least one input could not be validated,
// coerced or converted. Details have already been written to stderr.
var errRejected = errors.New("some inputs were rejected")

// App wires configuration to the validator and coercer used by the commands.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	check   iri.ValidateFunc
	coercer *iri.Coercer

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// NewApp builds an App from a validated configuration.
func NewApp(cfg *config.Config, logger *slog.Logger, in io.Reader, out, errOut io.Writer) (*App, error) {
	validator := iri.Validator{Mode: cfg.Mode(), Strict: cfg.Validation.Strict}
	opts := []iri.Option{
		iri.WithMode(validator.Mode),
		iri.WithLogger(logger),
	}
	if validator.Strict {
		opts = append(opts, iri.WithStrict())
	}
	if cfg.Coercion.NFC {
		opts = append(opts, iri.WithNFC())
	}

	check := validator.Func()
	if cfg.Remote.Endpoint != "" {
		client, err := remote.New(cfg.Remote.Endpoint,
			remote.WithTimeout(cfg.Remote.Timeout),
			remote.WithRetryMax(cfg.Remote.RetryMax),
			remote.WithRateLimit(cfg.Remote.RateLimit),
			remote.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("create remote validator: %w", err)
		}
		check = client.Validate
		opts = append(opts, iri.WithValidator(client.Validate))
		logger.Debug("Using remote IRI validator", slog.String("endpoint", client.Endpoint()))
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		check:   check,
		coercer: iri.NewCoercer(opts...),
		in:      in,
		out:     out,
		errOut:  errOut,
	}, nil
}

// inputs returns args, or the non-empty lines of stdin when args is empty.
func (a *App) inputs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var lines []string
	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return lines, nil
}

// Validate prints "valid" or "invalid" for each input.
func (a *App) Validate(ctx context.Context, args []string) error {
	items, err := a.inputs(args)
	if err != nil {
		return err
	}
	rejected := false
	for _, item := range items {
		ok, err := a.check(ctx, item)
		if err != nil {
			a.logger.Warn("IRI validation failed", slog.String("input", item), slog.String("error", err.Error()))
			ok = false
		}
		verdict := "valid"
		if !ok {
			verdict = "invalid"
			rejected = true
		}
		fmt.Fprintf(a.out, "%s\t%s\n", verdict, item)
	}
	if rejected {
		return errRejected
	}
	return nil
}

// Coerce prints the IRI derived from each input. With trace, the number of
// rewrite rules applied is printed first.
func (a *App) Coerce(ctx context.Context, args []string, trace bool) error {
	items, err := a.inputs(args)
	if err != nil {
		return err
	}
	rejected := false
	for _, item := range items {
		res := a.coercer.Trace(ctx, item)
		if !res.OK {
			fmt.Fprintf(a.errOut, "cannot derive an IRI from %q\n", item)
			rejected = true
			continue
		}
		if trace {
			fmt.Fprintf(a.out, "%d\t%s\n", res.Rules, res.IRI)
		} else {
			fmt.Fprintln(a.out, res.IRI)
		}
	}
	if rejected {
		return errRejected
	}
	return nil
}

// ToURI prints the URI form of each input.
func (a *App) ToURI(args []string) error {
	items, err := a.inputs(args)
	if err != nil {
		return err
	}
	rejected := false
	for _, item := range items {
		uri, err := iri.ToURI(item)
		if err != nil {
			fmt.Fprintln(a.errOut, err)
			rejected = true
			continue
		}
		fmt.Fprintln(a.out, uri)
	}
	if rejected {
		return errRejected
	}
	return nil
}

// Find prints every IRI found in stdin, one per line.
func (a *App) Find() error {
	text, err := io.ReadAll(a.in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	for m := range iri.FindAll(string(text)) {
		fmt.Fprintln(a.out, m.Text)
	}
	return nil
}

// Linkify writes stdin as HTML with every IRI turned into a link.
func (a *App) Linkify() error {
	text, err := io.ReadAll(a.in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	_, err = io.WriteString(a.out, iri.Linkify(string(text)))
	return err
}
