/*
 * Cadence - The resource-oriented smart contract programming language
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// A utility program that evaluates the queries of substitution map fixtures.
//
// Usage: substmap [-json] [-no-color] [-verbose] [-dump] [-trace] [-debug] <fixture.yaml>...

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/k0kubun/pp/v3"
	"github.com/logrusorgru/aurora/v4"
	"github.com/tidwall/pretty"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onflow/generics/errors"
	"github.com/onflow/generics/fixture"
	"github.com/onflow/generics/sema"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	json    bool
	color   bool
	verbose bool
	dump    bool
	trace   bool
	debug   bool
}

type fileResults struct {
	Path    string           `json:"path"`
	Error   string           `json:"error,omitempty"`
	Results []fixture.Result `json:"results,omitempty"`
}

func (r fileResults) passed() bool {
	if r.Error != "" {
		return false
	}
	for _, result := range r.Results {
		if !result.Passed() {
			return false
		}
	}
	return true
}

// run evaluates the fixtures given in the arguments,
// and returns the exit code: 0 if all queries passed, 1 if any failed, 2 for usage errors.
func run(args []string, stdout io.Writer, stderr io.Writer) int {
	flags := flag.NewFlagSet("substmap", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var opts options
	var noColor bool
	flags.BoolVar(&opts.json, "json", false, "print the results as JSON")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&opts.verbose, "verbose", false, "print the details of each result")
	flags.BoolVar(&opts.dump, "dump", false, "dump the parsed fixture files to stderr")
	flags.BoolVar(&opts.trace, "trace", false, "log traces of substitution map operations")
	flags.BoolVar(&opts.debug, "debug", false, "log debug records, e.g. conformance cycles")

	err := flags.Parse(args)
	if err != nil {
		return 2
	}
	opts.color = !noColor

	paths := flags.Args()
	if len(paths) == 0 {
		_, _ = fmt.Fprintln(stderr, "expected at least one fixture file")
		flags.Usage()
		return 2
	}

	logger := newLogger(stderr, opts)

	allResults := make([]fileResults, 0, len(paths))
	for _, path := range paths {
		allResults = append(allResults, evaluateFile(path, logger, opts, stderr))
	}

	if opts.json {
		err = printJSON(stdout, allResults, opts.color)
	} else {
		err = printText(stdout, allResults, opts)
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to print results: %s\n", err)
		return 2
	}

	for _, results := range allResults {
		if !results.passed() {
			return 1
		}
	}
	return 0
}

func newLogger(w io.Writer, opts options) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case opts.debug:
		level = slog.LevelDebug
	case opts.trace:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func evaluateFile(path string, logger *slog.Logger, opts options, stderr io.Writer) fileResults {
	results := fileResults{
		Path: path,
	}

	file, err := fixture.Load(path)
	if err != nil {
		results.Error = errorMessage(err)
		return results
	}

	if opts.dump {
		printer := pp.New()
		printer.SetColoringEnabled(opts.color)
		printer.SetOutput(stderr)
		_, _ = printer.Println(file)
	}

	config := sema.Config{
		Logger: logger,
	}
	if opts.trace {
		config.TracingEnabled = true
		config.OnRecordTrace = func(
			operationName string,
			duration time.Duration,
			attrs []attribute.KeyValue,
		) {
			logAttrs := make([]any, 0, len(attrs)+2)
			logAttrs = append(logAttrs,
				slog.String("path", path),
				slog.Duration("duration", duration),
			)
			for _, attr := range attrs {
				logAttrs = append(logAttrs, slog.String(string(attr.Key), attr.Value.Emit()))
			}
			logger.Info(operationName, logAttrs...)
		}
	}

	universe, err := fixture.NewUniverse(file, config)
	if err != nil {
		results.Error = errorMessage(err)
		return results
	}

	results.Results = universe.EvaluateAll()
	return results
}

// errorMessage returns the message of the error,
// followed by the secondary message, if any.
func errorMessage(err error) string {
	message := err.Error()
	if secondaryErr, ok := err.(errors.SecondaryError); ok {
		message += "\n" + secondaryErr.SecondaryError()
	}
	return message
}

func printJSON(w io.Writer, allResults []fileResults, color bool) error {
	data, err := json.Marshal(allResults)
	if err != nil {
		return err
	}

	data = pretty.Pretty(data)
	if color {
		data = pretty.Color(data, nil)
	}

	_, err = w.Write(data)
	return err
}

func printText(w io.Writer, allResults []fileResults, opts options) error {
	colors := aurora.New(aurora.WithColors(opts.color))

	var passed, failed int

	for _, results := range allResults {
		_, err := fmt.Fprintln(w, colors.Bold(results.Path))
		if err != nil {
			return err
		}

		if results.Error != "" {
			failed++
			_, err = fmt.Fprintf(w, "  %s %s\n", colors.Red("ERROR"), results.Error)
			if err != nil {
				return err
			}
			continue
		}

		for _, result := range results.Results {
			err = printResult(w, colors, result, opts.verbose)
			if err != nil {
				return err
			}
			if result.Passed() {
				passed++
			} else {
				failed++
			}
		}
	}

	summary := fmt.Sprintf("%d passed, %d failed", passed, failed)
	if failed > 0 {
		_, err := fmt.Fprintln(w, colors.Red(summary))
		return err
	}
	_, err := fmt.Fprintln(w, colors.Green(summary))
	return err
}

func printResult(w io.Writer, colors *aurora.Aurora, result fixture.Result, verbose bool) error {
	status := colors.Green("PASS")
	if !result.Passed() {
		status = colors.Red("FAIL")
	}

	_, err := fmt.Fprintf(
		w,
		"  %s #%d %s %s\n",
		status,
		result.Index,
		colors.Cyan(result.Kind),
		result.Query,
	)
	if err != nil {
		return err
	}

	lines := make([][2]string, 0, 4)
	switch {
	case result.Error != "":
		lines = append(lines, [2]string{"error", result.Error})
	case !result.Passed():
		lines = append(lines,
			[2]string{"got", result.Output},
			[2]string{"expected", result.Expected},
		)
	default:
		lines = append(lines, [2]string{"output", result.Output})
	}
	if verbose && result.Detail != "" {
		lines = append(lines, [2]string{"detail", result.Detail})
	}

	for _, line := range lines {
		_, err = fmt.Fprintf(w, "      %s %s\n", colors.Faint(line[0]+":"), line[1])
		if err != nil {
			return err
		}
	}
	return nil
}
