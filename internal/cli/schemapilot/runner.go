// Package schemapilot implements the command-line front end: flag parsing,
// question collection, and report printing around one pipeline run.
package schemapilot

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/schemapilot/schemapilot/internal/pipeline"
)

type PipelineRunner interface {
	Run(ctx context.Context, question string) (pipeline.Report, error)
}

type Options struct {
	Pipeline PipelineRunner
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
}

// Run parses args, collects the question, executes one pipeline run and
// prints the report. Exit code 0 covers degraded generation as well: the
// extraction half of the run succeeded and the degradation is reported
// separately on stderr.
func Run(ctx context.Context, args []string, opts Options) int {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	if opts.Pipeline == nil {
		_, _ = fmt.Fprintln(stderr, "pipeline is not configured")
		return 1
	}

	fs := flag.NewFlagSet("schemapilot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	question := fs.String("question", "", "natural-language question to translate into SQL (empty prompts on stdin)")
	noInput := fs.Bool("no-input", false, "never prompt on stdin; run extraction only when -question is not given")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected argument %q\n", fs.Arg(0))
		return 2
	}

	// Without -question the question comes from one stdin line; an empty
	// line skips generation.
	q := strings.TrimSpace(*question)
	if q == "" && !*noInput && opts.Stdin != nil {
		q = readQuestion(opts.Stdin, stdout)
	}

	report, err := opts.Pipeline.Run(ctx, q)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "run failed: %v\n", err)
		return 1
	}

	if report.Generation != nil && report.Generation.Degraded {
		_, _ = fmt.Fprintf(stderr, "generation degraded: %s\n", report.Generation.Reason)
	}

	formatted, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "encode report: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(stdout, string(formatted))
	return 0
}

func readQuestion(stdin io.Reader, stdout io.Writer) string {
	_, _ = fmt.Fprint(stdout, "Question (empty to skip generation): ")
	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
