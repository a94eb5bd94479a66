package schemapilot

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/schemapilot/schemapilot/internal/nl2sql"
	"github.com/schemapilot/schemapilot/internal/pipeline"
	"github.com/schemapilot/schemapilot/internal/schema"
)

type fakePipeline struct {
	report   pipeline.Report
	err      error
	question string
	calls    int
}

func (f *fakePipeline) Run(ctx context.Context, question string) (pipeline.Report, error) {
	f.calls++
	f.question = question
	return f.report, f.err
}

func sampleReport() pipeline.Report {
	return pipeline.Report{
		Backend:      schema.BackendPostgres,
		Database:     "shop",
		ArtifactPath: "output/postgresql_shop_schema.json",
		Tables:       3,
	}
}

func TestRunPrintsReport(t *testing.T) {
	fake := &fakePipeline{report: sampleReport()}
	var stdout, stderr bytes.Buffer

	code := Run(context.Background(), nil, Options{Pipeline: fake, Stdout: &stdout, Stderr: &stderr})
	if code != 0 {
		t.Fatalf("Run() = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `"artifact_path": "output/postgresql_shop_schema.json"`) {
		t.Fatalf("report missing from stdout:\n%s", stdout.String())
	}
	if fake.question != "" {
		t.Fatalf("question = %q, want empty", fake.question)
	}
}

func TestRunPassesQuestionFlag(t *testing.T) {
	fake := &fakePipeline{report: sampleReport()}

	code := Run(context.Background(), []string{"-question", "total revenue per customer"}, Options{Pipeline: fake})
	if code != 0 {
		t.Fatalf("Run() = %d", code)
	}
	if fake.question != "total revenue per customer" {
		t.Fatalf("question = %q", fake.question)
	}
}

func TestRunReadsQuestionFromStdinByDefault(t *testing.T) {
	fake := &fakePipeline{report: sampleReport()}
	stdin := strings.NewReader("how many orders\n")

	code := Run(context.Background(), nil, Options{Pipeline: fake, Stdin: stdin})
	if code != 0 {
		t.Fatalf("Run() = %d", code)
	}
	if fake.question != "how many orders" {
		t.Fatalf("question = %q", fake.question)
	}
}

func TestRunEmptyStdinLineSkipsGeneration(t *testing.T) {
	fake := &fakePipeline{report: sampleReport()}
	stdin := strings.NewReader("\n")

	code := Run(context.Background(), nil, Options{Pipeline: fake, Stdin: stdin})
	if code != 0 {
		t.Fatalf("Run() = %d", code)
	}
	if fake.question != "" {
		t.Fatalf("question = %q, want empty", fake.question)
	}
}

func TestRunQuestionFlagSuppressesStdinPrompt(t *testing.T) {
	fake := &fakePipeline{report: sampleReport()}
	stdin := strings.NewReader("from stdin\n")
	var stdout bytes.Buffer

	code := Run(context.Background(), []string{"-question", "from flag"}, Options{Pipeline: fake, Stdin: stdin, Stdout: &stdout})
	if code != 0 {
		t.Fatalf("Run() = %d", code)
	}
	if fake.question != "from flag" {
		t.Fatalf("question = %q", fake.question)
	}
	if strings.Contains(stdout.String(), "Question") {
		t.Fatalf("stdin prompt printed despite -question:\n%s", stdout.String())
	}
}

func TestRunNoInputSkipsStdin(t *testing.T) {
	fake := &fakePipeline{report: sampleReport()}
	stdin := strings.NewReader("how many orders\n")

	code := Run(context.Background(), []string{"-no-input"}, Options{Pipeline: fake, Stdin: stdin})
	if code != 0 {
		t.Fatalf("Run() = %d", code)
	}
	if fake.question != "" {
		t.Fatalf("question = %q, want empty", fake.question)
	}
}

func TestRunSurfacesDegradedGenerationOnStderr(t *testing.T) {
	report := sampleReport()
	outcome := nl2sql.DegradedOutcome("dial tcp: connection refused")
	report.Generation = &outcome
	fake := &fakePipeline{report: report}
	var stderr bytes.Buffer

	code := Run(context.Background(), []string{"-question", "q"}, Options{Pipeline: fake, Stderr: &stderr})
	if code != 0 {
		t.Fatalf("Run() = %d, degraded generation must still exit 0", code)
	}
	if !strings.Contains(stderr.String(), "generation degraded") {
		t.Fatalf("stderr missing degradation notice: %s", stderr.String())
	}
}

func TestRunFailsOnPipelineError(t *testing.T) {
	fake := &fakePipeline{err: errors.New("postgresql connection failed")}
	var stderr bytes.Buffer

	code := Run(context.Background(), nil, Options{Pipeline: fake, Stderr: &stderr})
	if code != 1 {
		t.Fatalf("Run() = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "run failed") {
		t.Fatalf("stderr = %s", stderr.String())
	}
}

func TestRunRejectsUnexpectedArguments(t *testing.T) {
	fake := &fakePipeline{report: sampleReport()}

	code := Run(context.Background(), []string{"extra"}, Options{Pipeline: fake})
	if code != 2 {
		t.Fatalf("Run() = %d, want 2", code)
	}
	if fake.calls != 0 {
		t.Fatal("pipeline should not run on usage errors")
	}
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	fake := &fakePipeline{report: sampleReport()}

	code := Run(context.Background(), []string{"-bogus"}, Options{Pipeline: fake})
	if code != 2 {
		t.Fatalf("Run() = %d, want 2", code)
	}
}
