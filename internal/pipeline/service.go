// Package pipeline sequences one run: extract, normalize, persist, then
// optionally prompt and generate. Stages run strictly in order; extraction or
// persistence failures abort the run, a failed generation only degrades it.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/schemapilot/schemapilot/internal/extract"
	"github.com/schemapilot/schemapilot/internal/nl2sql"
	"github.com/schemapilot/schemapilot/internal/normalize"
	"github.com/schemapilot/schemapilot/internal/observability"
	"github.com/schemapilot/schemapilot/internal/prompt"
	"github.com/schemapilot/schemapilot/internal/schema"
	"github.com/schemapilot/schemapilot/internal/store"
)

type Service struct {
	Extractor extract.Extractor
	Store     *store.Store
	Publisher store.ObjectStore // optional
	Generator nl2sql.Generator  // optional, nil disables generation
	Logger    *slog.Logger
	Clock     func() time.Time
}

type SkippedTable struct {
	Table  string `json:"table"`
	Reason string `json:"reason"`
}

type Report struct {
	Backend      schema.Backend  `json:"backend"`
	Database     string          `json:"database"`
	ArtifactPath string          `json:"artifact_path"`
	Tables       int             `json:"tables"`
	Skipped      []SkippedTable  `json:"skipped,omitempty"`
	Generation   *nl2sql.Outcome `json:"generation,omitempty"`
}

// Run executes one pipeline pass. The database connection is released as
// soon as extraction finishes, before anything durable happens. A non-empty
// question triggers generation only when a generator is configured; the
// schema artifact is already written by then, so a degraded generation still
// leaves a successful extraction half behind.
func (s *Service) Run(ctx context.Context, question string) (Report, error) {
	s.ensureDefaults()

	raw, err := s.runExtraction(ctx)
	if err != nil {
		return Report{}, err
	}

	db, err := normalize.Database(raw)
	if err != nil {
		return Report{}, err
	}

	location, err := s.Store.Save(db)
	if err != nil {
		return Report{}, fmt.Errorf("persist schema artifact: %w", err)
	}
	s.Logger.InfoContext(ctx, "schema artifact written",
		slog.String("path", location),
		slog.Int("tables", len(db.Tables)),
		slog.Int("skipped", len(raw.Skipped)))

	s.publish(ctx, db, location)

	report := Report{
		Backend:      db.Backend,
		Database:     db.Name,
		ArtifactPath: location,
		Tables:       len(db.Tables),
	}
	for _, skip := range raw.Skipped {
		report.Skipped = append(report.Skipped, SkippedTable{Table: skip.Table, Reason: skip.Err.Error()})
	}

	if question != "" && s.Generator != nil {
		outcome := s.Generator.Generate(ctx, prompt.Build(db, question))
		observability.ObserveGeneration(outcome.Degraded)
		if outcome.Degraded {
			s.Logger.WarnContext(ctx, "generation degraded", slog.String("reason", outcome.Reason))
		} else {
			s.Logger.InfoContext(ctx, "generation succeeded", slog.String("model", outcome.Answer.Model))
		}
		report.Generation = &outcome
	}

	return report, nil
}

// runExtraction holds the connection only for this stage and closes it on
// every path out.
func (s *Service) runExtraction(ctx context.Context) (extract.Result, error) {
	defer func() {
		if err := s.Extractor.Close(); err != nil {
			s.Logger.WarnContext(ctx, "closing extractor connection failed", slog.Any("error", err))
		}
	}()

	started := s.Clock()
	raw, err := s.Extractor.Extract(ctx)
	if err != nil {
		return extract.Result{}, fmt.Errorf("extract schema: %w", err)
	}
	observability.ObserveExtraction(len(raw.Tables), len(raw.Skipped), s.Clock().Sub(started))

	for _, skip := range raw.Skipped {
		s.Logger.WarnContext(ctx, "table skipped during extraction",
			slog.String("table", skip.Table), slog.Any("error", skip.Err))
	}
	return raw, nil
}

func (s *Service) publish(ctx context.Context, db schema.Database, location string) {
	if s.Publisher == nil {
		return
	}

	key, err := store.ArtifactKey(db.Backend, db.Name)
	if err != nil {
		s.Logger.WarnContext(ctx, "artifact publish skipped", slog.Any("error", err))
		return
	}
	payload, err := store.Marshal(db)
	if err != nil {
		s.Logger.WarnContext(ctx, "artifact publish skipped", slog.Any("error", err))
		return
	}

	_, err = s.Publisher.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), store.PutOptions{
		ContentType: "application/json",
	})
	if err != nil {
		// The local artifact at location is the durability guarantee;
		// publication is best effort.
		s.Logger.WarnContext(ctx, "artifact publish failed",
			slog.String("path", location), slog.Any("error", err))
		return
	}
	s.Logger.InfoContext(ctx, "artifact published", slog.String("key", key))
}

func (s *Service) ensureDefaults() {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.Clock == nil {
		s.Clock = time.Now
	}
}
