// Package extract defines the raw, backend-shaped output of catalog
// introspection. Backend variants live in the subpackages; everything they
// return is mapped to the canonical model by internal/normalize.
package extract

import (
	"context"
	"fmt"

	"github.com/schemapilot/schemapilot/internal/schema"
)

// ColumnData is one column row as the backend catalog reports it.
type ColumnData struct {
	Name     string
	DataType string
	Nullable bool
	Default  *string
	Comment  string
}

// ConstraintData is a single constraint fragment. Multi-column constraints
// arrive as one fragment per participating column and are grouped later.
type ConstraintData struct {
	Name      string
	Kind      schema.ConstraintKind
	Column    string
	RefTable  string
	RefColumn string
}

type PartitionData struct {
	Column string
}

type TableData struct {
	Name        string
	Schema      string
	Columns     []ColumnData
	Constraints []ConstraintData
	Partitions  []PartitionData
}

// TableSkip records a table whose metadata query failed. Skips never abort a
// run; they are surfaced for operator visibility.
type TableSkip struct {
	Table string
	Err   error
}

type Result struct {
	Backend  schema.Backend
	Database string
	Tables   []TableData
	Skipped  []TableSkip
}

// Extractor introspects one backend. Close releases the underlying
// connection and must be called once extraction is done, on every exit path.
type Extractor interface {
	Extract(ctx context.Context) (Result, error)
	Close() error
}

// ConnectionError marks a fatal failure to reach or query the backend
// catalog as a whole, as opposed to a per-table skip.
type ConnectionError struct {
	Backend schema.Backend
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Backend, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
