// Package schema defines the canonical, backend-agnostic representation of an
// extracted database schema. Every stage after extraction operates on these
// types and the single Backend tag; nothing downstream branches on the
// underlying catalog shape.
package schema

import "fmt"

type Backend string

const (
	BackendPostgres Backend = "postgresql"
	BackendHive     Backend = "hive"
)

func (b Backend) Valid() bool {
	switch b {
	case BackendPostgres, BackendHive:
		return true
	default:
		return false
	}
}

type ConstraintKind string

const (
	ConstraintPrimaryKey ConstraintKind = "primary_key"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintCheck      ConstraintKind = "check"
)

// Database is built once per extraction run and never mutated afterwards.
type Database struct {
	Name    string  `json:"name"`
	Backend Backend `json:"backend"`
	Tables  []Table `json:"tables"`
}

type Table struct {
	Name          string         `json:"name"`
	Schema        string         `json:"schema,omitempty"`
	Columns       []Column       `json:"columns"`
	Constraints   []Constraint   `json:"constraints,omitempty"`
	PartitionKeys []PartitionKey `json:"partition_keys,omitempty"`
}

// Column keeps the backend-native type spelling; no type unification is
// attempted.
type Column struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Position int     `json:"position"`
	Default  *string `json:"default,omitempty"`
	Comment  string  `json:"comment,omitempty"`
}

type Constraint struct {
	Name       string         `json:"name,omitempty"`
	Kind       ConstraintKind `json:"kind"`
	Columns    []string       `json:"columns"`
	RefTable   string         `json:"ref_table,omitempty"`
	RefColumns []string       `json:"ref_columns,omitempty"`
}

type PartitionKey struct {
	Column   string `json:"column"`
	Position int    `json:"position"`
}

// Validate checks the structural invariants: a known backend kind, unique
// table names, contiguous column ordinals starting at 1, and constraints that
// reference only columns of their owning table.
func (d Database) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if !d.Backend.Valid() {
		return fmt.Errorf("unknown backend kind: %q", d.Backend)
	}

	seen := make(map[string]struct{}, len(d.Tables))
	for _, table := range d.Tables {
		if _, dup := seen[table.Name]; dup {
			return fmt.Errorf("duplicate table name %q", table.Name)
		}
		seen[table.Name] = struct{}{}

		if err := table.validate(); err != nil {
			return fmt.Errorf("table %q: %w", table.Name, err)
		}
	}
	return nil
}

func (t Table) validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}

	columns := make(map[string]struct{}, len(t.Columns))
	for i, col := range t.Columns {
		if col.Name == "" {
			return fmt.Errorf("column at position %d has no name", i+1)
		}
		if col.Position != i+1 {
			return fmt.Errorf("column %q position = %d, want %d", col.Name, col.Position, i+1)
		}
		if _, dup := columns[col.Name]; dup {
			return fmt.Errorf("duplicate column name %q", col.Name)
		}
		columns[col.Name] = struct{}{}
	}

	for _, c := range t.Constraints {
		switch c.Kind {
		case ConstraintPrimaryKey, ConstraintForeignKey, ConstraintUnique, ConstraintNotNull, ConstraintCheck:
		default:
			return fmt.Errorf("constraint %q has unknown kind %q", c.Name, c.Kind)
		}
		for _, name := range c.Columns {
			if _, ok := columns[name]; !ok {
				return fmt.Errorf("constraint %q references unknown column %q", c.Name, name)
			}
		}
		if c.Kind == ConstraintForeignKey {
			if c.RefTable == "" {
				return fmt.Errorf("foreign key %q has no referenced table", c.Name)
			}
			if len(c.RefColumns) != len(c.Columns) {
				return fmt.Errorf("foreign key %q has %d columns but %d referenced columns",
					c.Name, len(c.Columns), len(c.RefColumns))
			}
		}
	}

	for i, pk := range t.PartitionKeys {
		if pk.Position != i+1 {
			return fmt.Errorf("partition key %q position = %d, want %d", pk.Column, pk.Position, i+1)
		}
	}
	return nil
}
