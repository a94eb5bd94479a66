// Package postgres introspects a PostgreSQL database through the
// information_schema views.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/schemapilot/schemapilot/internal/extract"
	"github.com/schemapilot/schemapilot/internal/schema"
)

const listTablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = $1 AND table_type = 'BASE TABLE'
ORDER BY table_name ASC`

const listColumnsQuery = `
SELECT column_name, data_type, is_nullable, column_default
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position ASC`

// One row per constraint column fragment. For foreign keys the referenced
// column is paired through position_in_unique_constraint so composite keys
// line up fragment by fragment.
const listConstraintsQuery = `
SELECT
	tc.constraint_name,
	tc.constraint_type,
	kcu.column_name,
	kcu2.table_name AS ref_table,
	kcu2.column_name AS ref_column
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
	ON kcu.constraint_name = tc.constraint_name
	AND kcu.table_schema = tc.table_schema
LEFT JOIN information_schema.referential_constraints rc
	ON rc.constraint_name = tc.constraint_name
	AND rc.constraint_schema = tc.table_schema
LEFT JOIN information_schema.key_column_usage kcu2
	ON kcu2.constraint_name = rc.unique_constraint_name
	AND kcu2.constraint_schema = rc.unique_constraint_schema
	AND kcu2.ordinal_position = kcu.position_in_unique_constraint
WHERE tc.table_schema = $1 AND tc.table_name = $2
	AND tc.constraint_type IN ('PRIMARY KEY', 'FOREIGN KEY', 'UNIQUE')
ORDER BY tc.constraint_name ASC, kcu.ordinal_position ASC`

type Extractor struct {
	db         *sql.DB
	database   string
	schemaName string
	logger     *slog.Logger
}

func NewExtractor(db *sql.DB, database, schemaName string, logger *slog.Logger) *Extractor {
	if schemaName == "" {
		schemaName = "public"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{db: db, database: database, schemaName: schemaName, logger: logger}
}

func (e *Extractor) Close() error {
	return e.db.Close()
}

// Extract lists the base tables of the configured schema and collects the
// raw column and constraint metadata per table. A failing per-table query
// records a skip and moves on; only the table listing itself is fatal.
func (e *Extractor) Extract(ctx context.Context) (extract.Result, error) {
	result := extract.Result{
		Backend:  schema.BackendPostgres,
		Database: e.database,
	}

	tableNames, err := e.listTables(ctx)
	if err != nil {
		return extract.Result{}, &extract.ConnectionError{Backend: schema.BackendPostgres, Err: err}
	}

	for _, name := range tableNames {
		table, err := e.extractTable(ctx, name)
		if err != nil {
			e.logger.WarnContext(ctx, "skipping table after metadata query failure",
				slog.String("table", name), slog.Any("error", err))
			result.Skipped = append(result.Skipped, extract.TableSkip{Table: name, Err: err})
			continue
		}
		result.Tables = append(result.Tables, table)
	}

	return result, nil
}

func (e *Extractor) listTables(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, listTablesQuery, e.schemaName)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table rows: %w", err)
	}
	return names, nil
}

func (e *Extractor) extractTable(ctx context.Context, tableName string) (extract.TableData, error) {
	table := extract.TableData{Name: tableName, Schema: e.schemaName}

	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return extract.TableData{}, err
	}
	table.Columns = columns

	constraints, err := e.extractConstraints(ctx, tableName)
	if err != nil {
		return extract.TableData{}, err
	}
	table.Constraints = constraints

	return table, nil
}

func (e *Extractor) extractColumns(ctx context.Context, tableName string) ([]extract.ColumnData, error) {
	rows, err := e.db.QueryContext(ctx, listColumnsQuery, e.schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []extract.ColumnData
	for rows.Next() {
		var col extract.ColumnData
		var nullable string
		var defaultVal sql.NullString

		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &defaultVal); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		col.Nullable = nullable == "YES"
		if defaultVal.Valid {
			value := defaultVal.String
			col.Default = &value
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}
	return columns, nil
}

func (e *Extractor) extractConstraints(ctx context.Context, tableName string) ([]extract.ConstraintData, error) {
	rows, err := e.db.QueryContext(ctx, listConstraintsQuery, e.schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("list constraints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var constraints []extract.ConstraintData
	for rows.Next() {
		var c extract.ConstraintData
		var kind string
		var refTable, refColumn sql.NullString

		if err := rows.Scan(&c.Name, &kind, &c.Column, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("scan constraint row: %w", err)
		}
		c.Kind = constraintKind(kind)
		if refTable.Valid {
			c.RefTable = refTable.String
		}
		if refColumn.Valid {
			c.RefColumn = refColumn.String
		}
		constraints = append(constraints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate constraint rows: %w", err)
	}
	return constraints, nil
}

func constraintKind(constraintType string) schema.ConstraintKind {
	switch constraintType {
	case "PRIMARY KEY":
		return schema.ConstraintPrimaryKey
	case "FOREIGN KEY":
		return schema.ConstraintForeignKey
	case "UNIQUE":
		return schema.ConstraintUnique
	case "CHECK":
		return schema.ConstraintCheck
	default:
		return schema.ConstraintKind(constraintType)
	}
}
