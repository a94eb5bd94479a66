// Package hive introspects a Hive warehouse over HiveServer2. The Hive
// catalog exposes no key constraints, so extracted tables legitimately carry
// an empty constraint list; partition columns come from the partition section
// of DESCRIBE output.
package hive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/schemapilot/schemapilot/internal/extract"
	"github.com/schemapilot/schemapilot/internal/schema"
)

const partitionMarker = "# Partition Information"

type Extractor struct {
	db       *sql.DB
	database string
	logger   *slog.Logger
}

func NewExtractor(db *sql.DB, database string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{db: db, database: database, logger: logger}
}

func (e *Extractor) Close() error {
	return e.db.Close()
}

// Extract runs SHOW TABLES and DESCRIBE per table. A table whose DESCRIBE
// fails is skipped and recorded; a failing SHOW TABLES is fatal.
func (e *Extractor) Extract(ctx context.Context) (extract.Result, error) {
	result := extract.Result{
		Backend:  schema.BackendHive,
		Database: e.database,
	}

	tableNames, err := e.listTables(ctx)
	if err != nil {
		return extract.Result{}, &extract.ConnectionError{Backend: schema.BackendHive, Err: err}
	}

	for _, name := range tableNames {
		table, err := e.describeTable(ctx, name)
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
	rows, err := e.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("show tables: %w", err)
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

// describeTable parses DESCRIBE output. Regular columns come first; for
// partitioned tables Hive appends a "# Partition Information" section that
// repeats the partition columns, which become the table's partition keys.
func (e *Extractor) describeTable(ctx context.Context, tableName string) (extract.TableData, error) {
	rows, err := e.db.QueryContext(ctx, "DESCRIBE "+quoteIdent(tableName))
	if err != nil {
		return extract.TableData{}, fmt.Errorf("describe %s: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	table := extract.TableData{Name: tableName, Schema: e.database}
	inPartitionSection := false

	for rows.Next() {
		var name, dataType, comment sql.NullString
		if err := rows.Scan(&name, &dataType, &comment); err != nil {
			return extract.TableData{}, fmt.Errorf("scan describe row for %s: %w", tableName, err)
		}

		colName := strings.TrimSpace(name.String)
		if colName == "" {
			continue
		}
		if strings.HasPrefix(colName, "#") {
			if strings.HasPrefix(colName, partitionMarker) {
				inPartitionSection = true
			}
			continue
		}

		if inPartitionSection {
			table.Partitions = append(table.Partitions, extract.PartitionData{Column: colName})
			continue
		}

		// Hive columns are always nullable.
		table.Columns = append(table.Columns, extract.ColumnData{
			Name:     colName,
			DataType: strings.TrimSpace(dataType.String),
			Nullable: true,
			Comment:  strings.TrimSpace(comment.String),
		})
	}
	if err := rows.Err(); err != nil {
		return extract.TableData{}, fmt.Errorf("iterate describe rows for %s: %w", tableName, err)
	}
	return table, nil
}

func quoteIdent(value string) string {
	return "`" + strings.ReplaceAll(value, "`", "``") + "`"
}
