// Package prompt renders the canonical schema model and a user question into
// a generation request. The rendering is deterministic: tables, columns and
// constraints appear in stored order and nothing is truncated, so the same
// schema and question always produce the same payload.
package prompt

import (
	"fmt"
	"strings"

	"github.com/schemapilot/schemapilot/internal/nl2sql"
	"github.com/schemapilot/schemapilot/internal/schema"
)

// Dialect hints are selected by the backend kind alone; it is the only place
// outside extraction that looks at the tag.
var dialectHints = map[schema.Backend]string{
	schema.BackendPostgres: "Target dialect: PostgreSQL. " +
		"PostgreSQL-specific functions and syntax (date_trunc, ILIKE, string_agg, window functions) are available. " +
		"Respect the declared constraints when joining tables.",
	schema.BackendHive: "Target dialect: HiveQL. " +
		"Hive enforces no primary or foreign key constraints, supports only equality join conditions, " +
		"and tables may be partitioned; filter on partition columns where possible to limit the scan.",
}

// Build produces the generation request for a database and question pair.
func Build(db schema.Database, question string) nl2sql.Request {
	var system strings.Builder
	fmt.Fprintf(&system, "You are a %s expert. ", strings.ToUpper(string(db.Backend)))
	system.WriteString("Convert the user's question into a single SQL statement for the database described below.\n")
	system.WriteString("Rules:\n")
	system.WriteString("1. Return only SQL code and SQL comments (-- or /* */).\n")
	system.WriteString("2. Do not add explanations outside the SQL.\n")
	system.WriteString("3. Do not wrap the answer in markdown fences.\n")
	fmt.Fprintf(&system, "4. The statement must be directly executable on %s.\n", strings.ToUpper(string(db.Backend)))
	system.WriteString(dialectHints[db.Backend])

	var user strings.Builder
	fmt.Fprintf(&user, "Database: %s (%s)\n\n", db.Name, db.Backend)
	for _, table := range db.Tables {
		renderTable(&user, table)
	}
	fmt.Fprintf(&user, "Question: %s\n", question)

	return nl2sql.Request{
		System: system.String(),
		User:   user.String(),
	}
}

func renderTable(w *strings.Builder, table schema.Table) {
	if table.Schema != "" {
		fmt.Fprintf(w, "Table: %s (schema: %s)\n", table.Name, table.Schema)
	} else {
		fmt.Fprintf(w, "Table: %s\n", table.Name)
	}

	w.WriteString("Columns:\n")
	for _, col := range table.Columns {
		fmt.Fprintf(w, "  - %s %s %s", col.Name, col.Type, nullability(col.Nullable))
		if col.Default != nil {
			fmt.Fprintf(w, " DEFAULT %s", *col.Default)
		}
		if col.Comment != "" {
			fmt.Fprintf(w, " COMMENT '%s'", col.Comment)
		}
		w.WriteString("\n")
	}

	if len(table.Constraints) > 0 {
		w.WriteString("Constraints:\n")
		for _, c := range table.Constraints {
			fmt.Fprintf(w, "  - %s (%s)", c.Kind, strings.Join(c.Columns, ", "))
			if c.Kind == schema.ConstraintForeignKey {
				fmt.Fprintf(w, " references %s (%s)", c.RefTable, strings.Join(c.RefColumns, ", "))
			}
			w.WriteString("\n")
		}
	}

	if len(table.PartitionKeys) > 0 {
		w.WriteString("Partition keys:\n")
		for _, pk := range table.PartitionKeys {
			fmt.Fprintf(w, "  %d. %s\n", pk.Position, pk.Column)
		}
	}

	w.WriteString("\n")
}

func nullability(nullable bool) string {
	if nullable {
		return "NULL"
	}
	return "NOT NULL"
}
