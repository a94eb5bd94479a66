// Package normalize maps raw extractor output to the canonical schema model.
// It is a pure transformation: the same raw input always yields an identical
// Database, which the store round-trip relies on.
package normalize

import (
	"fmt"

	"github.com/schemapilot/schemapilot/internal/extract"
	"github.com/schemapilot/schemapilot/internal/schema"
)

// Database builds the canonical model for one extraction run. Backend-native
// type spellings pass through untouched; ordinal positions are reassigned
// contiguously in catalog order; constraint fragments are grouped into whole
// constraints. The result is validated before it is returned.
func Database(res extract.Result) (schema.Database, error) {
	db := schema.Database{
		Name:    res.Database,
		Backend: res.Backend,
		Tables:  make([]schema.Table, 0, len(res.Tables)),
	}

	for _, raw := range res.Tables {
		db.Tables = append(db.Tables, table(raw))
	}

	if err := db.Validate(); err != nil {
		return schema.Database{}, fmt.Errorf("normalize %s schema: %w", res.Backend, err)
	}
	return db, nil
}

func table(raw extract.TableData) schema.Table {
	t := schema.Table{
		Name:   raw.Name,
		Schema: raw.Schema,
	}

	t.Columns = make([]schema.Column, 0, len(raw.Columns))
	for i, col := range raw.Columns {
		t.Columns = append(t.Columns, schema.Column{
			Name:     col.Name,
			Type:     col.DataType,
			Nullable: col.Nullable,
			Position: i + 1,
			Default:  col.Default,
			Comment:  col.Comment,
		})
	}

	t.Constraints = groupConstraints(raw.Constraints)

	for i, part := range raw.Partitions {
		t.PartitionKeys = append(t.PartitionKeys, schema.PartitionKey{
			Column:   part.Column,
			Position: i + 1,
		})
	}

	return t
}

// groupConstraints folds per-column fragments into whole constraints, keyed
// by constraint name and kind in first-seen order. Composite foreign keys
// arrive as one fragment per column with the referenced column paired on the
// same row, so columns and ref_columns accumulate in parallel.
func groupConstraints(fragments []extract.ConstraintData) []schema.Constraint {
	if len(fragments) == 0 {
		return nil
	}

	type key struct {
		name string
		kind schema.ConstraintKind
	}
	index := make(map[key]int)
	grouped := make([]schema.Constraint, 0, len(fragments))

	for _, frag := range fragments {
		k := key{name: frag.Name, kind: frag.Kind}
		i, ok := index[k]
		if !ok {
			i = len(grouped)
			index[k] = i
			grouped = append(grouped, schema.Constraint{
				Name:     frag.Name,
				Kind:     frag.Kind,
				RefTable: frag.RefTable,
			})
		}

		// Columns and ref_columns stay parallel: a fragment either
		// contributes to both lists or to neither.
		c := &grouped[i]
		if frag.Column != "" && !contains(c.Columns, frag.Column) {
			c.Columns = append(c.Columns, frag.Column)
			if frag.Kind == schema.ConstraintForeignKey && frag.RefColumn != "" {
				c.RefColumns = append(c.RefColumns, frag.RefColumn)
			}
		}
	}

	return grouped
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
