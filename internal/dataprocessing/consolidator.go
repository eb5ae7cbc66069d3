package dataprocessing

import (
	"errors"
	"fmt"
	"strings"

	apperrors "xlmerge/internal/errors"
	"xlmerge/pkg/contracts/domain"
)

// ErrNothingToConsolidate is returned when there are no record sets at all
var ErrNothingToConsolidate = errors.New("no record sets to consolidate")

// Consolidate concatenates sets in order, projects every row onto columns
// and drops rows equal to an earlier row across all retained columns.
//
// A set missing any retained column fails the whole consolidation with a
// SCHEMA error. Blank sets (no header, no rows) contribute nothing, but at
// least one set must carry the retained columns.
func Consolidate(sets []*domain.RecordSet, columns []string) (*domain.ConsolidatedTable, error) {
	if len(sets) == 0 {
		return nil, ErrNothingToConsolidate
	}

	table := &domain.ConsolidatedTable{
		Columns: append([]string(nil), columns...),
	}
	seen := make(map[string]struct{})
	contributed := false

	for _, rs := range sets {
		if rs.IsBlank() {
			continue
		}
		contributed = true

		index, err := projection(rs, columns)
		if err != nil {
			return nil, err
		}

		for _, row := range rs.Rows {
			projected := make(domain.Row, len(index))
			for i, src := range index {
				if src < len(row) {
					projected[i] = row[src]
				}
			}
			table.InputRows++

			key := projected.Key()
			if _, dup := seen[key]; dup {
				table.DuplicatesRemoved++
				continue
			}
			seen[key] = struct{}{}
			table.Rows = append(table.Rows, projected)
		}
	}

	if !contributed && len(columns) > 0 {
		return nil, apperrors.NewSchemaError(
			fmt.Sprintf("columns not found in any record set: %s", strings.Join(quoteAll(columns), ", "))).
			WithContext("missing", append([]string(nil), columns...)).
			WithContext("sets", len(sets))
	}

	return table, nil
}

// projection maps each retained column to its position in rs
func projection(rs *domain.RecordSet, columns []string) ([]int, error) {
	index := make([]int, len(columns))
	var missing []string
	for i, col := range columns {
		pos, ok := rs.ColumnIndex(col)
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[i] = pos
	}

	if len(missing) > 0 {
		return nil, apperrors.NewSchemaError(
			fmt.Sprintf("columns not found in %s: %s", rs.Source, strings.Join(quoteAll(missing), ", "))).
			WithContext("source", rs.Source).
			WithContext("missing", missing).
			WithContext("available", rs.Columns)
	}
	return index, nil
}

func quoteAll(names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return quoted
}
