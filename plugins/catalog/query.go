package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/va6996/boulderagent/log"
)

// Executor runs ad-hoc read statements against the catalog. Each call
// opens a fresh read-only connection, runs exactly one statement, and
// closes it. Write protection comes from the connection mode, not from
// inspecting the statement text.
type Executor struct {
	Path string
}

// NewExecutor creates a query executor for the database at path
func NewExecutor(path string) *Executor {
	return &Executor{Path: path}
}

// RunQuery executes one read statement and returns the rows as column
// name to value mappings. Any failure is returned inline as a single
// row with an "error" key; this function never returns an error to the
// caller.
func (e *Executor) RunQuery(ctx context.Context, query string) []map[string]any {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", e.Path))
	if err != nil {
		return errorRow(err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		log.Debugf(ctx, "Catalog query failed: %v", err)
		return errorRow(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return errorRow(err)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		scan := make([]any, len(cols))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return errorRow(err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return errorRow(err)
	}

	return results
}

func errorRow(err error) []map[string]any {
	return []map[string]any{{"error": err.Error()}}
}
