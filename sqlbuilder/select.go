package sqlbuilder

import (
	"context"
	"strings"
)

// Select assembles a SELECT statement from the embedded WHERE and
// LIMIT builders.
type Select struct {
	WhereBuilder
	LimitBuilder
	table   string
	columns []string
	exec    Executor
	err     error
}

// NewSelect starts a SELECT against the given table.
func NewSelect(table string) *Select {
	return &Select{table: table}
}

// WithExecutor injects the statement executor.
func (b *Select) WithExecutor(exec Executor) *Select {
	b.exec = exec
	return b
}

// Columns records the column list. Without one, SELECT * is rendered.
func (b *Select) Columns(columns ...string) *Select {
	b.columns = append(b.columns, columns...)
	return b
}

// SQL renders the statement with WHERE, ORDER BY, and LIMIT clauses in
// that order.
func (b *Select) SQL() string {
	cols := "*"
	if len(b.columns) > 0 {
		cols = strings.Join(b.columns, ", ")
	}
	return "SELECT " + cols + " FROM " + b.table +
		b.WhereClause() + b.OrderClause() + b.LimitClause()
}

// Err returns the first assembly or execution error.
func (b *Select) Err() error {
	return b.err
}

// Run executes the statement and scans all rows into dest, a pointer to
// a slice.
func (b *Select) Run(ctx context.Context, dest any) error {
	exec, err := b.executor()
	if err != nil {
		b.err = err
		return err
	}
	if err := exec.SelectQuery(ctx, b.SQL(), b.Bindings(), dest); err != nil {
		b.err = err
		return err
	}
	return nil
}

func (b *Select) executor() (Executor, error) {
	if b.exec != nil {
		return b.exec, nil
	}
	return defaultExecutor()
}
