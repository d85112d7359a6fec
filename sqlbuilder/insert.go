package sqlbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Insert assembles an INSERT statement with named bindings.
type Insert struct {
	table    string
	columns  []string
	bindings map[string]any
	exec     Executor
	err      error
}

// NewInsert starts an INSERT against the given table.
func NewInsert(table string) *Insert {
	return &Insert{table: table}
}

// WithExecutor injects the statement executor. Without one, Run lazily
// constructs the configured default.
func (b *Insert) WithExecutor(exec Executor) *Insert {
	b.exec = exec
	return b
}

// Columns records the column list.
func (b *Insert) Columns(columns ...string) *Insert {
	b.columns = append(b.columns, columns...)
	return b
}

// Values binds one value per previously recorded column. A count that does
// not match the column list fails fast rather than producing a partial
// binding set.
func (b *Insert) Values(values ...any) *Insert {
	if len(values) != len(b.columns) {
		b.err = fmt.Errorf("columns/values count mismatch: %d columns, %d values",
			len(b.columns), len(values))
		return b
	}
	if b.bindings == nil {
		b.bindings = make(map[string]any, len(values))
	}
	for i, v := range values {
		b.bindings[paramName(b.columns[i])] = v
	}
	return b
}

// SQL renders "INSERT INTO t (a, b) VALUES (:a, :b)".
func (b *Insert) SQL() string {
	placeholders := make([]string, len(b.columns))
	for i, col := range b.columns {
		placeholders[i] = ":" + paramName(col)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		b.table, strings.Join(b.columns, ", "), strings.Join(placeholders, ", "))
}

// Bindings returns the bound values keyed by parameter name.
func (b *Insert) Bindings() map[string]any {
	if b.bindings == nil {
		return map[string]any{}
	}
	return b.bindings
}

// Err returns the first assembly or execution error.
func (b *Insert) Err() error {
	return b.err
}

// Run executes the statement and returns the last-insert identifier.
func (b *Insert) Run(ctx context.Context) (int64, error) {
	if b.err != nil {
		return 0, b.err
	}
	if len(b.columns) == 0 {
		b.err = errors.New("no columns specified")
		return 0, b.err
	}
	if len(b.bindings) == 0 {
		b.err = errors.New("no values specified")
		return 0, b.err
	}
	exec, err := b.executor()
	if err != nil {
		b.err = err
		return 0, err
	}
	id, err := exec.InsertQuery(ctx, b.SQL(), b.bindings)
	if err != nil {
		b.err = err
		return 0, err
	}
	return id, nil
}

func (b *Insert) executor() (Executor, error) {
	if b.exec != nil {
		return b.exec, nil
	}
	return defaultExecutor()
}
