package sqlbuilder

import (
	"context"
	"errors"
)

// Delete assembles a DELETE statement. An unconditional DELETE is never
// produced: without WHERE conditions the rendered statement matches nothing
// and Run refuses to execute.
type Delete struct {
	WhereBuilder
	table string
	exec  Executor
	err   error
}

// NewDelete starts a DELETE against the given table.
func NewDelete(table string) *Delete {
	return &Delete{table: table}
}

// WithExecutor injects the statement executor.
func (b *Delete) WithExecutor(exec Executor) *Delete {
	b.exec = exec
	return b
}

// SQL renders the statement. With no conditions the WHERE 1=0 sentinel
// keeps the statement harmless.
func (b *Delete) SQL() string {
	if len(b.conditions) == 0 {
		return "DELETE FROM " + b.table + " WHERE 1=0"
	}
	return "DELETE FROM " + b.table + b.WhereClause()
}

// Err returns the first assembly or execution error.
func (b *Delete) Err() error {
	return b.err
}

// Run executes the statement and returns the affected-row count. It fails
// before reaching the executor when no WHERE condition was added.
func (b *Delete) Run(ctx context.Context) (int64, error) {
	if len(b.conditions) == 0 {
		b.err = errors.New("delete must have WHERE conditions")
		return 0, b.err
	}
	exec, err := b.executor()
	if err != nil {
		b.err = err
		return 0, err
	}
	affected, err := exec.DeleteQuery(ctx, b.SQL(), b.Bindings())
	if err != nil {
		b.err = err
		return 0, err
	}
	return affected, nil
}

func (b *Delete) executor() (Executor, error) {
	if b.exec != nil {
		return b.exec, nil
	}
	return defaultExecutor()
}
