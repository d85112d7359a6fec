package sqlbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Update assembles an UPDATE statement. WHERE conditions come from the
// embedded WhereBuilder.
type Update struct {
	WhereBuilder
	table       string
	setClauses  []string
	setBindings map[string]any
	exec        Executor
	err         error
}

// NewUpdate starts an UPDATE against the given table.
func NewUpdate(table string) *Update {
	return &Update{table: table}
}

// WithExecutor injects the statement executor.
func (b *Update) WithExecutor(exec Executor) *Update {
	b.exec = exec
	return b
}

// Set records one column assignment. Blank column names are silently
// skipped.
func (b *Update) Set(column string, value any) *Update {
	col := strings.TrimSpace(column)
	if col == "" {
		return b
	}
	p := paramName(col)
	b.setClauses = append(b.setClauses, fmt.Sprintf("%s = :%s", col, p))
	if b.setBindings == nil {
		b.setBindings = make(map[string]any)
	}
	b.setBindings[p] = value
	return b
}

// SQL renders "UPDATE t SET a = :a ..." plus the WHERE clause, if any.
func (b *Update) SQL() string {
	return fmt.Sprintf("UPDATE %s SET %s", b.table, strings.Join(b.setClauses, ", ")) +
		b.WhereClause()
}

// AllBindings merges the SET bindings with the WHERE bindings.
func (b *Update) AllBindings() map[string]any {
	merged := make(map[string]any, len(b.setBindings)+len(b.bindings))
	for k, v := range b.setBindings {
		merged[k] = v
	}
	for k, v := range b.bindings {
		merged[k] = v
	}
	return merged
}

// Err returns the first assembly or execution error.
func (b *Update) Err() error {
	return b.err
}

// Run executes the statement and returns the affected-row count.
func (b *Update) Run(ctx context.Context) (int64, error) {
	if len(b.setClauses) == 0 {
		b.err = errors.New("no columns specified")
		return 0, b.err
	}
	exec, err := b.executor()
	if err != nil {
		b.err = err
		return 0, err
	}
	affected, err := exec.UpdateQuery(ctx, b.SQL(), b.AllBindings())
	if err != nil {
		b.err = err
		return 0, err
	}
	return affected, nil
}

func (b *Update) executor() (Executor, error) {
	if b.exec != nil {
		return b.exec, nil
	}
	return defaultExecutor()
}
