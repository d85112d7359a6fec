package sqlbuilder

import (
	"context"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"quiver/config"
)

// Executor runs assembled statements. The statement assemblers hand it the
// rendered SQL plus the named-binding map; the executor owns the connection
// and the binding translation for its driver.
type Executor interface {
	InsertQuery(ctx context.Context, query string, bindings map[string]any) (int64, error)
	UpdateQuery(ctx context.Context, query string, bindings map[string]any) (int64, error)
	DeleteQuery(ctx context.Context, query string, bindings map[string]any) (int64, error)
	SelectQuery(ctx context.Context, query string, bindings map[string]any, dest any) error
}

// SQLExecutor executes statements against an sqlx database handle using
// named bindings.
type SQLExecutor struct {
	db *sqlx.DB
}

// NewSQLExecutor wraps an existing sqlx handle.
func NewSQLExecutor(db *sqlx.DB) *SQLExecutor {
	return &SQLExecutor{db: db}
}

// InsertQuery executes an INSERT and returns the last-insert identifier.
// Drivers without LastInsertId support (lib/pq) report the affected-row
// count instead.
func (e *SQLExecutor) InsertQuery(ctx context.Context, query string, bindings map[string]any) (int64, error) {
	res, err := e.db.NamedExecContext(ctx, query, bindings)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return res.RowsAffected()
	}
	return id, nil
}

// UpdateQuery executes an UPDATE and returns the affected-row count.
func (e *SQLExecutor) UpdateQuery(ctx context.Context, query string, bindings map[string]any) (int64, error) {
	return e.execAffected(ctx, query, bindings)
}

// DeleteQuery executes a DELETE and returns the affected-row count.
func (e *SQLExecutor) DeleteQuery(ctx context.Context, query string, bindings map[string]any) (int64, error) {
	return e.execAffected(ctx, query, bindings)
}

func (e *SQLExecutor) execAffected(ctx context.Context, query string, bindings map[string]any) (int64, error) {
	res, err := e.db.NamedExecContext(ctx, query, bindings)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SelectQuery executes a SELECT and scans all rows into dest, which must be
// a pointer to a slice.
func (e *SQLExecutor) SelectQuery(ctx context.Context, query string, bindings map[string]any, dest any) error {
	q, args, err := e.db.BindNamed(query, bindings)
	if err != nil {
		return err
	}
	return e.db.SelectContext(ctx, dest, q, args...)
}

var (
	defaultExec     Executor
	defaultExecErr  error
	defaultExecOnce sync.Once
)

// defaultExecutor lazily opens a database from the loaded configuration.
// Assemblers fall back to it when no executor was injected.
func defaultExecutor() (Executor, error) {
	defaultExecOnce.Do(func() {
		cfg := config.Current()
		if cfg == nil || cfg.Database.DSN == "" {
			defaultExecErr = errors.New("no statement executor configured")
			return
		}
		db, err := sqlx.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			defaultExecErr = err
			return
		}
		defaultExec = NewSQLExecutor(db)
	})
	return defaultExec, defaultExecErr
}
