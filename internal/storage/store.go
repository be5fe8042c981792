package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	_ "modernc.org/sqlite"

	"vaxcli/internal/config"
	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

// Store appends processed tables into the relational store.
// It is used from a single goroutine.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Open connects to the configured database and verifies the connection
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	d, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := DSN(cfg, true)
	if err != nil {
		return nil, err
	}
	db, err := connect(ctx, d, dsn, cfg)
	if err != nil {
		return nil, err
	}
	return NewStore(db, d, logger), nil
}

// NewStore wraps an open handle
func NewStore(db *sql.DB, d Dialect, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, dialect: d, logger: logger}
}

func connect(ctx context.Context, d Dialect, dsn string, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, apperrors.NewConnectionError("connect to "+d.Name, err)
	}
	if d.Name == SQLite.Name {
		db.SetMaxOpenConns(1)
	}
	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, apperrors.NewConnectionError("connect to "+d.Name, err)
	}
	return db, nil
}

// CreateDatabase creates the configured database when it does not exist.
// SQLite databases are files created on first connection.
func CreateDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) error {
	d, err := DialectFor(cfg.Driver)
	if err != nil {
		return err
	}
	dsn, err := DSN(cfg, false)
	if err != nil {
		return err
	}
	db, err := connect(ctx, d, dsn, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	switch d.Name {
	case MySQL.Name:
		_, err = db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+d.Quote(cfg.Name))
	case Postgres.Name:
		var exists bool
		err = db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Name).Scan(&exists)
		if err == nil && !exists {
			_, err = db.ExecContext(ctx, "CREATE DATABASE "+d.Quote(cfg.Name))
		}
	}
	if err != nil {
		return apperrors.NewStorageError("create database "+cfg.Name, err)
	}
	logger.InfoContext(ctx, "database ready", slog.String("driver", d.Name), slog.String("database", cfg.Name))
	return nil
}

// Close releases the connection
func (s *Store) Close() error { return s.db.Close() }

// Dialect returns the store's dialect
func (s *Store) Dialect() Dialect { return s.dialect }

// CreateTables creates every entity table that does not exist yet
func (s *Store) CreateTables(ctx context.Context) error {
	for _, schema := range Schemas {
		if _, err := s.db.ExecContext(ctx, schema.CreateTableSQL(s.dialect)); err != nil {
			return apperrors.NewStorageError("create table "+schema.Name(), err)
		}
		s.logger.InfoContext(ctx, "table ready", slog.String("table", schema.Name()))
	}
	return nil
}

// ClearTables deletes all rows of the given tables
func (s *Store) ClearTables(ctx context.Context, schemas ...Schema) error {
	for _, schema := range schemas {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+s.dialect.Quote(schema.Name())); err != nil {
			return apperrors.NewStorageError("clear table "+schema.Name(), err)
		}
		s.logger.InfoContext(ctx, "table cleared", slog.String("table", schema.Name()))
	}
	return nil
}

// Count returns the number of rows in a table
func (s *Store) Count(ctx context.Context, schema Schema) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.dialect.Quote(schema.Name())).Scan(&n)
	if err != nil {
		return 0, apperrors.NewStorageError("count "+schema.Name(), err)
	}
	return n, nil
}

// AppendTable inserts every row of t inside one transaction. Only columns
// present in both t and the schema are written; the others are listed in
// Skipped. Missing values become NULL and strings are truncated to the
// column length.
func (s *Store) AppendTable(ctx context.Context, schema Schema, t *table.Table) (domain.LoadSummary, error) {
	summary := domain.LoadSummary{Table: schema.Name()}

	var cols []Column
	for _, name := range t.Columns {
		if c, ok := schema.Column(name); ok {
			cols = append(cols, c)
		} else {
			summary.Skipped = append(summary.Skipped, name)
		}
	}
	if len(cols) == 0 {
		err := apperrors.NewMissingKeyError(schema.Name(), columnNames(schema.Columns))
		summary.Error = err.Error()
		return summary, err
	}

	names := make([]string, len(cols))
	binds := make([]string, len(cols))
	for i, c := range cols {
		names[i] = s.dialect.Quote(c.Name)
		binds[i] = s.dialect.BindVar(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.dialect.Quote(schema.Name()), strings.Join(names, ", "), strings.Join(binds, ", "))

	fail := func(err error) (domain.LoadSummary, error) {
		err = apperrors.NewStorageError("append "+schema.Name(), err)
		summary.Rows = 0
		summary.Error = err.Error()
		return summary, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return fail(err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for r := range t.Rows {
		for i, c := range cols {
			var truncated bool
			args[i], truncated = bindValue(c, t.Get(r, c.Name))
			if truncated {
				summary.Truncated++
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return fail(fmt.Errorf("row %d: %w", r+1, err))
		}
		summary.Rows++
	}
	if err := tx.Commit(); err != nil {
		return fail(err)
	}

	s.logger.InfoContext(ctx, "table loaded",
		slog.String("table", schema.Name()),
		slog.Int("rows", summary.Rows),
		slog.Int("truncated", summary.Truncated),
		slog.Any("skipped_columns", summary.Skipped))
	return summary, nil
}

// bindValue converts a cell to a driver argument for the column type.
// Values that do not convert are stored as NULL.
func bindValue(c Column, v table.Value) (any, bool) {
	if v.IsMissing() {
		return nil, false
	}
	switch c.Type {
	case Integer:
		if i, ok := v.Int64(); ok {
			return i, false
		}
		return nil, false
	case Float:
		if f, ok := v.Float64(); ok {
			return f, false
		}
		return nil, false
	default:
		s := v.Text()
		if c.Length > 0 && utf8.RuneCountInString(s) > c.Length {
			return string([]rune(s)[:c.Length]), true
		}
		return s, false
	}
}

func columnNames(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
