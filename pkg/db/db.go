// Package db is a thin wrapper over pgx that executes squirrel builders
// and funnels every query through one place for logging and transactions.
package db

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowScanner = func(rows pgx.Rows) error

type DB struct {
	logger *log.Logger
	pool   *pgxpool.Pool
	conn   queryer
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func New(pool *pgxpool.Pool, logger *log.Logger) *DB {
	return &DB{
		logger: logger,
		pool:   pool,
		conn:   pool,
	}
}

// Connect opens a pool against dsn and pings it.
func Connect(ctx context.Context, dsn string, logger *log.Logger) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(pool, logger), nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

func (db *DB) Select(ctx context.Context, query squirrel.SelectBuilder, scanner rowScanner) error {
	sql, args, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("build select query: %w", err)
	}
	if err := db.query(ctx, sql, args, scanner); err != nil {
		return fmt.Errorf("exec select query: %w", err)
	}
	return nil
}

func (db *DB) Insert(ctx context.Context, query squirrel.InsertBuilder, scanner rowScanner) error {
	sql, args, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	if err := db.query(ctx, sql, args, scanner); err != nil {
		return fmt.Errorf("exec insert query: %w", err)
	}
	return nil
}

// RawExec runs DDL or statements with no result rows.
func (db *DB) RawExec(ctx context.Context, sql string, args ...interface{}) error {
	rows, err := db.conn.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("exec statement: %w", err)
	}
	rows.Close()
	return rows.Err()
}

// RawQuery runs a literal SQL query through the shared scan loop.
func (db *DB) RawQuery(ctx context.Context, scanner rowScanner, sql string, args ...interface{}) error {
	return db.query(ctx, sql, args, scanner)
}

func (db *DB) query(ctx context.Context, sql string, args []interface{}, scanner rowScanner) error {
	db.logger.Debug("query", "sql", sql)

	rows, err := db.conn.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("exec query: %w", err)
	}
	defer rows.Close()

	var anyRow bool
	for rows.Next() {
		if scanner == nil {
			continue
		}
		if err := scanner(rows); err != nil {
			return fmt.Errorf("handle row: %w", err)
		}
		anyRow = true
	}

	// Err must only be checked after Next returns false.
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading query result: %w", err)
	}

	if scanner != nil && !anyRow {
		return pgx.ErrNoRows
	}
	return nil
}

// RunInTransaction executes f within one database transaction; queries
// issued through the passed DB ride that transaction.
func (db *DB) RunInTransaction(ctx context.Context, f func(ctx context.Context, txDB *DB) error) error {
	err := pgx.BeginTxFunc(ctx, db.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		txDB := &DB{
			logger: db.logger,
			pool:   db.pool,
			conn:   tx,
		}
		return f(ctx, txDB)
	})
	if err != nil {
		return fmt.Errorf("run transaction: %w", err)
	}
	return nil
}

// ScanOnce scans a single row's columns into dest.
func ScanOnce(dest ...interface{}) rowScanner {
	return func(rows pgx.Rows) error {
		return rows.Scan(dest...)
	}
}
