package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"collatzgraph/internal/domain"
	"collatzgraph/internal/repository"

	_ "modernc.org/sqlite"
)

var _ repository.Repository = (*Repository)(nil)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if !strings.Contains(dbPath, ":memory:") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(dbPath, ":memory:") {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seeds TEXT NOT NULL,
		bit_bound INTEGER NOT NULL,
		total INTEGER NOT NULL,
		previous_total INTEGER NOT NULL DEFAULT 0,
		partitions INTEGER NOT NULL DEFAULT 0,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		digest TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_counts (
		run_id TEXT NOT NULL,
		mod3 INTEGER NOT NULL,
		length INTEGER NOT NULL,
		color INTEGER NOT NULL,
		parity INTEGER NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (run_id, mod3, length, color, parity),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seeds_bound ON runs(seeds, bit_bound);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveRun stores a run header and its table in one transaction
func (r *Repository) SaveRun(ctx context.Context, run *domain.Run) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_counts WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("failed to clear counts: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runInsertArgs(run)...)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_counts (run_id, mod3, length, color, parity, count)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare count insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range run.Table.Entries() {
		if _, err := stmt.ExecContext(ctx, run.ID, e.Mod3, e.Length, int(e.Color), int(e.Parity), int64(e.Count)); err != nil {
			return fmt.Errorf("failed to insert count %s: %w", e.Tuple, err)
		}
	}

	return tx.Commit()
}

// GetRun loads a run by ID with its table
func (r *Repository) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	var row runRow
	err := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	run := row.toDomain()
	if err := r.loadTable(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// FindRun loads the newest run for seeds under bitBound
func (r *Repository) FindRun(ctx context.Context, seeds string, bitBound int) (*domain.Run, error) {
	var row runRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE seeds = ? AND bit_bound = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, seeds, bitBound).Scan(row.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run for %s under %d bits: %w", seeds, bitBound, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	run := row.toDomain()
	if err := r.loadTable(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *Repository) loadTable(ctx context.Context, run *domain.Run) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mod3, length, color, parity, count
		FROM run_counts WHERE run_id = ?
	`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	var entries []domain.TableEntry
	for rows.Next() {
		var (
			e             domain.TableEntry
			color, parity int
			count         int64
		)
		if err := rows.Scan(&e.Mod3, &e.Length, &color, &parity, &count); err != nil {
			return fmt.Errorf("failed to scan count: %w", err)
		}
		e.Color = domain.Color(color)
		e.Parity = domain.Parity(parity)
		e.Count = uint64(count)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating counts: %w", err)
	}

	table, err := domain.TableFromEntries(entries)
	if err != nil {
		return fmt.Errorf("run %s: %w", run.ID, err)
	}
	run.Table = table
	return nil
}

// ListRuns returns run headers, newest first
func (r *Repository) ListRuns(ctx context.Context, filter repository.RunFilter) ([]*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []interface{}
	if filter.Seeds != "" {
		query += ` WHERE seeds = ?`
		args = append(args, filter.Seeds)
	}
	query += ` ORDER BY created_at DESC, bit_bound DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*domain.Run, 0)
	for rows.Next() {
		var row runRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run; its counts go with it
func (r *Repository) DeleteRun(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_counts WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete counts: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	return tx.Commit()
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
