package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
	"github.com/milk9111/crawler/levels"
)

const DefaultTable = "levels"

// PostgresStore keeps each level as a YAML document in one row.
type PostgresStore struct {
	db    *sql.DB
	table string
}

func NewPostgresStore(ctx context.Context, connectionString, table string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	store, err := NewPostgresStoreFromDB(ctx, db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreFromDB wraps an open handle and makes sure the table
// exists.
func NewPostgresStoreFromDB(ctx context.Context, db *sql.DB, table string) (*PostgresStore, error) {
	if table == "" {
		table = DefaultTable
	}
	store := &PostgresStore{db: db, table: pq.QuoteIdentifier(table)}
	if err := store.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("store: initialize schema: %w", err)
	}
	return store, nil
}

func (ps *PostgresStore) initSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		name TEXT PRIMARY KEY,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		document TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`, ps.table)

	_, err := ps.db.ExecContext(ctx, schema)
	return err
}

func (ps *PostgresStore) SaveLevel(ctx context.Context, name string, level *levels.Level) error {
	if err := validateName(name); err != nil {
		return err
	}
	doc, err := levels.Marshal(level)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", name, err)
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (name, width, height, document)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (name)
	DO UPDATE SET
		width = $2, height = $3, document = $4,
		updated_at = NOW()
	`, ps.table)

	w, h := level.Size()
	if _, err := ps.db.ExecContext(ctx, query, name, w, h, string(doc)); err != nil {
		return fmt.Errorf("store: save %s: %w", name, describe(err))
	}
	return nil
}

func (ps *PostgresStore) LoadLevel(ctx context.Context, name string) (*levels.Level, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT document FROM %s WHERE name = $1`, ps.table)

	var doc string
	err := ps.db.QueryRowContext(ctx, query, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", name, describe(err))
	}

	l, err := levels.Unmarshal([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", name, err)
	}
	return l, nil
}

func (ps *PostgresStore) ListLevels(ctx context.Context) ([]string, error) {
	rows, err := ps.db.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, ps.table))
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", describe(err))
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteLevels removes several levels in one statement and reports how
// many rows went away.
func (ps *PostgresStore) DeleteLevels(ctx context.Context, names ...string) (int64, error) {
	res, err := ps.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE name = ANY($1)`, ps.table), pq.Array(names))
	if err != nil {
		return 0, fmt.Errorf("store: delete: %w", describe(err))
	}
	return res.RowsAffected()
}

func (ps *PostgresStore) DeleteLevel(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	n, err := ps.DeleteLevels(ctx, name)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (ps *PostgresStore) Close() error {
	if err := ps.db.Close(); err != nil {
		log.Printf("store: close database: %v", err)
		return err
	}
	return nil
}

// describe adds the server's error code when the failure came from
// PostgreSQL.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%w (code %s)", err, pqErr.Code)
	}
	return err
}
