package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cleared-dev/disburse/internal/model"
)

// DefaultTable holds one aggregated escrow document per row:
//
//	CREATE TABLE txn_escrow (
//	    id        bigserial PRIMARY KEY,
//	    owner_id  text  NOT NULL,
//	    document  jsonb NOT NULL
//	);
const DefaultTable = "txn_escrow"

// PostgresSource reads aggregated escrow documents stored as JSONB.
type PostgresSource struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresSource creates a PostgresSource. An empty table uses DefaultTable.
func NewPostgresSource(pool *pgxpool.Pool, table string) *PostgresSource {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSource{pool: pool, table: table}
}

// Connect opens a pool for databaseURL and verifies it.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// Kind returns "postgres".
func (s *PostgresSource) Kind() string { return "postgres" }

func (s *PostgresSource) query() string {
	return fmt.Sprintf("SELECT document FROM %s WHERE owner_id = $1 ORDER BY id",
		pgx.Identifier{s.table}.Sanitize())
}

// Fetch returns the documents stored for ownerID in insertion order.
func (s *PostgresSource) Fetch(ctx context.Context, ownerID string) ([]model.AccountRecord, error) {
	rows, err := s.pool.Query(ctx, s.query(), ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}

	raw, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("reading %s rows: %w", s.table, err)
	}

	return decodeRows(raw)
}

func decodeRows(raw [][]byte) ([]model.AccountRecord, error) {
	buf := make([]byte, 0, 2)
	buf = append(buf, '[')
	for i, doc := range raw {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, doc...)
	}
	buf = append(buf, ']')

	docs, err := decodeDocuments(buf)
	if err != nil {
		return nil, err
	}
	return toRecords(docs), nil
}
