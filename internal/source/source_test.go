package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwner = "68d26dcc287f9cf71fd8aa8d"

func TestFileSource_FiltersByOwner(t *testing.T) {
	src := NewFileSource("../../testdata/records.json")

	records, err := src.Fetch(context.Background(), testOwner)
	require.NoError(t, err)
	var ids []string
	for _, r := range records {
		ids = append(ids, r.EscrowAccountIdentifier)
	}
	assert.Equal(t, []string{"ESC-1001", "ESC-1002", "ESC-1003", "ESC-1004", "ESC-1005"}, ids)

	all, err := src.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 6)

	none, err := src.Fetch(context.Background(), "000000000000000000000000")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFileSource_YAML(t *testing.T) {
	records, err := NewFileSource("../../testdata/records.yaml").Fetch(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, records, 1, "documents without an owner are always included")
}

func TestFileSource_NotASequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ownership": "acme"}`), 0o644))

	_, err := NewFileSource(path).Fetch(context.Background(), testOwner)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotASequence)
}

func TestFileSource_ByteOrderMark(t *testing.T) {
	data, err := os.ReadFile("../../testdata/records.json")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, append([]byte("\xEF\xBB\xBF"), data...), 0o644))

	records, err := NewFileSource(path).Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, records, 6)
}

func TestFileSource_Missing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.json")).Fetch(context.Background(), testOwner)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileSource("../../testdata/records.json").Fetch(ctx, testOwner)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(NewFileSource("x.json"))
	r.Register(NewPostgresSource(nil, ""))

	s, err := r.Get("FILE")
	require.NoError(t, err)
	assert.Equal(t, "file", s.Kind())

	_, err = r.Get("mongo")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Contains(t, err.Error(), "file, postgres")

	assert.Panics(t, func() { r.Register(NewFileSource("y.json")) })
}

func TestPostgresSource_Query(t *testing.T) {
	assert.Equal(t, `SELECT document FROM "txn_escrow" WHERE owner_id = $1 ORDER BY id`, NewPostgresSource(nil, "").query())
	assert.Equal(t, `SELECT document FROM "escrow ""docs""" WHERE owner_id = $1 ORDER BY id`, NewPostgresSource(nil, `escrow "docs"`).query())
}

func TestPostgresSource_Fetch(t *testing.T) {
	url := os.Getenv("DISBURSE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("DISBURSE_TEST_DATABASE_URL not set, skipping database test")
	}
	ctx := context.Background()

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS disburse_test`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `CREATE TABLE disburse_test (id bigserial PRIMARY KEY, owner_id text NOT NULL, document jsonb NOT NULL)`)
	require.NoError(t, err)
	defer func() { _, _ = pool.Exec(ctx, `DROP TABLE IF EXISTS disburse_test`) }()
	_, err = pool.Exec(ctx, `INSERT INTO disburse_test (owner_id, document) VALUES
		($1, '{"ownership": "acme", "balance": 10, "escrow": {"accountNum": "A"}}'),
		('other', '{"ownership": "acme", "escrow": {"accountNum": "B"}}'),
		($1, '{"ownership": "acme", "disbursementRules": [[{"percentage": 100}]], "escrow": {"accountNum": "C"}}')`, testOwner)
	require.NoError(t, err)

	records, err := NewPostgresSource(pool, "disburse_test").Fetch(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].EscrowAccountIdentifier)
	assert.Equal(t, "C", records[1].EscrowAccountIdentifier)
	require.Len(t, records[1].Rules, 1)
}
