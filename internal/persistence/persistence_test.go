package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinic-kit/medapp/internal/config"
)

type recordingDB struct {
	statements []string
	failOn     string
}

func (r *recordingDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	if sql == r.failOn {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	r.statements = append(r.statements, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (r *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (r *recordingDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestRunMigrations_AppliesSQLFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "002_second.sql", "SELECT 2;")
	writeMigration(t, dir, "001_first.sql", "SELECT 1;")
	writeMigration(t, dir, "README.md", "not sql")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o750))

	db := &recordingDB{}
	require.NoError(t, RunMigrations(context.Background(), db, dir, zap.NewNop()))
	assert.Equal(t, []string{"SELECT 1;", "SELECT 2;"}, db.statements)
}

func TestRunMigrations_Errors(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "001_bad.sql", "BROKEN")

	err := RunMigrations(context.Background(), &recordingDB{failOn: "BROKEN"}, dir, zap.NewNop())
	assert.ErrorContains(t, err, "001_bad.sql")

	err = RunMigrations(context.Background(), &recordingDB{}, filepath.Join(dir, "missing"), zap.NewNop())
	assert.ErrorContains(t, err, "read migrations")

	assert.NoError(t, RunMigrations(context.Background(), nil, dir, zap.NewNop()))
}

func TestRepositoryMigrationsApplyCleanly(t *testing.T) {
	db := &recordingDB{}
	require.NoError(t, RunMigrations(context.Background(), db, filepath.Join("..", "..", "migrations"), zap.NewNop()))
	require.NotEmpty(t, db.statements)
	assert.Contains(t, db.statements[0], "CREATE TABLE IF NOT EXISTS accounts")
}

func TestUnconfiguredDependencies(t *testing.T) {
	ctx := context.Background()

	pg, err := NewPostgres(ctx, config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, pg.Configured())
	assert.Error(t, pg.Ping(ctx))
	assert.Nil(t, pg.PoolHandle())
	pg.Close()

	r := NewRedis(config.RedisConfig{}, zap.NewNop())
	assert.Nil(t, r)
	assert.False(t, r.Configured())
	assert.Error(t, r.Ping(ctx))
	r.Close()
}
