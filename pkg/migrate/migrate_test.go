package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rosema/rosema-backend/pkg/config"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestProductsMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_products_table.sql")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE UNIQUE INDEX IF NOT EXISTS products_sku_key",
		"CREATE INDEX IF NOT EXISTS idx_products_category",
		"DROP TABLE IF EXISTS products",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestSalesMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_sales_tables.sql")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS sales",
		"CREATE TABLE IF NOT EXISTS sale_lines",
		"REFERENCES sales (id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_sale_lines_sale_position",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestRunUpAndDownOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_run?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, "sqlite3", "migrations", "up"))

	version, err := Version(ctx, sqlDB, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, int64(20260302090000), version)

	_, err = sqlDB.ExecContext(ctx, `INSERT INTO products (id, name, price, stock, sku, category) VALUES ('p1', 'Remera', 1000, 3, 'REM-1', 'mujer')`)
	require.NoError(t, err)

	require.NoError(t, MigrateToVersion(ctx, sqlDB, "sqlite3", "migrations", "20260301120000"))
	version, err = Version(ctx, sqlDB, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, int64(20260301120000), version)
}

func TestRunRequiresDBAndDir(t *testing.T) {
	assert.Error(t, Run(context.Background(), nil, "sqlite3", "migrations", "up"))
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", Dialect(config.DBConfig{Driver: "sqlite"}))
	assert.Equal(t, "postgres", Dialect(config.DBConfig{Driver: "postgres"}))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Sale Notes!", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260305103000_add_sale_notes.sql"), path)
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "Add Sale Notes!", now)
	assert.Error(t, err, "duplicate file should fail")

	_, err = CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, ValidateDir(dir))

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_missing_down.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))
	assert.Error(t, ValidateDir(dir))

	assert.Error(t, ValidateDir(t.TempDir()), "empty directory should fail")
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", pattern)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}
