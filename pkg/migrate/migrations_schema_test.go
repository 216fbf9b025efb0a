package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/albin6/cellsphere/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected one migration matching %s", pattern)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestLedgerMigrationsCarryConstraints(t *testing.T) {
	cases := map[string][]string{
		"*_create_catalog.sql": {
			"CREATE TABLE IF NOT EXISTS product_variants",
			"CHECK (stock >= 0)",
			"idx_product_variants_product_sku ON product_variants (product_id, sku)",
			"DROP TABLE IF EXISTS products",
		},
		"*_create_wallets.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_wallets_user_id",
			"CHECK (balance >= 0)",
			"transaction_status IN ('completed', 'pending', 'failed')",
		},
		"*_create_coupons.sql": {
			"CONSTRAINT coupons_code_key UNIQUE (code)",
			"idx_coupon_usages_coupon_user ON coupon_usages (coupon_id, user_id)",
		},
		"*_create_orders.sql": {
			"CHECK (quantity > 0)",
			"'Return Requested'",
			"'Cash on Delivery'",
		},
		"*_create_banners.sql": {
			"CREATE TABLE IF NOT EXISTS banners",
			"image text NOT NULL",
		},
		"*_order_lines_product_sku.sql": {
			"idx_order_lines_order_product_sku ON order_lines (order_id, product_id, sku)",
		},
	}

	for pattern, checks := range cases {
		content := readMigration(t, pattern)
		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", pattern, sub)
			}
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path, err := migrate.CreateSQLMigration(dir, "Add Wallet Index!", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20260301120000_add_wallet_index.sql"), path)
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "add wallet index", now)
	require.Error(t, err, "same version must not overwrite")

	_, err = migrate.CreateSQLMigration(dir, "!!!", now)
	require.Error(t, err)
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	require.NoError(t, migrate.ValidateEmbedded())
}

func TestValidateRejectsDownBeforeUp(t *testing.T) {
	fsys := fstest.MapFS{
		"20260301000000_bad.sql": {Data: []byte("-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n")},
	}
	require.Error(t, migrate.Validate(fsys, "."))
}

func TestParseVersion(t *testing.T) {
	v, err := migrate.ParseVersion("20260301100300")
	require.NoError(t, err)
	require.Equal(t, int64(20260301100300), v)

	_, err = migrate.ParseVersion("2026")
	require.Error(t, err)
}
