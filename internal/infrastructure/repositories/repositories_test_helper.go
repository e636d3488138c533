package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		plan TEXT NOT NULL DEFAULT 'FREE',
		token_balance_micro INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createPaymentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		purpose TEXT NOT NULL,
		plan TEXT,
		package_id TEXT,
		order_id TEXT,
		amount_usd TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		network TEXT,
		wallet_address TEXT,
		reference TEXT NOT NULL UNIQUE,
		provider TEXT NOT NULL,
		tx_hash TEXT,
		status TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		submitted_at DATETIME,
		verified_at DATETIME,
		verified_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createMarketplaceTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE listings (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		amount_cents INTEGER NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		purchase_count INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		listing_id TEXT NOT NULL,
		buyer_id TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		status TEXT NOT NULL,
		provider TEXT,
		provider_ref TEXT,
		paid_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE license_keys (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL UNIQUE,
		buyer_id TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		key TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME
	);`)
}

func createUsageTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE usage_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount_micro INTEGER NOT NULL,
		description TEXT,
		analysis_id TEXT,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE analyses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		cost_micro INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		anomalies INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
