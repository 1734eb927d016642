package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"savingz.backend/internal/domain/entities"
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
		firebase_id TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		role TEXT NOT NULL DEFAULT '',
		xp INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 0,
		streak_count INTEGER NOT NULL DEFAULT 0,
		last_saved_date DATETIME,
		push_token TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createDepositTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE deposits (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		amount TEXT NOT NULL,
		symbol TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		created_at DATETIME
	);`)
}

func createNotificationTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE broadcast_notifications (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		recipient_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		broadcast_id TEXT,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME
	);`)
}

func createLedgerTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createDepositTable(t, db)
	createNotificationTables(t, db)
}

func seedUser(t *testing.T, repo *UserRepository, firebaseID, email string) *entities.User {
	t.Helper()
	u, err := repo.Upsert(context.Background(), &entities.User{FirebaseID: firebaseID, Email: email})
	require.NoError(t, err)
	return u
}

func seedDeposit(t *testing.T, repo *DepositRepository, userID uuid.UUID, amount, symbol string, at time.Time) *entities.Deposit {
	t.Helper()
	d := &entities.Deposit{
		UserID:    userID,
		Amount:    decimal.RequireFromString(amount),
		Symbol:    symbol,
		Quantity:  decimal.RequireFromString("0.001"),
		UnitPrice: decimal.NewFromInt(50000),
		CreatedAt: at,
	}
	require.NoError(t, repo.Create(context.Background(), d))
	return d
}
