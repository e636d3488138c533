package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_DoCommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	u := &UnitOfWorkImpl{db: db}

	// commit path
	err := u.Do(context.Background(), func(ctx context.Context) error {
		return GetDB(ctx, db).Exec(
			"INSERT INTO users(id,email,name,password_hash,role,plan,token_balance_micro) VALUES (?,?,?,?,?,?,?)",
			uuid.New().String(), "a@echoforge.dev", "A", "hash", "USER", "FREE", 0,
		).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("users").Count(&count).Error)
	require.Equal(t, int64(1), count)

	// rollback path
	err = u.Do(context.Background(), func(ctx context.Context) error {
		if err := GetDB(ctx, db).Exec(
			"INSERT INTO users(id,email,name,password_hash,role,plan,token_balance_micro) VALUES (?,?,?,?,?,?,?)",
			uuid.New().String(), "b@echoforge.dev", "B", "hash", "USER", "FREE", 0,
		).Error; err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	require.Error(t, err)

	require.NoError(t, db.Table("users").Count(&count).Error)
	require.Equal(t, int64(1), count, "second insert must be rolled back")
}

func TestUnitOfWork_NestedDoJoinsOuterTransaction(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	u := &UnitOfWorkImpl{db: db}

	err := u.Do(context.Background(), func(outer context.Context) error {
		if err := u.Do(outer, func(inner context.Context) error {
			return GetDB(inner, db).Exec(
				"INSERT INTO users(id,email,name,password_hash,role,plan,token_balance_micro) VALUES (?,?,?,?,?,?,?)",
				uuid.New().String(), "c@echoforge.dev", "C", "hash", "USER", "FREE", 0,
			).Error
		}); err != nil {
			return err
		}
		return errors.New("outer scope fails after inner succeeded")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Table("users").Count(&count).Error)
	require.Equal(t, int64(0), count, "inner write must roll back with the outer scope")
}

func TestUnitOfWork_WithLockMarksContext(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	ctx := u.WithLock(context.Background())
	require.True(t, lockRequested(ctx))
	require.False(t, lockRequested(context.Background()))
}

func TestUnitOfWork_GetDBFallback(t *testing.T) {
	db := newTestDB(t)

	require.Equal(t, db, GetDB(context.Background(), db))

	tx := db.Begin()
	txCtx := context.WithValue(context.Background(), txKey, tx)
	require.Equal(t, tx, GetDB(txCtx, db))
	tx.Rollback()
}

func TestUnitOfWork_DoBeginFailure(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = u.Do(context.Background(), func(ctx context.Context) error {
		_ = ctx
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to begin transaction")
}
