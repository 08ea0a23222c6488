// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"testing"
	"time"

	"cofeed/pkg/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens an in-memory sqlite database with every model migrated. The pool
// is pinned to one connection so all queries see the same memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

// Befriend stores a friendship in both directions.
func Befriend(t testing.TB, db *gorm.DB, a, b string) {
	t.Helper()
	require.NoError(t, db.Create(&[]models.Friendship{
		{UserID: a, FriendID: b},
		{UserID: b, FriendID: a},
	}).Error)
}

// Base is a fixed instant tests offset their timestamps from.
var Base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func At(seconds int) time.Time {
	return Base.Add(time.Duration(seconds) * time.Second)
}

func Ptr[T any](v T) *T {
	return &v
}
