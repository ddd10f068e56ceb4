package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/tierlist/config"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: votes.user_id")))
	assert.False(t, IsUniqueViolation(errors.New("no such table")))
}

type probe struct {
	ID   uint
	Name string `gorm:"uniqueIndex"`
}

func TestInitDBSqlite(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}}
	db, err := InitDB(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db, &probe{}))
	require.NoError(t, Ping(db))

	require.NoError(t, db.Create(&probe{Name: "a"}).Error)
	err = db.Create(&probe{Name: "a"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestInitDBUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.Config{Database: config.DatabaseConfig{Driver: "mysql", DSN: "x"}})
	assert.Error(t, err)
}
