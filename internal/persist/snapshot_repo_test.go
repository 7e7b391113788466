package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sgengine/sge/internal/config"
)

// openTestDB connects to the database named by SGE_TEST_DSN or skips.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("SGE_TEST_DSN")
	if dsn == "" {
		t.Skip("SGE_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	version, err := db.RunMigrations(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, int64(1))
	return db
}

func TestSnapshotRepo_SaveAndLatest(t *testing.T) {
	db := openTestDB(t)
	repo := NewSnapshotRepo(db)
	ctx := context.Background()

	runID := uuid.NewString()
	rows := []EntityRow{
		{PregenID: 4, Tag: "player", Position: [3]float32{1, 2, 3}, Velocity: [3]float32{0, 1, 0}},
		{PregenID: 2, Position: [3]float32{-1, 0, 0}, Acceleration: [3]float32{0, -9.8, 0}},
	}
	id, err := repo.Save(ctx, runID, 42, rows)
	require.NoError(t, err)

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, runID, got.RunID)
	assert.Equal(t, uint64(42), got.Tick)
	require.Len(t, got.Entities, 2)
	assert.Equal(t, uint32(2), got.Entities[0].PregenID, "ordered by pregen id")
	assert.Equal(t, "player", got.Entities[1].Tag)
	assert.Equal(t, [3]float32{1, 2, 3}, got.Entities[1].Position)

	_, err = repo.Prune(ctx, 1)
	require.NoError(t, err)
	got, err = repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID, "prune keeps the newest")
}

func TestNewDB_BadDSN(t *testing.T) {
	_, err := NewDB(context.Background(), config.DatabaseConfig{DSN: "::not a dsn::"}, zap.NewNop())
	assert.Error(t, err)
}

func TestRunMigrations_LogsVersion(t *testing.T) {
	dsn := os.Getenv("SGE_TEST_DSN")
	if dsn == "" {
		t.Skip("SGE_TEST_DSN not set")
	}
	core, logs := observer.New(zap.InfoLevel)
	ctx := context.Background()
	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2}, zap.New(core))
	require.NoError(t, err)
	defer db.Close()

	version, err := db.RunMigrations(ctx)
	require.NoError(t, err)
	entries := logs.FilterMessage("schema migrated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, version, entries[0].ContextMap()["version"])
}
