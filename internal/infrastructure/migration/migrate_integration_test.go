//go:build integration

package migration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/troves/backend/migrations"
)

func TestMigrator_UpDown(t *testing.T) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("troves_test"),
		tcpostgres.WithUsername("troves"),
		tcpostgres.WithPassword("troves"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := New(db, migrations.FS, zap.NewNop())
	require.NoError(t, err)

	st, err := m.Status()
	require.NoError(t, err)
	assert.False(t, st.Applied)

	require.NoError(t, m.Up())
	require.NoError(t, m.Up(), "second run is a no-op")

	st, err = m.Status()
	require.NoError(t, err)
	assert.True(t, st.Applied)
	assert.False(t, st.Dirty)
	assert.Equal(t, uint(4), st.Version)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n))
	assert.Zero(t, n)

	require.NoError(t, m.Steps(-1))
	st, err = m.Status()
	require.NoError(t, err)
	assert.Equal(t, uint(3), st.Version)

	require.NoError(t, m.Down())
}
