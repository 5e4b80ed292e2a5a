package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tend/internal/config"
	"github.com/aretw0/tend/internal/logging"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(Options{Backend: config.BackendSQLite, Debug: true})
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = LoadConfig(Options{Backend: "etcd"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		b, err := OpenBackend(ctx, config.Defaults())
		require.NoError(t, err)
		assert.NotNil(t, b.Repository)
		assert.Nil(t, b.Locker)
		assert.Nil(t, b.Closer)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Defaults()
		cfg.Backend = config.BackendRedis
		cfg.Redis.Addr = mr.Addr()

		b, err := OpenBackend(ctx, cfg)
		require.NoError(t, err)
		defer b.Closer.Close()
		assert.NotNil(t, b.Locker)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := config.Defaults()
		cfg.Backend = config.BackendRedis
		cfg.Redis.Addr = addr

		_, err := OpenBackend(ctx, cfg)
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Backend = "etcd"
		_, err := OpenBackend(ctx, cfg)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestNewApp_SQLitePersists(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()
	cfg.Backend = config.BackendSQLite
	cfg.SQLite.DSN = filepath.Join(t.TempDir(), "tend.db")
	cfg.Servers.Initial = 2

	app, err := NewApp(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, app.Servers().Get())
	assert.NotNil(t, app.Metrics())

	item, err := app.Tasks().Add(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, domain.Item{ID: 6, Name: "persisted"}, item)
	require.NoError(t, app.Close())

	app, err = NewApp(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	items, err := app.Tasks().Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 6, "reopening must not seed again")
	assert.Equal(t, item, items[0])
}

func TestNewApp_CustomSeed(t *testing.T) {
	cfg := config.Defaults()
	cfg.Seed = []config.SeedItem{{Name: "water plants"}, {Name: "pay rent", Completed: true}}

	app, err := NewApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	items, err := app.Tasks().Items(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Item{
		{ID: 1, Name: "water plants"},
		{ID: 2, Name: "pay rent", IsCompleted: true},
	}, items)
}

func TestNewApp_RedisUsesLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Defaults()
	cfg.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()

	ctx := context.Background()
	app, err := NewApp(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	item, err := app.Tasks().Add(ctx, "Task6")
	require.NoError(t, err)
	assert.Equal(t, 6, item.ID)
	assert.False(t, mr.Exists(cfg.Redis.Prefix+"lock:items"), "lock is released after the mutation")
}

func TestNewApp_StoresNamesVerbatim(t *testing.T) {
	ctx := context.Background()
	app, err := NewApp(ctx, config.Defaults(), logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	for i, name := range []string{"  Task6\t ", "   ", ""} {
		item, err := app.Tasks().Add(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, domain.Item{ID: 6 + i, Name: name}, item)

		stored, err := app.Tasks().Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, name, stored.Name)
	}
}

func TestRunDemo_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunDemo(context.Background(), &buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "demo", buf.Bytes())
}

func TestPrintItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintItems(&buf, []domain.Item{{ID: 1, Name: "a"}}, nil))
	assert.Equal(t, "[ ] #1 a\n", buf.String())

	buf.Reset()
	custom := func(items []domain.Item) (string, error) { return "custom\n", nil }
	require.NoError(t, PrintItems(&buf, nil, custom))
	assert.Equal(t, "custom\n", buf.String())
}
