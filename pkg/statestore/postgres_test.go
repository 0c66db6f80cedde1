package statestore_test

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entityfsm/pkg/fsm"
	"github.com/dmitrymomot/entityfsm/pkg/statestore"
)

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.value
	return nil
}

// fakeDB keeps fsm_states rows in memory and understands the three
// statements issued by the Postgres store.
type fakeDB struct {
	mu      sync.Mutex
	rows    map[string]string
	failErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: make(map[string]string)}
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.failErr != nil {
		return fakeRow{err: db.failErr}
	}
	v, ok := db.rows[args[0].(string)+"|"+args[1].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.failErr != nil {
		return pgconn.CommandTag{}, db.failErr
	}
	key := args[0].(string) + "|" + args[1].(string)
	switch {
	case strings.HasPrefix(sql, "INSERT"):
		db.rows[key] = args[2].(string)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.HasPrefix(sql, "DELETE"):
		delete(db.rows, key)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected statement")
}

func TestNewPostgres(t *testing.T) {
	t.Parallel()

	_, err := statestore.NewPostgres[int, Life](nil, lifeTable())
	assert.ErrorIs(t, err, statestore.ErrNilClient)

	_, err = statestore.NewPostgres[int, Life](newFakeDB(), nil)
	assert.ErrorIs(t, err, statestore.ErrNilTable)
}

func TestPostgres(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing entity", func(t *testing.T) {
		t.Parallel()
		store, err := statestore.NewPostgres[int, Life](newFakeDB(), lifeTable())
		require.NoError(t, err)

		_, ok, err := store.State(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then read", func(t *testing.T) {
		t.Parallel()
		db := newFakeDB()
		store, err := statestore.NewPostgres[int, Life](db, lifeTable())
		require.NoError(t, err)

		require.NoError(t, store.SetState(ctx, 1, Dying))
		require.NoError(t, store.SetState(ctx, 1, Dead))

		v, ok, err := store.State(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, Dead, v)
		assert.Equal(t, "dead", db.rows["life|1"])
	})

	t.Run("remove", func(t *testing.T) {
		t.Parallel()
		store, err := statestore.NewPostgres[int, Life](newFakeDB(), lifeTable())
		require.NoError(t, err)

		require.NoError(t, store.SetState(ctx, 1, Alive))
		require.NoError(t, store.Remove(ctx, 1))
		_, ok, err := store.State(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, store.Remove(ctx, 1))
	})

	t.Run("custom key func", func(t *testing.T) {
		t.Parallel()
		db := newFakeDB()
		store, err := statestore.NewPostgres(db, lifeTable(),
			statestore.WithPostgresKeyFunc[int, Life](func(id int) string { return "player-" + strconv.Itoa(id) }))
		require.NoError(t, err)

		require.NoError(t, store.SetState(ctx, 2, Alive))
		assert.Equal(t, "alive", db.rows["life|player-2"])
	})

	t.Run("unknown stored name", func(t *testing.T) {
		t.Parallel()
		db := newFakeDB()
		db.rows["life|1"] = "zombie"
		store, err := statestore.NewPostgres[int, Life](db, lifeTable())
		require.NoError(t, err)

		_, ok, err := store.State(ctx, 1)
		assert.ErrorIs(t, err, statestore.ErrUnknownState)
		assert.False(t, ok)
	})

	t.Run("undeclared variant write", func(t *testing.T) {
		t.Parallel()
		table := fsm.MustNewTable("life", Alive, Dying)
		store, err := statestore.NewPostgres[int, Life](newFakeDB(), table)
		require.NoError(t, err)

		err = store.SetState(ctx, 1, Dead)
		assert.ErrorIs(t, err, statestore.ErrWriteState)
		assert.ErrorIs(t, err, fsm.ErrUnknownVariant)
	})

	t.Run("backend errors", func(t *testing.T) {
		t.Parallel()
		db := newFakeDB()
		db.failErr = errors.New("connection reset")
		store, err := statestore.NewPostgres[int, Life](db, lifeTable())
		require.NoError(t, err)

		_, _, err = store.State(ctx, 1)
		assert.ErrorIs(t, err, statestore.ErrReadState)
		assert.ErrorIs(t, store.SetState(ctx, 1, Alive), statestore.ErrWriteState)
		assert.ErrorIs(t, store.Remove(ctx, 1), statestore.ErrRemoveState)
	})
}

func TestPostgresWithEngine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	table := lifeTable()
	store, err := statestore.NewPostgres[int, Life](newFakeDB(), table)
	require.NoError(t, err)

	bus := fsm.NewBus[int, Life](table)
	var entered []Life
	bus.OnAnyEnter(func(_ context.Context, _ int, s Life) { entered = append(entered, s) })

	engine := fsm.MustNew(table, fsm.Policy[Life](fsm.AllowAllPolicy[Life]{}), fsm.Store[int, Life](store), fsm.Dispatcher[int, Life](bus))
	require.NoError(t, engine.Attach(ctx, 1, Alive))
	engine.RequestTransition(ctx, 1, Dying)

	v, ok := engine.Current(ctx, 1)
	assert.True(t, ok)
	assert.Equal(t, Dying, v)
	assert.Equal(t, []Life{Alive, Dying}, entered)
}

func TestConnectPostgres(t *testing.T) {
	t.Parallel()

	t.Run("invalid connection string", func(t *testing.T) {
		t.Parallel()
		_, err := statestore.ConnectPostgres(context.Background(), statestore.PostgresConfig{
			ConnectionString: "postgres://user@localhost:notaport/db",
		})
		assert.ErrorIs(t, err, statestore.ErrFailedToParseDBConfig)
	})

	t.Run("no wait after the last attempt", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		_, err := statestore.ConnectPostgres(context.Background(), statestore.PostgresConfig{
			ConnectionString: "postgres://user@127.0.0.1:1/db?connect_timeout=2",
			MaxOpenConns:     1,
			RetryAttempts:    1,
			RetryInterval:    time.Minute,
		})
		assert.ErrorIs(t, err, statestore.ErrFailedToOpenDBConnection)
		assert.Less(t, time.Since(start), 30*time.Second)
	})

	t.Run("live database", func(t *testing.T) {
		t.Parallel()
		url := os.Getenv("PG_CONN_URL")
		if url == "" {
			t.Skip("PG_CONN_URL not set")
		}
		ctx := context.Background()
		cfg := statestore.PostgresConfig{
			ConnectionString: url,
			MaxOpenConns:     2,
			MaxIdleConns:     1,
			RetryAttempts:    1,
			MigrationsTable:  "fsm_schema_migrations",
		}
		pool, err := statestore.ConnectPostgres(ctx, cfg)
		require.NoError(t, err)
		t.Cleanup(pool.Close)

		require.NoError(t, statestore.Migrate(ctx, pool, cfg, nil))
		require.NoError(t, statestore.PostgresHealthcheck(pool)(ctx))

		store, err := statestore.NewPostgres[string, Life](pool, lifeTable())
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Remove(context.Background(), t.Name()) })

		require.NoError(t, store.SetState(ctx, t.Name(), Dying))
		v, ok, err := store.State(ctx, t.Name())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, Dying, v)
	})
}
