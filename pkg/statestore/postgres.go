package statestore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/entityfsm/pkg/fsm"
)

// DB is the subset of *pgxpool.Pool, *pgx.Conn and pgx.Tx used by Postgres.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	selectStateSQL = `SELECT state FROM fsm_states WHERE machine = $1 AND entity = $2`
	upsertStateSQL = `INSERT INTO fsm_states (machine, entity, state, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (machine, entity) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`
	deleteStateSQL = `DELETE FROM fsm_states WHERE machine = $1 AND entity = $2`
)

// Postgres stores the values of one FSM type as rows of the fsm_states
// table, keyed by (machine, entity). Apply the schema with Migrate.
type Postgres[E comparable, S fsm.State] struct {
	db    DB
	table *fsm.Table[S]
	keyFn KeyFunc[E]
}

// PostgresOption configures a Postgres store.
type PostgresOption[E comparable, S fsm.State] func(*Postgres[E, S])

// WithPostgresKeyFunc overrides how entities are encoded in the entity column.
func WithPostgresKeyFunc[E comparable, S fsm.State](fn KeyFunc[E]) PostgresOption[E, S] {
	return func(p *Postgres[E, S]) {
		if fn != nil {
			p.keyFn = fn
		}
	}
}

// NewPostgres creates a Postgres-backed fsm.Store for the machine described by table.
func NewPostgres[E comparable, S fsm.State](db DB, table *fsm.Table[S], opts ...PostgresOption[E, S]) (*Postgres[E, S], error) {
	if db == nil {
		return nil, ErrNilClient
	}
	if table == nil {
		return nil, ErrNilTable
	}
	p := &Postgres[E, S]{
		db:    db,
		table: table,
		keyFn: DefaultKey[E],
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Postgres[E, S]) State(ctx context.Context, entity E) (S, bool, error) {
	var zero S
	var name string
	err := p.db.QueryRow(ctx, selectStateSQL, p.table.Machine(), p.keyFn(entity)).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, errors.Join(ErrReadState, err)
	}
	v, err := decode(p.table, name)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (p *Postgres[E, S]) SetState(ctx context.Context, entity E, value S) error {
	if !p.table.Has(value) {
		return errors.Join(ErrWriteState, fsm.ErrUnknownVariant)
	}
	if _, err := p.db.Exec(ctx, upsertStateSQL, p.table.Machine(), p.keyFn(entity), value.Name()); err != nil {
		return errors.Join(ErrWriteState, err)
	}
	return nil
}

// Remove detaches entity's value. Removing an absent entity is a no-op.
func (p *Postgres[E, S]) Remove(ctx context.Context, entity E) error {
	if _, err := p.db.Exec(ctx, deleteStateSQL, p.table.Machine(), p.keyFn(entity)); err != nil {
		return errors.Join(ErrRemoveState, err)
	}
	return nil
}
