package statestore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/entityfsm/pkg/fsm"
)

// Redis stores the values of one FSM type in a single hash named
// "<prefix>:<machine>". Fields are entity keys and values are variant names.
type Redis[E comparable, S fsm.State] struct {
	client redis.UniversalClient
	table  *fsm.Table[S]
	key    string
	keyFn  KeyFunc[E]
}

// RedisOption configures a Redis store.
type RedisOption[E comparable, S fsm.State] func(*Redis[E, S])

// WithKeyPrefix sets the hash name prefix. Defaults to "fsm".
func WithKeyPrefix[E comparable, S fsm.State](prefix string) RedisOption[E, S] {
	return func(r *Redis[E, S]) {
		if prefix != "" {
			r.key = prefix + ":" + r.table.Machine()
		}
	}
}

// WithRedisKeyFunc overrides how entities are encoded as hash fields.
func WithRedisKeyFunc[E comparable, S fsm.State](fn KeyFunc[E]) RedisOption[E, S] {
	return func(r *Redis[E, S]) {
		if fn != nil {
			r.keyFn = fn
		}
	}
}

// NewRedis creates a Redis-backed fsm.Store for the machine described by table.
func NewRedis[E comparable, S fsm.State](client redis.UniversalClient, table *fsm.Table[S], opts ...RedisOption[E, S]) (*Redis[E, S], error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if table == nil {
		return nil, ErrNilTable
	}
	r := &Redis[E, S]{
		client: client,
		table:  table,
		key:    "fsm:" + table.Machine(),
		keyFn:  DefaultKey[E],
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Key returns the name of the hash holding this machine's values.
func (r *Redis[E, S]) Key() string { return r.key }

func (r *Redis[E, S]) State(ctx context.Context, entity E) (S, bool, error) {
	var zero S
	name, err := r.client.HGet(ctx, r.key, r.keyFn(entity)).Result()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, errors.Join(ErrReadState, err)
	}
	v, err := decode(r.table, name)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (r *Redis[E, S]) SetState(ctx context.Context, entity E, value S) error {
	if !r.table.Has(value) {
		return errors.Join(ErrWriteState, fsm.ErrUnknownVariant)
	}
	if err := r.client.HSet(ctx, r.key, r.keyFn(entity), value.Name()).Err(); err != nil {
		return errors.Join(ErrWriteState, err)
	}
	return nil
}

// Remove detaches entity's value. Removing an absent entity is a no-op.
func (r *Redis[E, S]) Remove(ctx context.Context, entity E) error {
	if err := r.client.HDel(ctx, r.key, r.keyFn(entity)).Err(); err != nil {
		return errors.Join(ErrRemoveState, err)
	}
	return nil
}

// Len returns the number of entities holding a value.
func (r *Redis[E, S]) Len(ctx context.Context) (int64, error) {
	n, err := r.client.HLen(ctx, r.key).Result()
	if err != nil {
		return 0, errors.Join(ErrReadState, err)
	}
	return n, nil
}
