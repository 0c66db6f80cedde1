// Package statestore provides fsm.Store implementations backed by Redis and
// PostgreSQL, plus connect-with-retry helpers configured from the environment.
//
// Both stores persist only the current variant of each entity, encoded by
// its Name, and decode it through the table's Lookup. A stored name that no
// longer belongs to the table is reported as ErrUnknownState, which the
// engine treats like any other read failure: the request is dropped and
// logged.
//
// # Redis
//
// All values of one machine live in a single hash "<prefix>:<machine>":
//
//	client, err := statestore.ConnectRedis(ctx, redisCfg)
//	if err != nil {
//	    return err
//	}
//	store, err := statestore.NewRedis[int, Life](client, lifeTable,
//	    statestore.WithKeyPrefix[int, Life](redisCfg.KeyPrefix))
//
// # PostgreSQL
//
// Values are rows of fsm_states(machine, entity, state). The schema ships
// embedded and is applied with goose:
//
//	pool, err := statestore.ConnectPostgres(ctx, pgCfg)
//	if err != nil {
//	    return err
//	}
//	if err := statestore.Migrate(ctx, pool, pgCfg, log); err != nil {
//	    return err
//	}
//	store, err := statestore.NewPostgres[int, Life](pool, lifeTable)
//
// Entities are encoded with DefaultKey (fmt.Sprint) unless a KeyFunc is
// supplied with WithRedisKeyFunc or WithPostgresKeyFunc.
package statestore
