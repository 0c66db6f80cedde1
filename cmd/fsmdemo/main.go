// Package main runs the game-state transition rules scenario: a main-menu,
// playing, paused, game-over machine attached to a few players, with
// per-player overrides and an asynchronous event log.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/dmitrymomot/entityfsm/pkg/config"
	"github.com/dmitrymomot/entityfsm/pkg/eventstream"
	"github.com/dmitrymomot/entityfsm/pkg/fsm"
	"github.com/dmitrymomot/entityfsm/pkg/logger"
	"github.com/dmitrymomot/entityfsm/pkg/statestore"
)

type GameState string

func (g GameState) Name() string { return string(g) }

const (
	MainMenu GameState = "main_menu"
	Playing  GameState = "playing"
	Paused   GameState = "paused"
	GameOver GameState = "game_over"
)

type appConfig struct {
	Store string `env:"FSM_STORE" envDefault:"memory"` // Store is memory, redis or postgres.
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.New(logger.WithConfig(logCfg), logger.WithContextExtractors(logger.TraceExtractor))
	logger.SetAsDefault(log)

	if err := run(ctx, log, os.Stdout); err != nil {
		log.Error("demo failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, out io.Writer) error {
	var appCfg appConfig
	if err := config.Load(&appCfg); err != nil {
		return err
	}
	var fsmCfg fsm.Config
	if err := config.Load(&fsmCfg); err != nil {
		return err
	}

	table, err := fsm.NewTable("game", MainMenu, Playing, Paused, GameOver)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, appCfg.Store, table, log)
	if err != nil {
		return err
	}
	defer closeStore()

	policy := fsm.NewTablePolicy(
		fsm.WithTransitions[uuid.UUID](
			fsm.Edge(MainMenu, Playing),
			fsm.Edge(Playing, Paused),
			fsm.Edge(Paused, Playing),
			fsm.Edge(Playing, GameOver),
			fsm.Edge(Paused, MainMenu),
			fsm.Edge(GameOver, MainMenu),
		),
	)

	overrides := fsm.NewOverrideSet[uuid.UUID, GameState]()
	if fsmCfg.OverridesFile != "" {
		if err := overrides.LoadFile(fsmCfg.OverridesFile, table, uuid.Parse); err != nil {
			return err
		}
	}

	bus := fsm.NewBus[uuid.UUID](table)
	stream := eventstream.New(eventstream.WithLogger[uuid.UUID, GameState](log))
	defer func() { _ = stream.Close() }()

	engine, err := fsm.New(table,
		fsm.Policy[GameState](policy),
		store,
		fsm.Tee[uuid.UUID, GameState](bus, stream),
		fsm.WithConfig[uuid.UUID, GameState](fsmCfg),
		fsm.WithOverrides[uuid.UUID, GameState](overrides),
		fsm.WithLogger[uuid.UUID, GameState](log),
	)
	if err != nil {
		return err
	}

	names := map[uuid.UUID]string{}
	bus.OnEnter(GameOver, func(ctx context.Context, player uuid.UUID) {
		fmt.Fprintf(out, "%s: game over, back to the menu\n", names[player])
		engine.RequestTransition(ctx, player, MainMenu)
	})
	bus.OnTransition(Paused, Playing, func(_ context.Context, player uuid.UUID) {
		fmt.Fprintf(out, "%s: resumed\n", names[player])
	})

	journal := stream.Subscribe(ctx, table.GenericID(fsm.PhaseTransition))
	done := make(chan int)
	go func() {
		n := 0
		for range journal.Events() {
			n++
		}
		done <- n
	}()

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	names[alice], names[bob], names[carol] = "alice", "bob", "carol"

	// bob may never pause; carol is locked in the menu.
	overrides.Set(bob, fsm.Blacklist(fsm.Edge(Playing, Paused)).WithRulesEnabled())
	overrides.Set(carol, fsm.DenyAll[GameState]())

	for _, p := range []uuid.UUID{alice, bob, carol} {
		if err := engine.Attach(ctx, p, MainMenu); err != nil {
			return err
		}
	}

	script := []struct {
		player uuid.UUID
		next   GameState
	}{
		{alice, Playing},
		{alice, Paused},
		{alice, Playing},
		{alice, GameOver},
		{bob, Playing},
		{bob, Paused},
		{bob, MainMenu},
		{carol, Playing},
	}
	for i, step := range script {
		stepCtx := logger.WithTrace(ctx, fmt.Sprintf("step-%d", i+1))
		allowed := engine.CanTransition(stepCtx, step.player, step.next)
		engine.RequestTransition(stepCtx, step.player, step.next)
		if !allowed {
			fmt.Fprintf(out, "%s: %s rejected\n", names[step.player], step.next)
		}
	}

	for _, p := range []uuid.UUID{alice, bob, carol} {
		state, _ := engine.Current(ctx, p)
		fmt.Fprintf(out, "%s ends in %s\n", names[p], state)
	}

	_ = journal.Close()
	log.InfoContext(ctx, "demo finished", slog.Int("transitions", <-done), logger.Machine(table.Machine()))
	return nil
}

// openStore picks the backend named by FSM_STORE.
func openStore(ctx context.Context, kind string, table *fsm.Table[GameState], log *slog.Logger) (fsm.Store[uuid.UUID, GameState], func(), error) {
	switch kind {
	case "", "memory":
		return fsm.NewMemoryStore[uuid.UUID, GameState](), func() {}, nil

	case "redis":
		var cfg statestore.RedisConfig
		if err := config.Load(&cfg); err != nil {
			return nil, nil, err
		}
		client, err := statestore.ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store, err := statestore.NewRedis(client, table, statestore.WithKeyPrefix[uuid.UUID, GameState](cfg.KeyPrefix))
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store, func() { _ = client.Close() }, nil

	case "postgres":
		var cfg statestore.PostgresConfig
		if err := config.Load(&cfg); err != nil {
			return nil, nil, err
		}
		pool, err := statestore.ConnectPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := statestore.Migrate(ctx, pool, cfg, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		store, err := statestore.NewPostgres[uuid.UUID, GameState](pool, table)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q: want memory, redis or postgres", kind)
}
