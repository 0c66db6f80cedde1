// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - The default .env file in the working directory is read once, if present.
//     LoadEnv reads additional files.
//   - Load parses the environment into any struct annotated with env tags.
//   - Each (type, prefix) pair is parsed once and cached for the lifetime of
//     the process. ResetCache clears the cache in tests.
//   - MustLoad and MustLoadEnv panic instead of returning errors, for
//     configuration the process cannot start without.
//
// # Usage
//
//	var fsmCfg fsm.Config
//	config.MustLoad(&fsmCfg)
//
//	var logCfg logger.Config
//	config.MustLoad(&logCfg)
//
//	engine := fsm.MustNew(table, policy, store, bus,
//	    fsm.WithConfig[int, Life](fsmCfg),
//	    fsm.WithLogger[int, Life](logger.New(logger.WithConfig(logCfg))),
//	)
//
// The same struct can be loaded under several prefixes:
//
//	var life, motion fsm.Config
//	config.MustLoad(&life, config.WithPrefix("LIFE_"))
//	config.MustLoad(&motion, config.WithPrefix("MOTION_"))
//
// # Errors
//
// Parsing failures are joined with ErrParsingConfig and are not cached, so a
// later Load can succeed once the environment is fixed.
package config
