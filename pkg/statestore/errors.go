package statestore

import "errors"

var (
	ErrNilClient    = errors.New("statestore: nil client")
	ErrNilTable     = errors.New("statestore: nil variant table")
	ErrUnknownState = errors.New("statestore: stored state is not a variant of the table")
	ErrReadState    = errors.New("statestore: failed to read state")
	ErrWriteState   = errors.New("statestore: failed to write state")
	ErrRemoveState  = errors.New("statestore: failed to remove state")

	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")

	ErrFailedToParseDBConfig    = errors.New("failed to parse db config")
	ErrFailedToOpenDBConnection = errors.New("failed to open db connection")
	ErrFailedToApplyMigrations  = errors.New("failed to apply migrations")

	ErrHealthcheckFailed = errors.New("state store healthcheck failed")
)
