package config

import "errors"

// Sentinel errors for ServerConfig validation.
var (
	ErrMaxStoredPlansInvalid = errors.New("max_stored_plans must be positive")
	ErrMaxCostEntriesInvalid = errors.New("max_cost_entries must be positive")
	ErrExampleMaxLenInvalid  = errors.New("example_max_len must be positive")
	ErrListenAddrEmpty       = errors.New("listen_addr is required")
)
