// Package services implements the selection engine: rate limiting, candidate
// pools, deterministic daily selection, the orchestrating state machine, and
// roster ingestion. This file centralizes common service-level error values
// so they can be consistently returned by service methods and checked by
// callers.
//
// Policy outcomes (rate limited, night gate closed, pool too small) are NOT
// errors; they are reported through the Outcome type. The errors below cover
// programming and storage faults only.
package services

import "errors"

var (
	// ErrUnknownCommand is returned when a command name is not present in
	// the registry.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUserNotFound indicates that a selected or requested user row is
	// missing from the ledger.
	ErrUserNotFound = errors.New("user not found")
)
