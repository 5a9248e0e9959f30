package models

import (
	"errors"
)

// Named outcomes callers branch on. These are expected conditions, not
// system failures, and are never logged as errors.
var (
	ErrGiveawayNotFound  = errors.New("giveaway not found")
	ErrGiveawayNotActive = errors.New("giveaway is not active")
	ErrAlreadyEntered    = errors.New("user has already entered this giveaway")
	ErrNoEntries         = errors.New("giveaway has no entries")
	ErrInvalidDuration   = errors.New("invalid duration format")

	ErrDuplicateNickname  = errors.New("a connection with this nickname already exists")
	ErrConnectionNotFound = errors.New("server connection not found")
	ErrAlreadyConnected   = errors.New("server connection already has a live session")
	ErrNotConnected       = errors.New("server connection has no live session")
)
