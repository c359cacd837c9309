package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to the transport layer, which decides the
// user-facing wording. Nothing here is retried automatically.
var (
	// ErrInvalidResult means a submitted scoreline failed bounds validation.
	ErrInvalidResult = errors.New("result is out of valid range")

	// ErrAlreadySettled means the match is finished and every prediction
	// on it has been awarded; settling again is a no-op conflict.
	ErrAlreadySettled = errors.New("match is already settled")

	// ErrMatchNotFound means the match id does not exist.
	ErrMatchNotFound = errors.New("match not found")

	// ErrUserNotFound means the user has never interacted with the bot.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoActiveSeason means no season row is flagged active. Unreachable
	// in steady state; treated as an invariant violation, never defaulted.
	ErrNoActiveSeason = errors.New("no active season")

	// ErrNegativeTotal means a set-points request asked for a total below zero.
	ErrNegativeTotal = errors.New("total points cannot be negative")

	// ErrPredictionsClosed means kickoff has passed or the match is
	// finished, so the prediction is immutable.
	ErrPredictionsClosed = errors.New("predictions are closed for this match")

	// ErrNotSuperAdmin means the caller tried to change the admin roster
	// without super admin rights, or targeted a super admin.
	ErrNotSuperAdmin = errors.New("super admin rights required")

	// ErrAdminNotFound means the target user is not an active admin.
	ErrAdminNotFound = errors.New("admin not found")
)

// PartialSettlementError reports a settlement run where some predictions
// were awarded and others failed. Settled awards are durable; re-running
// settlement processes only the failed ones, so callers must not treat
// this as an all-or-nothing failure.
type PartialSettlementError struct {
	MatchID    int64
	SettledIDs []int64
	FailedIDs  []int64
	Causes     []error
}

func (e *PartialSettlementError) Error() string {
	return fmt.Sprintf("match %d partially settled: %d predictions awarded, %d failed",
		e.MatchID, len(e.SettledIDs), len(e.FailedIDs))
}

// Unwrap exposes the underlying persistence errors for errors.Is/As.
func (e *PartialSettlementError) Unwrap() []error {
	return e.Causes
}
