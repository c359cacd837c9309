package models

import (
	"time"
)

// PointsAction is the kind of manual points adjustment.
type PointsAction string

const (
	PointsActionAdd PointsAction = "add"
	PointsActionSet PointsAction = "set"
)

// PointsHistory is one entry in the append-only ledger of manual point
// adjustments. OldTotal/NewTotal snapshot the user's running total around
// the adjustment; NewTotal always equals the live total at the time the
// entry was written.
type PointsHistory struct {
	ID           int64        `db:"id"`
	UserID       int64        `db:"user_id"`
	AdminID      int64        `db:"admin_id"`
	PointsChange int64        `db:"points_change"`
	Reason       *string      `db:"reason"`
	ActionType   PointsAction `db:"action_type"`
	OldTotal     int64        `db:"old_total"`
	NewTotal     int64        `db:"new_total"`
	Season       int          `db:"season"`
	CreatedAt    time.Time    `db:"created_at"`
}

// AdjustmentResult is returned to the admin who changed a user's points.
type AdjustmentResult struct {
	OldTotal int64
	NewTotal int64
	Change   int64
}
