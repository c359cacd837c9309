package models

import (
	"strings"
	"time"
)

// User represents a Telegram user participating in the prediction game.
// TotalPoints is the running total for the season the user currently
// belongs to; it is reset when a season is closed.
type User struct {
	TelegramID    int64     `db:"telegram_id"`
	Username      string    `db:"username"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	TotalPoints   int64     `db:"total_points"`
	CurrentSeason int       `db:"current_season"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// DisplayName returns the best available human-readable name for the user.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return "user"
}
