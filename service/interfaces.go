package service

import (
	"context"
	"time"

	"tipster/events"
	"tipster/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByTelegramID retrieves a user by their Telegram ID, nil when absent
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)

	// GetByTelegramIDForUpdate retrieves a user with a row lock, so the
	// caller's read-modify-write cannot interleave with a concurrent one.
	// Only meaningful inside a unit of work transaction.
	GetByTelegramIDForUpdate(ctx context.Context, telegramID int64) (*models.User, error)

	// Create creates a new user joined to the given season
	Create(ctx context.Context, telegramID int64, username, firstName, lastName string, season int) (*models.User, error)

	// UpdateTotalPoints sets a user's running total
	UpdateTotalPoints(ctx context.Context, telegramID int64, newTotal int64) error

	// AddPoints adds to a user's running total atomically
	AddPoints(ctx context.Context, telegramID int64, points int64) error

	// GetAll returns all users
	GetAll(ctx context.Context) ([]*models.User, error)

	// Search finds users whose username or name contains the term
	Search(ctx context.Context, term string) ([]*models.User, error)

	// GetLeaderboard returns the live standings, top points first
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)

	// GetSeasonStandings computes the final standings for a season:
	// points descending, telegram id ascending, with per-category counts
	GetSeasonStandings(ctx context.Context, seasonNumber int) ([]*models.SeasonResult, error)

	// ResetAllForSeason zeroes every total and moves users to the new
	// season, returning the number of users reset
	ResetAllForSeason(ctx context.Context, newSeason int) (int, error)
}

// MatchRepository defines the interface for match data access
type MatchRepository interface {
	// Create creates a new match
	Create(ctx context.Context, match *models.Match) error

	// GetByID retrieves a match by its ID, nil when absent
	GetByID(ctx context.Context, id int64) (*models.Match, error)

	// GetUpcoming returns unfinished matches ordered by kickoff
	GetUpcoming(ctx context.Context) ([]*models.Match, error)

	// MarkFinished records the final score and flips is_finished, but only
	// if the match is still unfinished. Returns false when no row changed.
	MarkFinished(ctx context.Context, id int64, resultA, resultB int) (bool, error)

	// GetDueForReminder returns unfinished matches kicking off inside the
	// window that have no reminder sent yet
	GetDueForReminder(ctx context.Context, from, until time.Time) ([]*models.Match, error)
}

// PredictionRepository defines the interface for prediction data access
type PredictionRepository interface {
	// Upsert inserts or overwrites the (user, match) prediction. Settled
	// predictions are never overwritten.
	Upsert(ctx context.Context, prediction *models.Prediction) error

	// GetByUserAndMatch retrieves one prediction, nil when absent
	GetByUserAndMatch(ctx context.Context, userID, matchID int64) (*models.Prediction, error)

	// GetByMatch returns every prediction on a match with user names
	GetByMatch(ctx context.Context, matchID int64) ([]*models.PredictionWithUser, error)

	// GetUnsettledByMatch returns the predictions on a match that have no
	// settlement marker yet
	GetUnsettledByMatch(ctx context.Context, matchID int64) ([]*models.PredictionWithUser, error)

	// Settle stamps points, season and the settlement marker onto a
	// prediction, guarded so it happens at most once. Returns false when
	// the prediction was already settled.
	Settle(ctx context.Context, predictionID int64, points, season int) (bool, error)

	// GetUserStats aggregates a user's per-category record. A nil season
	// covers the user's whole history.
	GetUserStats(ctx context.Context, userID int64, season *int) (*models.PredictionStats, error)

	// GetUsersWithoutPrediction returns users who have not predicted a match
	GetUsersWithoutPrediction(ctx context.Context, matchID int64) ([]*models.User, error)
}

// SeasonRepository defines the interface for season data access
type SeasonRepository interface {
	// GetActive returns the active season, nil when none
	GetActive(ctx context.Context) (*models.Season, error)

	// LockActive returns the active season holding a row lock: shared for
	// operations that must not overlap a closure, exclusive for the
	// closure itself. Only meaningful inside a unit of work transaction.
	LockActive(ctx context.Context, exclusive bool) (*models.Season, error)

	// Close sets the end date and clears the active flag
	Close(ctx context.Context, seasonNumber int, endDate time.Time) error

	// Create inserts a new active season
	Create(ctx context.Context, seasonNumber int, name string) (*models.Season, error)

	// GetByNumber retrieves a season by its number, nil when absent
	GetByNumber(ctx context.Context, seasonNumber int) (*models.Season, error)

	// GetHistory returns seasons, newest first
	GetHistory(ctx context.Context, limit int) ([]*models.Season, error)
}

// SeasonResultRepository defines the interface for the season archive
type SeasonResultRepository interface {
	// CreateBatch writes the archive rows for a closed season. Rows are
	// write-once per (season, user); a conflict is an error.
	CreateBatch(ctx context.Context, results []*models.SeasonResult) error

	// GetBySeason returns archived standings ordered by position
	GetBySeason(ctx context.Context, seasonNumber, limit int) ([]*models.SeasonResult, error)

	// GetByUserAndSeason returns one user's archived row, nil when absent
	GetByUserAndSeason(ctx context.Context, userID int64, seasonNumber int) (*models.SeasonResult, error)
}

// PointsHistoryRepository defines the interface for the adjustment ledger
type PointsHistoryRepository interface {
	// Record appends a ledger entry; entries are never updated or deleted
	Record(ctx context.Context, entry *models.PointsHistory) error

	// GetByUser returns a user's ledger entries, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PointsHistory, error)

	// GetRecent returns the newest ledger entries across all users
	GetRecent(ctx context.Context, limit int) ([]*models.PointsHistory, error)
}

// AdminRepository defines the interface for the admin roster
type AdminRepository interface {
	// Upsert adds an admin or reactivates a previously removed one
	Upsert(ctx context.Context, admin *models.Admin) error

	// Deactivate soft-deletes an admin, returning false when not found
	Deactivate(ctx context.Context, userID int64) (bool, error)

	// GetByUserID returns an active admin, nil when absent
	GetByUserID(ctx context.Context, userID int64) (*models.Admin, error)

	// GetAll returns active admins, super admins first
	GetAll(ctx context.Context) ([]*models.Admin, error)
}

// MatchNotificationRepository tracks which kickoff reminders were sent
type MatchNotificationRepository interface {
	// MarkSent records that a reminder went out for a match
	MarkSent(ctx context.Context, matchID int64, usersNotified int) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional access to all repositories. Events
// published through EventBus are held until Commit and discarded on
// Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	MatchRepository() MatchRepository
	PredictionRepository() PredictionRepository
	SeasonRepository() SeasonRepository
	SeasonResultRepository() SeasonResultRepository
	PointsHistoryRepository() PointsHistoryRepository
	AdminRepository() AdminRepository
	MatchNotificationRepository() MatchNotificationRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or registers a new one in
	// the active season
	GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*models.User, error)

	// SearchUsers finds users by username or name fragment
	SearchUsers(ctx context.Context, term string) ([]*models.User, error)
}

// PredictionService defines the interface for prediction entry
type PredictionService interface {
	// SubmitPrediction creates or overwrites the caller's prediction for a
	// match; rejected once kickoff has passed
	SubmitPrediction(ctx context.Context, userID, matchID int64, predA, predB int) (*models.Prediction, error)

	// GetUserPrediction returns the caller's prediction for a match
	GetUserPrediction(ctx context.Context, userID, matchID int64) (*models.Prediction, error)
}

// MatchService defines the interface for match administration
type MatchService interface {
	// CreateMatch schedules a new match
	CreateMatch(ctx context.Context, teamA, teamB string, kickoff time.Time) (*models.Match, error)

	// GetMatch retrieves a match by ID
	GetMatch(ctx context.Context, matchID int64) (*models.Match, error)

	// GetUpcomingMatches returns unfinished matches ordered by kickoff
	GetUpcomingMatches(ctx context.Context) ([]*models.Match, error)
}

// SettlementService defines the interface for match settlement
type SettlementService interface {
	// SettleMatch finalizes a match's score and distributes points to all
	// of its predictions, at most once per prediction
	SettleMatch(ctx context.Context, matchID int64, resultA, resultB int) (*models.SettlementReport, error)
}

// SeasonService defines the interface for the season lifecycle
type SeasonService interface {
	// CloseSeason archives the active season's standings, resets every
	// user and opens the next season
	CloseSeason(ctx context.Context, newName string) (*models.SeasonRollover, error)

	// GetActiveSeason returns the active season
	GetActiveSeason(ctx context.Context) (*models.Season, error)

	// GetSeasonHistory returns past and present seasons, newest first
	GetSeasonHistory(ctx context.Context, limit int) ([]*models.Season, error)
}

// PointsService defines the interface for the manual points ledger
type PointsService interface {
	// AdjustPoints adds a signed delta to a user's total and appends a
	// ledger entry of kind "add"
	AdjustPoints(ctx context.Context, userID, delta, adminID int64, reason string) (*models.AdjustmentResult, error)

	// SetPoints overwrites a user's total and appends a ledger entry of
	// kind "set"; negative totals are rejected
	SetPoints(ctx context.Context, userID, newTotal, adminID int64, reason string) (*models.AdjustmentResult, error)

	// GetHistory returns ledger entries, for one user when userID is
	// non-zero or across all users otherwise
	GetHistory(ctx context.Context, userID int64, limit int) ([]*models.PointsHistory, error)
}

// StatsService defines the interface for standings and statistics
type StatsService interface {
	// GetLeaderboard returns the live standings
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)

	// GetUserStats aggregates a user's record for the active season
	GetUserStats(ctx context.Context, userID int64) (*models.PredictionStats, error)

	// GetUserSeasonStats resolves a user's standing for a season: live
	// data for the active season, the archive for closed ones
	GetUserSeasonStats(ctx context.Context, userID int64, seasonNumber int) (*models.UserSeasonStats, error)

	// GetSeasonResults returns a closed season's archived standings
	GetSeasonResults(ctx context.Context, seasonNumber, limit int) ([]*models.SeasonResult, error)
}

// AdminService defines the interface for the admin roster
type AdminService interface {
	// EnsureSuperAdmins registers the configured super admin IDs at startup
	EnsureSuperAdmins(ctx context.Context, userIDs []int64) error

	// AddAdmin grants admin rights; only super admins may grant
	AddAdmin(ctx context.Context, grantorID int64, admin *models.Admin) error

	// RemoveAdmin revokes admin rights; only super admins may revoke
	RemoveAdmin(ctx context.Context, grantorID, userID int64) error

	// IsAdmin reports whether a user is an active admin
	IsAdmin(ctx context.Context, userID int64) (bool, error)

	// IsSuperAdmin reports whether a user is an active super admin
	IsSuperAdmin(ctx context.Context, userID int64) (bool, error)

	// ListAdmins returns active admins, super admins first
	ListAdmins(ctx context.Context) ([]*models.Admin, error)
}

// ReminderNotifier delivers kickoff reminders. Implemented by the chat
// transport; delivery failures are logged, never propagated.
type ReminderNotifier interface {
	NotifyUpcomingMatch(ctx context.Context, user *models.User, match *models.Match) error
}

// NotificationService defines the interface for scheduled reminders
type NotificationService interface {
	// SendKickoffReminders finds matches kicking off soon, reminds every
	// user still missing a prediction and marks the match notified.
	// Returns the number of users notified.
	SendKickoffReminders(ctx context.Context) (int, error)
}
