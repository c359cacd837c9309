package service

import (
	"context"
	"time"

	"tipster/events"
	"tipster/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByTelegramIDForUpdate(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, telegramID int64, username, firstName, lastName string, season int) (*models.User, error) {
	args := m.Called(ctx, telegramID, username, firstName, lastName, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateTotalPoints(ctx context.Context, telegramID int64, newTotal int64) error {
	args := m.Called(ctx, telegramID, newTotal)
	return args.Error(0)
}

func (m *MockUserRepository) AddPoints(ctx context.Context, telegramID int64, points int64) error {
	args := m.Called(ctx, telegramID, points)
	return args.Error(0)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, term string) ([]*models.User, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockUserRepository) GetSeasonStandings(ctx context.Context, seasonNumber int) ([]*models.SeasonResult, error) {
	args := m.Called(ctx, seasonNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SeasonResult), args.Error(1)
}

func (m *MockUserRepository) ResetAllForSeason(ctx context.Context, newSeason int) (int, error) {
	args := m.Called(ctx, newSeason)
	return args.Int(0), args.Error(1)
}

// MockMatchRepository is a mock implementation of MatchRepository
type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) Create(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockMatchRepository) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *MockMatchRepository) GetUpcoming(ctx context.Context) ([]*models.Match, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Match), args.Error(1)
}

func (m *MockMatchRepository) MarkFinished(ctx context.Context, id int64, resultA, resultB int) (bool, error) {
	args := m.Called(ctx, id, resultA, resultB)
	return args.Bool(0), args.Error(1)
}

func (m *MockMatchRepository) GetDueForReminder(ctx context.Context, from, until time.Time) ([]*models.Match, error) {
	args := m.Called(ctx, from, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Match), args.Error(1)
}

// MockPredictionRepository is a mock implementation of PredictionRepository
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Upsert(ctx context.Context, prediction *models.Prediction) error {
	args := m.Called(ctx, prediction)
	return args.Error(0)
}

func (m *MockPredictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int64) (*models.Prediction, error) {
	args := m.Called(ctx, userID, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prediction), args.Error(1)
}

func (m *MockPredictionRepository) GetByMatch(ctx context.Context, matchID int64) ([]*models.PredictionWithUser, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PredictionWithUser), args.Error(1)
}

func (m *MockPredictionRepository) GetUnsettledByMatch(ctx context.Context, matchID int64) ([]*models.PredictionWithUser, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PredictionWithUser), args.Error(1)
}

func (m *MockPredictionRepository) Settle(ctx context.Context, predictionID int64, points, season int) (bool, error) {
	args := m.Called(ctx, predictionID, points, season)
	return args.Bool(0), args.Error(1)
}

func (m *MockPredictionRepository) GetUserStats(ctx context.Context, userID int64, season *int) (*models.PredictionStats, error) {
	args := m.Called(ctx, userID, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PredictionStats), args.Error(1)
}

func (m *MockPredictionRepository) GetUsersWithoutPrediction(ctx context.Context, matchID int64) ([]*models.User, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockSeasonRepository is a mock implementation of SeasonRepository
type MockSeasonRepository struct {
	mock.Mock
}

func (m *MockSeasonRepository) GetActive(ctx context.Context) (*models.Season, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Season), args.Error(1)
}

func (m *MockSeasonRepository) LockActive(ctx context.Context, exclusive bool) (*models.Season, error) {
	args := m.Called(ctx, exclusive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Season), args.Error(1)
}

func (m *MockSeasonRepository) Close(ctx context.Context, seasonNumber int, endDate time.Time) error {
	args := m.Called(ctx, seasonNumber, endDate)
	return args.Error(0)
}

func (m *MockSeasonRepository) Create(ctx context.Context, seasonNumber int, name string) (*models.Season, error) {
	args := m.Called(ctx, seasonNumber, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Season), args.Error(1)
}

func (m *MockSeasonRepository) GetByNumber(ctx context.Context, seasonNumber int) (*models.Season, error) {
	args := m.Called(ctx, seasonNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Season), args.Error(1)
}

func (m *MockSeasonRepository) GetHistory(ctx context.Context, limit int) ([]*models.Season, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Season), args.Error(1)
}

// MockSeasonResultRepository is a mock implementation of SeasonResultRepository
type MockSeasonResultRepository struct {
	mock.Mock
}

func (m *MockSeasonResultRepository) CreateBatch(ctx context.Context, results []*models.SeasonResult) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockSeasonResultRepository) GetBySeason(ctx context.Context, seasonNumber, limit int) ([]*models.SeasonResult, error) {
	args := m.Called(ctx, seasonNumber, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SeasonResult), args.Error(1)
}

func (m *MockSeasonResultRepository) GetByUserAndSeason(ctx context.Context, userID int64, seasonNumber int) (*models.SeasonResult, error) {
	args := m.Called(ctx, userID, seasonNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SeasonResult), args.Error(1)
}

// MockPointsHistoryRepository is a mock implementation of PointsHistoryRepository
type MockPointsHistoryRepository struct {
	mock.Mock
}

func (m *MockPointsHistoryRepository) Record(ctx context.Context, entry *models.PointsHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockPointsHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PointsHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PointsHistory), args.Error(1)
}

func (m *MockPointsHistoryRepository) GetRecent(ctx context.Context, limit int) ([]*models.PointsHistory, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PointsHistory), args.Error(1)
}

// MockAdminRepository is a mock implementation of AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Upsert(ctx context.Context, admin *models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) Deactivate(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminRepository) GetByUserID(ctx context.Context, userID int64) (*models.Admin, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetAll(ctx context.Context) ([]*models.Admin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Admin), args.Error(1)
}

// MockMatchNotificationRepository is a mock implementation of MatchNotificationRepository
type MockMatchNotificationRepository struct {
	mock.Mock
}

func (m *MockMatchNotificationRepository) MarkSent(ctx context.Context, matchID int64, usersNotified int) error {
	args := m.Called(ctx, matchID, usersNotified)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockReminderNotifier is a mock implementation of ReminderNotifier
type MockReminderNotifier struct {
	mock.Mock
}

func (m *MockReminderNotifier) NotifyUpcomingMatch(ctx context.Context, user *models.User, match *models.Match) error {
	args := m.Called(ctx, user, match)
	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository
// accessors return the instances wired in with SetRepositories rather
// than going through expectations.
type MockUnitOfWork struct {
	mock.Mock

	userRepo         UserRepository
	matchRepo        MatchRepository
	predictionRepo   PredictionRepository
	seasonRepo       SeasonRepository
	seasonResultRepo SeasonResultRepository
	historyRepo      PointsHistoryRepository
	adminRepo        AdminRepository
	notificationRepo MatchNotificationRepository
	eventBus         EventPublisher
}

// SetRepositories wires the mock repositories this unit of work hands out.
// Pass nil for repositories the test never touches.
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	matchRepo MatchRepository,
	predictionRepo PredictionRepository,
	seasonRepo SeasonRepository,
	seasonResultRepo SeasonResultRepository,
	historyRepo PointsHistoryRepository,
	adminRepo AdminRepository,
	notificationRepo MatchNotificationRepository,
) {
	m.userRepo = userRepo
	m.matchRepo = matchRepo
	m.predictionRepo = predictionRepo
	m.seasonRepo = seasonRepo
	m.seasonResultRepo = seasonResultRepo
	m.historyRepo = historyRepo
	m.adminRepo = adminRepo
	m.notificationRepo = notificationRepo
}

// SetEventBus wires the event publisher handed out by EventBus.
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) MatchRepository() MatchRepository {
	return m.matchRepo
}

func (m *MockUnitOfWork) PredictionRepository() PredictionRepository {
	return m.predictionRepo
}

func (m *MockUnitOfWork) SeasonRepository() SeasonRepository {
	return m.seasonRepo
}

func (m *MockUnitOfWork) SeasonResultRepository() SeasonResultRepository {
	return m.seasonResultRepo
}

func (m *MockUnitOfWork) PointsHistoryRepository() PointsHistoryRepository {
	return m.historyRepo
}

func (m *MockUnitOfWork) AdminRepository() AdminRepository {
	return m.adminRepo
}

func (m *MockUnitOfWork) MatchNotificationRepository() MatchNotificationRepository {
	return m.notificationRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return &noopPublisher{}
	}
	return m.eventBus
}

type noopPublisher struct{}

func (p *noopPublisher) Publish(events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
