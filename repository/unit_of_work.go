package repository

import (
	"context"
	"fmt"

	"tipster/database"
	"tipster/events"
	"tipster/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus

	userRepo              service.UserRepository
	matchRepo             service.MatchRepository
	predictionRepo        service.PredictionRepository
	seasonRepo            service.SeasonRepository
	seasonResultRepo      service.SeasonResultRepository
	pointsHistoryRepo     service.PointsHistoryRepository
	adminRepo             service.AdminRepository
	matchNotificationRepo service.MatchNotificationRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.userRepo = newUserRepositoryWithTx(tx)
	u.matchRepo = newMatchRepositoryWithTx(tx)
	u.predictionRepo = newPredictionRepositoryWithTx(tx)
	u.seasonRepo = newSeasonRepositoryWithTx(tx)
	u.seasonResultRepo = newSeasonResultRepositoryWithTx(tx)
	u.pointsHistoryRepo = newPointsHistoryRepositoryWithTx(tx)
	u.adminRepo = newAdminRepositoryWithTx(tx)
	u.matchNotificationRepo = newMatchNotificationRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

func (u *unitOfWork) MatchRepository() service.MatchRepository {
	if u.matchRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.matchRepo
}

func (u *unitOfWork) PredictionRepository() service.PredictionRepository {
	if u.predictionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.predictionRepo
}

func (u *unitOfWork) SeasonRepository() service.SeasonRepository {
	if u.seasonRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.seasonRepo
}

func (u *unitOfWork) SeasonResultRepository() service.SeasonResultRepository {
	if u.seasonResultRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.seasonResultRepo
}

func (u *unitOfWork) PointsHistoryRepository() service.PointsHistoryRepository {
	if u.pointsHistoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.pointsHistoryRepo
}

func (u *unitOfWork) AdminRepository() service.AdminRepository {
	if u.adminRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.adminRepo
}

func (u *unitOfWork) MatchNotificationRepository() service.MatchNotificationRepository {
	if u.matchNotificationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.matchNotificationRepo
}

func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
