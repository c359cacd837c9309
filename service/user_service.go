package service

import (
	"context"
	"fmt"
	"strings"

	"tipster/events"
	"tipster/models"

	log "github.com/sirupsen/logrus"
)

type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateUser retrieves an existing user or registers a new one in the
// active season. Name fields on an existing user are refreshed if they
// changed on Telegram's side.
func (s *userService) GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		season, err := uow.SeasonRepository().GetActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get active season: %w", err)
		}
		if season == nil {
			return nil, ErrNoActiveSeason
		}

		user, err = uow.UserRepository().Create(ctx, telegramID, username, firstName, lastName, season.SeasonNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		uow.EventBus().Publish(events.UserCreatedEvent{
			TelegramID: telegramID,
			Username:   username,
			Season:     season.SeasonNumber,
		})

		log.WithFields(log.Fields{
			"telegramID": telegramID,
			"username":   username,
			"season":     season.SeasonNumber,
		}).Info("Registered new user")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// SearchUsers finds users by username or name fragment
func (s *userService) SearchUsers(ctx context.Context, term string) ([]*models.User, error) {
	term = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(term), "@"))
	if term == "" {
		return nil, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}
