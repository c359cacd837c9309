package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tipster/models"

	log "github.com/sirupsen/logrus"
)

type matchService struct {
	uowFactory UnitOfWorkFactory
}

// NewMatchService creates a new match service
func NewMatchService(uowFactory UnitOfWorkFactory) MatchService {
	return &matchService{
		uowFactory: uowFactory,
	}
}

// CreateMatch schedules a new match
func (s *matchService) CreateMatch(ctx context.Context, teamA, teamB string, kickoff time.Time) (*models.Match, error) {
	teamA = strings.TrimSpace(teamA)
	teamB = strings.TrimSpace(teamB)
	if teamA == "" || teamB == "" {
		return nil, fmt.Errorf("team names must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	match := &models.Match{
		TeamA:       teamA,
		TeamB:       teamB,
		KickoffTime: kickoff,
	}

	if err := uow.MatchRepository().Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"matchID": match.ID,
		"teamA":   teamA,
		"teamB":   teamB,
		"kickoff": kickoff,
	}).Info("Created match")

	return match, nil
}

// GetMatch retrieves a match by ID
func (s *matchService) GetMatch(ctx context.Context, matchID int64) (*models.Match, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	match, err := uow.MatchRepository().GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}

	return match, nil
}

// GetUpcomingMatches returns unfinished matches ordered by kickoff
func (s *matchService) GetUpcomingMatches(ctx context.Context) ([]*models.Match, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	matches, err := uow.MatchRepository().GetUpcoming(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming matches: %w", err)
	}

	return matches, nil
}
