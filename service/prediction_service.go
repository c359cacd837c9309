package service

import (
	"context"
	"fmt"
	"time"

	"tipster/models"
)

type predictionService struct {
	uowFactory UnitOfWorkFactory
}

// NewPredictionService creates a new prediction service
func NewPredictionService(uowFactory UnitOfWorkFactory) PredictionService {
	return &predictionService{
		uowFactory: uowFactory,
	}
}

// SubmitPrediction creates or overwrites the caller's prediction for a
// match. Overwriting is allowed any number of times until kickoff; after
// that, or once the match is finished, the prediction is immutable.
func (s *predictionService) SubmitPrediction(ctx context.Context, userID, matchID int64, predA, predB int) (*models.Prediction, error) {
	if !ValidatePrediction(predA, predB) {
		return nil, ErrInvalidResult
	}

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
	if !match.AcceptsPredictions(time.Now()) {
		return nil, ErrPredictionsClosed
	}

	prediction := &models.Prediction{
		UserID:      userID,
		MatchID:     matchID,
		PredictionA: predA,
		PredictionB: predB,
	}

	if err := uow.PredictionRepository().Upsert(ctx, prediction); err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return prediction, nil
}

// GetUserPrediction returns the caller's prediction for a match
func (s *predictionService) GetUserPrediction(ctx context.Context, userID, matchID int64) (*models.Prediction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	prediction, err := uow.PredictionRepository().GetByUserAndMatch(ctx, userID, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return prediction, nil
}
