package service

import (
	"context"
	"fmt"

	"tipster/events"
	"tipster/models"

	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
	eventBus   *events.Bus
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, eventBus *events.Bus) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		eventBus:   eventBus,
	}
}

// SettleMatch finalizes a match's score and distributes points.
//
// The run is split into a claim phase and an award phase. The claim phase
// flips is_finished under a guard, so two racing settlement attempts
// resolve to exactly one winner. Each award then commits in its own
// transaction guarded by the prediction's settlement marker: a crash or a
// single failed award leaves the rest durable, and re-running the
// settlement picks up only the predictions that are still unsettled.
func (s *settlementService) SettleMatch(ctx context.Context, matchID int64, resultA, resultB int) (*models.SettlementReport, error) {
	if !ValidatePrediction(resultA, resultB) {
		return nil, ErrInvalidResult
	}

	match, pending, err := s.claimMatch(ctx, matchID, resultA, resultB)
	if err != nil {
		return nil, err
	}

	// The stored result is authoritative from here on. On a resumed run it
	// may differ from the arguments; the original settlement's score wins.
	finalA, finalB := match.FinalScore()

	report := &models.SettlementReport{
		MatchID: match.ID,
		TeamA:   match.TeamA,
		TeamB:   match.TeamB,
		ResultA: finalA,
		ResultB: finalB,
	}

	var settledIDs, failedIDs []int64
	var causes []error

	for _, prediction := range pending {
		award, err := s.settlePrediction(ctx, prediction, finalA, finalB)
		if err != nil {
			log.WithFields(log.Fields{
				"matchID":      matchID,
				"predictionID": prediction.ID,
				"userID":       prediction.UserID,
				"error":        err,
			}).Error("Failed to settle prediction")
			failedIDs = append(failedIDs, prediction.ID)
			causes = append(causes, err)
			continue
		}
		if award == nil {
			// Lost the race to a concurrent run; that run reports it.
			continue
		}
		settledIDs = append(settledIDs, prediction.ID)
		report.Awards = append(report.Awards, *award)
	}

	if len(report.Awards) > 0 {
		s.eventBus.Emit(ctx, events.MatchSettledEvent{Report: report})
	}

	if len(failedIDs) > 0 {
		return report, &PartialSettlementError{
			MatchID:    matchID,
			SettledIDs: settledIDs,
			FailedIDs:  failedIDs,
			Causes:     causes,
		}
	}

	log.WithFields(log.Fields{
		"matchID":     matchID,
		"result":      fmt.Sprintf("%d:%d", finalA, finalB),
		"predictions": len(report.Awards),
	}).Info("Match settled")

	return report, nil
}

// claimMatch marks the match finished and returns it together with its
// unsettled predictions. When the match is already finished, the claim
// degrades to a resume: any predictions left unsettled by an earlier
// interrupted run are returned, and a fully settled match yields
// ErrAlreadySettled.
func (s *settlementService) claimMatch(ctx context.Context, matchID int64, resultA, resultB int) (*models.Match, []*models.PredictionWithUser, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Settlement may not run while a season closure is in flight.
	season, err := uow.SeasonRepository().LockActive(ctx, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock active season: %w", err)
	}
	if season == nil {
		return nil, nil, ErrNoActiveSeason
	}

	claimed, err := uow.MatchRepository().MarkFinished(ctx, matchID, resultA, resultB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to mark match finished: %w", err)
	}

	match, err := uow.MatchRepository().GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return nil, nil, ErrMatchNotFound
	}

	pending, err := uow.PredictionRepository().GetUnsettledByMatch(ctx, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load predictions: %w", err)
	}

	if !claimed && len(pending) == 0 {
		return nil, nil, ErrAlreadySettled
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return match, pending, nil
}

// settlePrediction awards one prediction in its own transaction. A nil
// award with nil error means another run settled it first.
func (s *settlementService) settlePrediction(ctx context.Context, prediction *models.PredictionWithUser, resultA, resultB int) (*models.SettlementAward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	season, err := uow.SeasonRepository().LockActive(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to lock active season: %w", err)
	}
	if season == nil {
		return nil, ErrNoActiveSeason
	}

	points := CalculatePoints(prediction.PredictionA, prediction.PredictionB, resultA, resultB)

	settled, err := uow.PredictionRepository().Settle(ctx, prediction.ID, points, season.SeasonNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to persist award: %w", err)
	}
	if !settled {
		return nil, nil
	}

	// Zero-point awards are recorded on the prediction but leave the
	// running total untouched.
	if points > 0 {
		if err := uow.UserRepository().AddPoints(ctx, prediction.UserID, int64(points)); err != nil {
			return nil, fmt.Errorf("failed to credit user total: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.SettlementAward{
		UserID:      prediction.UserID,
		Username:    prediction.Username,
		FirstName:   prediction.FirstName,
		PredictionA: prediction.PredictionA,
		PredictionB: prediction.PredictionB,
		Points:      points,
	}, nil
}
