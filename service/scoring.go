package service

// MatchOutcome is the coarse win/draw/win classification of a scoreline.
type MatchOutcome string

const (
	OutcomeFirstWins  MatchOutcome = "win_a"
	OutcomeDraw       MatchOutcome = "draw"
	OutcomeSecondWins MatchOutcome = "win_b"
)

// Points awarded per scoring branch.
const (
	PointsExact   = 3
	PointsClose   = 2
	PointsOutcome = 1
	PointsMiss    = 0
)

// MaxGoals bounds accepted scorelines. Guards against obviously erroneous
// input without constraining legitimate football results.
const MaxGoals = 20

// Outcome classifies a scoreline as a win for either side or a draw.
func Outcome(goalsA, goalsB int) MatchOutcome {
	switch {
	case goalsA > goalsB:
		return OutcomeFirstWins
	case goalsA < goalsB:
		return OutcomeSecondWins
	default:
		return OutcomeDraw
	}
}

// ValidatePrediction reports whether a submitted scoreline is acceptable:
// both values in [0, MaxGoals] inclusive.
func ValidatePrediction(predA, predB int) bool {
	return predA >= 0 && predB >= 0 && predA <= MaxGoals && predB <= MaxGoals
}

// CalculatePoints maps a predicted scoreline and the actual result to a
// point award. Branches are checked in priority order, first match wins:
//
//	exact score            -> 3
//	wrong outcome          -> 0
//	same goal difference   -> 2
//	outcome only           -> 1
//
// A correctly predicted draw that is not exact always scores 2: a draw's
// goal difference is zero on both sides.
func CalculatePoints(predA, predB, resultA, resultB int) int {
	if predA == resultA && predB == resultB {
		return PointsExact
	}

	if Outcome(predA, predB) != Outcome(resultA, resultB) {
		return PointsMiss
	}

	if predA-predB == resultA-resultB {
		return PointsClose
	}

	return PointsOutcome
}

// PointsDescription returns the user-facing label for an award.
func PointsDescription(points int) string {
	switch points {
	case PointsExact:
		return "🎯 Exact score (+3 points)"
	case PointsClose:
		return "🎲 Outcome and goal difference (+2 points)"
	case PointsOutcome:
		return "⚽ Correct outcome (+1 point)"
	default:
		return "❌ Missed (+0 points)"
	}
}

// PointsEmoji returns the emoji used next to an award in reports.
func PointsEmoji(points int) string {
	switch points {
	case PointsExact:
		return "🎯"
	case PointsClose:
		return "🎲"
	case PointsOutcome:
		return "⚽"
	default:
		return "❌"
	}
}
