package models

// SettlementAward is one user's outcome from settling a match.
type SettlementAward struct {
	UserID      int64
	Username    string
	FirstName   string
	PredictionA int
	PredictionB int
	Points      int
}

// SettlementReport summarizes a completed match settlement and is handed
// to the notification layer so every predictor can be messaged.
type SettlementReport struct {
	MatchID int64
	TeamA   string
	TeamB   string
	ResultA int
	ResultB int
	Awards  []SettlementAward
}
