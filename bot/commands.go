package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"tipster/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	from := msg.From
	if from == nil || from.IsBot {
		return
	}

	// Every interaction registers the user, so reminders and settlement
	// notices reach people who never ran /start explicitly.
	user, err := b.services.Users.GetOrCreateUser(ctx, from.ID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		log.WithFields(log.Fields{
			"telegramID": from.ID,
			"error":      err,
		}).Error("Failed to resolve user")
		b.send(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user.TelegramID)
		return
	}

	// Plain text continues an in-flight dialog, if any.
	if c := b.conversations.get(user.TelegramID); c != nil {
		b.continueConversation(ctx, msg, c)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, userID int64) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.handleHelp(ctx, chatID, userID)
	case "matches":
		b.handleMatches(ctx, chatID, userID)
	case "leaderboard":
		b.handleLeaderboard(ctx, chatID)
	case "stats":
		b.handleStats(ctx, chatID, userID)
	case "predict":
		b.handlePredict(ctx, chatID, userID, msg.CommandArguments())
	case "currentseason":
		b.handleCurrentSeason(ctx, chatID)
	case "seasonhistory":
		b.handleSeasonHistory(ctx, chatID)
	case "cancel":
		b.handleCancel(ctx, chatID, userID)

	case "addmatch":
		b.requireAdmin(ctx, chatID, userID, func() { b.handleAddMatch(ctx, chatID, userID) })
	case "finishmatch":
		b.requireAdmin(ctx, chatID, userID, func() { b.handleFinishMatch(ctx, chatID, msg.CommandArguments()) })
	case "addpoints":
		b.requireAdmin(ctx, chatID, userID, func() { b.startPointsDialog(ctx, chatID, userID, "add") })
	case "setpoints":
		b.requireAdmin(ctx, chatID, userID, func() { b.startPointsDialog(ctx, chatID, userID, "set") })
	case "pointshistory":
		b.requireAdmin(ctx, chatID, userID, func() { b.handlePointsHistory(ctx, chatID) })
	case "newseason":
		b.requireAdmin(ctx, chatID, userID, func() { b.handleNewSeason(ctx, chatID, msg.CommandArguments()) })
	case "admins":
		b.requireAdmin(ctx, chatID, userID, func() { b.handleAdmins(ctx, chatID) })
	case "addadmin":
		b.requireAdmin(ctx, chatID, userID, func() { b.handleAddAdmin(ctx, chatID, userID, msg.CommandArguments()) })
	case "removeadmin":
		b.requireAdmin(ctx, chatID, userID, func() { b.handleRemoveAdmin(ctx, chatID, userID, msg.CommandArguments()) })
	}
}

func (b *Bot) requireAdmin(ctx context.Context, chatID, userID int64, handler func()) {
	isAdmin, err := b.services.Admins.IsAdmin(ctx, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"userID": userID,
			"error":  err,
		}).Error("Failed to check admin rights")
		b.send(chatID, "Something went wrong, please try again.")
		return
	}
	if !isAdmin {
		b.send(chatID, "🚫 This command is for admins only.")
		return
	}
	handler()
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	b.send(chatID, "⚽ Welcome to the prediction game!\n\n"+
		"Guess match scores before kickoff and collect points:\n"+
		"🎯 exact score — 3 points\n"+
		"🎲 right outcome and goal difference — 2 points\n"+
		"⚽ right outcome — 1 point\n\n"+
		"Use /matches to see what's coming up and /help for all commands.")
}

func (b *Bot) handleHelp(ctx context.Context, chatID, userID int64) {
	text := "📋 Commands:\n\n" +
		"/matches — upcoming matches\n" +
		"/predict <match> <home>:<away> — place a prediction\n" +
		"/leaderboard — season standings\n" +
		"/stats — your record this season\n" +
		"/currentseason — the running season\n" +
		"/seasonhistory — past seasons\n" +
		"/cancel — abort a dialog"

	if isAdmin, err := b.services.Admins.IsAdmin(ctx, userID); err == nil && isAdmin {
		text += "\n\n🔧 Admin:\n" +
			"/addmatch — schedule a match\n" +
			"/finishmatch <match> <home>:<away> — enter the result\n" +
			"/addpoints, /setpoints — adjust a user's points\n" +
			"/pointshistory — recent adjustments\n" +
			"/newseason [name] — close the season\n" +
			"/admins, /addadmin, /removeadmin — manage admins"
	}

	b.send(chatID, text)
}

func (b *Bot) handleMatches(ctx context.Context, chatID, userID int64) {
	matches, err := b.services.Matches.GetUpcomingMatches(ctx)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if len(matches) == 0 {
		b.send(chatID, "📭 No upcoming matches scheduled.")
		return
	}

	var sb strings.Builder
	sb.WriteString("⚽ Upcoming matches:\n\n")
	for _, match := range matches {
		sb.WriteString(fmt.Sprintf("#%d %s — %s\n", match.ID, match.Title(), match.KickoffTime.Format("02.01 15:04")))

		prediction, err := b.services.Predictions.GetUserPrediction(ctx, userID, match.ID)
		if err == nil && prediction != nil {
			sb.WriteString(fmt.Sprintf("   your tip: %s\n", prediction.Score()))
		}
	}
	sb.WriteString("\nPredict with /predict <match> <home>:<away>")

	b.send(chatID, sb.String())
}

func (b *Bot) handleLeaderboard(ctx context.Context, chatID int64) {
	entries, err := b.services.Stats.GetLeaderboard(ctx, b.config.LeaderboardSize)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if len(entries) == 0 {
		b.send(chatID, "📭 Nobody has scored yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Leaderboard:\n\n")
	for _, entry := range entries {
		name := entry.Username
		if name == "" {
			name = strings.TrimSpace(entry.FirstName + " " + entry.LastName)
		}
		sb.WriteString(fmt.Sprintf("%s %s — %d\n", medal(entry.Position), name, entry.TotalPoints))
	}

	b.send(chatID, sb.String())
}

func medal(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", position)
	}
}

func (b *Bot) handleStats(ctx context.Context, chatID, userID int64) {
	stats, err := b.services.Stats.GetUserStats(ctx, userID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	b.send(chatID, fmt.Sprintf("📊 Your season so far:\n\n"+
		"Settled predictions: %d\n"+
		"🎯 Exact: %d\n"+
		"🎲 Goal difference: %d\n"+
		"⚽ Outcome: %d\n"+
		"❌ Missed: %d\n\n"+
		"Points from predictions: %d",
		stats.TotalPredictions,
		stats.ExactPredictions,
		stats.ClosePredictions,
		stats.OutcomePredictions,
		stats.MissedPredictions,
		stats.PointsEarned))
}

func (b *Bot) handlePredict(ctx context.Context, chatID, userID int64, args string) {
	matchID, predA, predB, err := parsePredictArgs(args)
	if err != nil {
		b.send(chatID, "Use /predict <match> <home>:<away>, e.g. /predict 3 2:1")
		return
	}

	prediction, err := b.services.Predictions.SubmitPrediction(ctx, userID, matchID, predA, predB)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	b.send(chatID, fmt.Sprintf("✅ Prediction saved: %s\n\nYou can change it any time before kickoff.", prediction.Score()))
}

func (b *Bot) handleCurrentSeason(ctx context.Context, chatID int64) {
	season, err := b.services.Seasons.GetActiveSeason(ctx)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	b.send(chatID, fmt.Sprintf("📅 %s (season %d), running since %s.",
		season.Name, season.SeasonNumber, season.StartDate.Format("02.01.2006")))
}

func (b *Bot) handleSeasonHistory(ctx context.Context, chatID int64) {
	seasons, err := b.services.Seasons.GetSeasonHistory(ctx, 10)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("📚 Seasons:\n\n")
	for _, season := range seasons {
		if season.IsActive {
			sb.WriteString(fmt.Sprintf("▶️ %s — running\n", season.Name))
			continue
		}
		end := "?"
		if season.EndDate != nil {
			end = season.EndDate.Format("02.01.2006")
		}
		sb.WriteString(fmt.Sprintf("✔️ %s — ended %s\n", season.Name, end))
	}

	b.send(chatID, sb.String())
}

func (b *Bot) handleCancel(ctx context.Context, chatID, userID int64) {
	if b.conversations.clear(userID) {
		b.send(chatID, "❎ Cancelled.")
		return
	}
	b.send(chatID, "Nothing to cancel.")
}

// sendError maps domain errors to user-facing wording.
func (b *Bot) sendError(chatID int64, err error) {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		b.send(chatID, "🔍 No such match. Check /matches for the list.")
	case errors.Is(err, service.ErrPredictionsClosed):
		b.send(chatID, "⏱ Too late, the match has kicked off.")
	case errors.Is(err, service.ErrInvalidResult):
		b.send(chatID, fmt.Sprintf("Scores must be between 0 and %d.", service.MaxGoals))
	case errors.Is(err, service.ErrAlreadySettled):
		b.send(chatID, "This match is already settled.")
	case errors.Is(err, service.ErrUserNotFound):
		b.send(chatID, "🔍 I don't know that user yet.")
	case errors.Is(err, service.ErrNotSuperAdmin):
		b.send(chatID, "🚫 Only super admins can do that.")
	case errors.Is(err, service.ErrAdminNotFound):
		b.send(chatID, "🔍 That user is not an admin.")
	case errors.Is(err, service.ErrNegativeTotal):
		b.send(chatID, "Totals cannot go below zero.")
	default:
		log.WithError(err).Error("Command failed")
		b.send(chatID, "Something went wrong, please try again.")
	}
}

// parsePredictArgs parses "<match> <home>:<away>".
func parsePredictArgs(args string) (int64, int, int, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return 0, 0, 0, fmt.Errorf("expected two arguments")
	}

	matchID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid match id: %w", err)
	}

	predA, predB, err := parseScore(fields[1])
	if err != nil {
		return 0, 0, 0, err
	}

	return matchID, predA, predB, nil
}

// parseScore parses "<home>:<away>".
func parseScore(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("score must look like 2:1")
	}

	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid home goals: %w", err)
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid away goals: %w", err)
	}

	return a, b, nil
}
