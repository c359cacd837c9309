package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tipster/models"
	"tipster/service"
)

const kickoffLayout = "02.01.2006 15:04"

func (b *Bot) handleAddMatch(ctx context.Context, chatID, userID int64) {
	b.conversations.start(userID, stepAddMatchTeamA)
	b.send(chatID, "⚽ New match. Enter the home team name (or /cancel):")
}

func (b *Bot) handleFinishMatch(ctx context.Context, chatID int64, args string) {
	matchID, resultA, resultB, err := parsePredictArgs(args)
	if err != nil {
		b.send(chatID, "Use /finishmatch <match> <home>:<away>, e.g. /finishmatch 3 2:1")
		return
	}

	report, err := b.services.Settlement.SettleMatch(ctx, matchID, resultA, resultB)
	if err != nil {
		var partial *service.PartialSettlementError
		if !errors.As(err, &partial) {
			b.sendError(chatID, err)
			return
		}
		// Settled predictions stayed settled. Re-running /finishmatch
		// with any score picks up the failed ones.
		b.send(chatID, fmt.Sprintf("⚠️ Result recorded, but %d of %d predictions failed to settle. Run the command again to retry them.",
			len(partial.FailedIDs), len(partial.SettledIDs)+len(partial.FailedIDs)))
		if report == nil {
			return
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 %s %d:%d settled.\n\n", report.TeamA+" - "+report.TeamB, report.ResultA, report.ResultB))
	if len(report.Awards) == 0 {
		sb.WriteString("No predictions were placed.")
	} else {
		for _, award := range report.Awards {
			sb.WriteString(fmt.Sprintf("%s %s %d:%d — %d\n",
				service.PointsEmoji(award.Points), displayAward(award), award.PredictionA, award.PredictionB, award.Points))
		}
	}

	b.send(chatID, sb.String())
}

func displayAward(award models.SettlementAward) string {
	if award.Username != "" {
		return "@" + award.Username
	}
	return award.FirstName
}

func (b *Bot) startPointsDialog(ctx context.Context, chatID, userID int64, action string) {
	c := b.conversations.start(userID, stepPointsUser)
	c.action = action
	b.send(chatID, "👤 Whose points? Send a @username or Telegram ID (or /cancel):")
}

func (b *Bot) handlePointsHistory(ctx context.Context, chatID int64) {
	entries, err := b.services.Points.GetHistory(ctx, 0, 15)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if len(entries) == 0 {
		b.send(chatID, "📭 No manual adjustments yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 Recent adjustments:\n\n")
	for _, entry := range entries {
		line := fmt.Sprintf("%s user %d: %+d (%d → %d)",
			entry.CreatedAt.Format("02.01 15:04"), entry.UserID, entry.PointsChange, entry.OldTotal, entry.NewTotal)
		if entry.Reason != nil {
			line += " — " + *entry.Reason
		}
		sb.WriteString(line + "\n")
	}

	b.send(chatID, sb.String())
}

func (b *Bot) handleNewSeason(ctx context.Context, chatID int64, args string) {
	rollover, err := b.services.Seasons.CloseSeason(ctx, strings.TrimSpace(args))
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	b.send(chatID, fmt.Sprintf("🔄 Season %d is closed, results are archived.\n\n"+
		"▶️ %s has started. %d players begin from zero.",
		rollover.ClosedSeasonNumber, rollover.NewSeasonName, rollover.UsersReset))
}

func (b *Bot) handleAdmins(ctx context.Context, chatID int64) {
	admins, err := b.services.Admins.ListAdmins(ctx)
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("👥 Admins:\n\n")
	for _, admin := range admins {
		badge := "🔧"
		if admin.IsSuperAdmin {
			badge = "⭐"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", badge, displayAdmin(admin)))
	}

	b.send(chatID, sb.String())
}

func displayAdmin(admin *models.Admin) string {
	if admin.Username != "" {
		return "@" + admin.Username
	}
	if name := strings.TrimSpace(admin.FirstName + " " + admin.LastName); name != "" {
		return name
	}
	return strconv.FormatInt(admin.UserID, 10)
}

func (b *Bot) handleAddAdmin(ctx context.Context, chatID, grantorID int64, args string) {
	user, err := b.resolveUser(ctx, strings.TrimSpace(args))
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if user == nil {
		b.send(chatID, "Use /addadmin <@username or ID>. The user must have talked to the bot before.")
		return
	}

	admin := &models.Admin{
		UserID:    user.TelegramID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if err := b.services.Admins.AddAdmin(ctx, grantorID, admin); err != nil {
		b.sendError(chatID, err)
		return
	}

	b.send(chatID, fmt.Sprintf("✅ %s is now an admin.", displayAdmin(admin)))
}

func (b *Bot) handleRemoveAdmin(ctx context.Context, chatID, grantorID int64, args string) {
	user, err := b.resolveUser(ctx, strings.TrimSpace(args))
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if user == nil {
		b.send(chatID, "Use /removeadmin <@username or ID>.")
		return
	}

	if err := b.services.Admins.RemoveAdmin(ctx, grantorID, user.TelegramID); err != nil {
		b.sendError(chatID, err)
		return
	}

	b.send(chatID, "✅ Admin rights revoked.")
}

// resolveUser maps a "@username or ID" argument to a known user. A nil
// user with a nil error means the argument did not resolve.
func (b *Bot) resolveUser(ctx context.Context, arg string) (*models.User, error) {
	if arg == "" {
		return nil, nil
	}

	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		users, err := b.services.Users.SearchUsers(ctx, arg)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			if user.TelegramID == id {
				return user, nil
			}
		}
		// No profile matched the digits as text, treat them as an ID.
		return &models.User{TelegramID: id}, nil
	}

	users, err := b.services.Users.SearchUsers(ctx, arg)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimPrefix(arg, "@"))
	for _, user := range users {
		if strings.ToLower(user.Username) == term {
			return user, nil
		}
	}
	if len(users) == 1 {
		return users[0], nil
	}
	return nil, nil
}

func (b *Bot) continueConversation(ctx context.Context, msg *tgbotapi.Message, c *conversation) {
	chatID := msg.Chat.ID
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	switch c.step {
	case stepAddMatchTeamA:
		c.teamA = text
		c.step = stepAddMatchTeamB
		b.send(chatID, "Now the away team name:")

	case stepAddMatchTeamB:
		c.teamB = text
		c.step = stepAddMatchKickoff
		b.send(chatID, fmt.Sprintf("When does %s - %s kick off? Use %s:", c.teamA, c.teamB, kickoffLayout))

	case stepAddMatchKickoff:
		kickoff, err := time.ParseInLocation(kickoffLayout, text, time.Local)
		if err != nil {
			b.send(chatID, fmt.Sprintf("I couldn't read that time. Use %s, e.g. 24.12.2026 19:30:", kickoffLayout))
			return
		}
		match, err := b.services.Matches.CreateMatch(ctx, c.teamA, c.teamB, kickoff)
		b.conversations.clear(userID)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		b.send(chatID, fmt.Sprintf("✅ Match #%d %s scheduled for %s.",
			match.ID, match.Title(), match.KickoffTime.Format(kickoffLayout)))

	case stepPointsUser:
		user, err := b.resolveUser(ctx, text)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		if user == nil {
			b.send(chatID, "I couldn't find that user. Try a @username or Telegram ID:")
			return
		}
		c.targetUserID = user.TelegramID
		c.step = stepPointsAmount
		if c.action == "set" {
			b.send(chatID, "What should the new total be?")
		} else {
			b.send(chatID, "How many points? Negative values deduct.")
		}

	case stepPointsAmount:
		amount, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			b.send(chatID, "Send a whole number, e.g. 5 or -3:")
			return
		}
		c.amount = amount
		c.step = stepPointsReason
		b.send(chatID, "Why? Send a short reason, or - to skip:")

	case stepPointsReason:
		reason := text
		if reason == "-" {
			reason = ""
		}
		b.conversations.clear(userID)
		b.applyPointsAdjustment(ctx, chatID, userID, c, reason)
	}
}

func (b *Bot) applyPointsAdjustment(ctx context.Context, chatID, adminID int64, c *conversation, reason string) {
	var (
		result *models.AdjustmentResult
		err    error
	)
	if c.action == "set" {
		result, err = b.services.Points.SetPoints(ctx, c.targetUserID, c.amount, adminID, reason)
	} else {
		result, err = b.services.Points.AdjustPoints(ctx, c.targetUserID, c.amount, adminID, reason)
	}
	if err != nil {
		b.sendError(chatID, err)
		return
	}

	b.send(chatID, fmt.Sprintf("✅ Done: %d → %d (%+d).", result.OldTotal, result.NewTotal, result.Change))
}
