package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"tipster/events"
	"tipster/models"
	"tipster/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Config holds bot configuration
type Config struct {
	Token           string
	LeaderboardSize int
}

// Services bundles the application services the bot dispatches into.
type Services struct {
	Users       service.UserService
	Predictions service.PredictionService
	Matches     service.MatchService
	Settlement  service.SettlementService
	Seasons     service.SeasonService
	Points      service.PointsService
	Stats       service.StatsService
	Admins      service.AdminService
}

type Bot struct {
	config        Config
	api           *tgbotapi.BotAPI
	services      Services
	eventBus      *events.Bus
	conversations *conversationStore
}

func New(config Config, services Services, eventBus *events.Bus) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram session: %w", err)
	}

	bot := &Bot{
		config:        config,
		api:           api,
		services:      services,
		eventBus:      eventBus,
		conversations: newConversationStore(),
	}

	// Turn committed domain events into chat messages.
	eventBus.Subscribe(events.EventTypeMatchSettled, bot.onMatchSettled)
	eventBus.Subscribe(events.EventTypeSeasonClosed, bot.onSeasonClosed)
	eventBus.Subscribe(events.EventTypePointsAdjusted, bot.onPointsAdjusted)

	log.WithFields(log.Fields{
		"username": api.Self.UserName,
	}).Info("Telegram bot authorized")

	return bot, nil
}

// Run consumes the update long-poll until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithFields(log.Fields{
			"chatID": chatID,
			"error":  err,
		}).Warn("Failed to send message")
	}
}

// NotifyUpcomingMatch implements service.ReminderNotifier.
func (b *Bot) NotifyUpcomingMatch(ctx context.Context, user *models.User, match *models.Match) error {
	text := fmt.Sprintf("⏰ %s kicks off at %s and you have no prediction yet!\n\nSend /predict %d <home>:<away> to get in.",
		match.Title(), match.KickoffTime.Format("15:04"), match.ID)

	msg := tgbotapi.NewMessage(user.TelegramID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to deliver reminder to user %d: %w", user.TelegramID, err)
	}
	return nil
}

func (b *Bot) onMatchSettled(ctx context.Context, event events.Event) {
	settled, ok := event.(events.MatchSettledEvent)
	if !ok {
		return
	}

	report := settled.Report
	for _, award := range report.Awards {
		text := fmt.Sprintf("🏁 %s finished %d:%d\n\nYour prediction: %d:%d\n%s",
			teamLine(report.TeamA, report.TeamB), report.ResultA, report.ResultB,
			award.PredictionA, award.PredictionB,
			service.PointsDescription(award.Points))
		b.send(award.UserID, text)
	}
}

func (b *Bot) onSeasonClosed(ctx context.Context, event events.Event) {
	closed, ok := event.(events.SeasonClosedEvent)
	if !ok {
		return
	}
	rollover := closed.Rollover

	results, err := b.services.Stats.GetSeasonResults(ctx, rollover.ClosedSeasonNumber, rollover.UsersReset)
	if err != nil {
		log.WithFields(log.Fields{
			"season": rollover.ClosedSeasonNumber,
			"error":  err,
		}).Error("Failed to load archived standings for announcement")
		return
	}

	for _, result := range results {
		text := fmt.Sprintf("🏆 Season %d is over!\n\nYou finished #%d with %d points.\n\n%s has started, everyone is back to zero. Good luck!",
			rollover.ClosedSeasonNumber, result.Position, result.FinalPoints, rollover.NewSeasonName)
		b.send(result.UserID, text)
	}
}

func (b *Bot) onPointsAdjusted(ctx context.Context, event events.Event) {
	adjusted, ok := event.(events.PointsAdjustedEvent)
	if !ok {
		return
	}

	text := fmt.Sprintf("🔔 An admin changed your points!\n\n📊 Before: %d\n📊 After: %d",
		adjusted.OldTotal, adjusted.NewTotal)
	if adjusted.Reason != "" {
		text += fmt.Sprintf("\n💬 Reason: %s", adjusted.Reason)
	}
	b.send(adjusted.UserID, text)
}

func teamLine(teamA, teamB string) string {
	return teamA + " - " + teamB
}
