package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"github.com/corelord/corelord/internal/models"
)

// AlertConfig tunes the session alert notifier.
type AlertConfig struct {
	Interval time.Duration
	TopN     int
	MinScore float64
}

// AlertStore lists the users who opted into session alerts.
type AlertStore interface {
	ListAlertSubscribers(ctx context.Context) ([]models.User, error)
}

// SessionPlanner produces a ranked session plan for one user.
type SessionPlanner interface {
	Plan(ctx context.Context, userID string, limit int) ([]models.ScoredResult, error)
}

// TelegramSender is the slice of the bot API the notifier uses.
type TelegramSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
}

// NotificationService pushes upcoming session alerts to Telegram on a
// fixed interval.
type NotificationService struct {
	store   AlertStore
	planner SessionPlanner
	bot     TelegramSender
	config  AlertConfig
	logger  *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNotificationService creates the notifier. An empty bot token leaves
// the Telegram bot nil and alerts disabled.
func NewNotificationService(store AlertStore, planner SessionPlanner, telegramBotToken string, cfg AlertConfig, logger *logrus.Logger) *NotificationService {
	var telegramBot TelegramSender
	if telegramBotToken != "" {
		if b, err := bot.New(telegramBotToken); err == nil {
			telegramBot = b
		} else {
			logger.WithError(err).Warn("Failed to initialize Telegram bot, alerts disabled")
		}
	}

	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 3
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &NotificationService{
		store:   store,
		planner: planner,
		bot:     telegramBot,
		config:  cfg,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// NewNotificationServiceWithSender wires an explicit sender, used by
// tests.
func NewNotificationServiceWithSender(store AlertStore, planner SessionPlanner, sender TelegramSender, cfg AlertConfig, logger *logrus.Logger) *NotificationService {
	svc := NewNotificationService(store, planner, "", cfg, logger)
	svc.bot = sender
	return svc
}

// Enabled reports whether a Telegram bot is configured.
func (ns *NotificationService) Enabled() bool {
	return ns.bot != nil
}

// Start launches the alert loop. It is a no-op without a bot.
func (ns *NotificationService) Start() {
	if !ns.Enabled() {
		ns.logger.Info("Session alerts disabled, no Telegram bot configured")
		return
	}

	ns.wg.Add(1)
	go ns.run()
	ns.logger.Infof("Session alert notifier started (interval: %v)", ns.config.Interval)
}

// Stop shuts the alert loop down and waits for it.
func (ns *NotificationService) Stop() {
	ns.cancel()
	ns.wg.Wait()
}

func (ns *NotificationService) run() {
	defer ns.wg.Done()

	ticker := time.NewTicker(ns.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ns.ctx.Done():
			return
		case <-ticker.C:
			if err := ns.NotifySessionAlerts(ns.ctx); err != nil {
				ns.logger.WithError(err).Warn("Session alert sweep failed")
			}
		}
	}
}

// NotifySessionAlerts runs the planner for every subscriber and sends
// each one their upcoming sessions. A failure for one user does not stop
// the sweep.
func (ns *NotificationService) NotifySessionAlerts(ctx context.Context) error {
	if !ns.Enabled() {
		return fmt.Errorf("telegram bot not initialized")
	}

	users, err := ns.store.ListAlertSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("failed to get alert subscribers: %w", err)
	}

	if len(users) == 0 {
		ns.logger.Debug("No alert subscribers found")
		return nil
	}

	sent := 0
	for _, user := range users {
		if err := ns.sendSessionAlert(ctx, user); err != nil {
			ns.logger.WithError(err).Warnf("Failed to send session alert to user %s", user.ID)
			continue
		}
		sent++
	}

	ns.logger.Infof("Sent session alerts to %d of %d subscribers", sent, len(users))
	return nil
}

func (ns *NotificationService) sendSessionAlert(ctx context.Context, user models.User) error {
	if user.TelegramChatID == nil {
		return fmt.Errorf("user has no telegram chat id")
	}
	chatID, err := strconv.ParseInt(*user.TelegramChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	results, err := ns.planner.Plan(ctx, user.ID, ns.config.TopN)
	if err != nil {
		return fmt.Errorf("failed to plan sessions: %w", err)
	}

	results = ns.filterByMinScore(results)
	if len(results) == 0 {
		ns.logger.Debugf("No sessions above threshold for user %s, skipping alert", user.ID)
		return nil
	}

	_, err = ns.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      ns.formatSessionMessage(results),
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

func (ns *NotificationService) filterByMinScore(results []models.ScoredResult) []models.ScoredResult {
	if ns.config.MinScore <= 0 {
		return results
	}
	filtered := results[:0]
	for _, r := range results {
		if r.Score >= ns.config.MinScore {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// formatSessionMessage builds the Telegram alert body.
func (ns *NotificationService) formatSessionMessage(results []models.ScoredResult) string {
	message := "🏄 *Upcoming sessions worth paddling out for*\n\n"

	for i, r := range results {
		when := time.Unix(r.Timestamp, 0).Format("Mon 15:04")
		message += fmt.Sprintf("*%d. %s* (%s)\n", i+1, r.BreakName, r.Region)
		message += fmt.Sprintf("🕐 %s — score *%.2f*\n", when, r.Score)

		conditions := ""
		if r.WaveHeightM != nil {
			conditions += fmt.Sprintf("🌊 %.1fm ", *r.WaveHeightM)
		}
		if r.SwellPeriodS != nil {
			conditions += fmt.Sprintf("@ %.0fs ", *r.SwellPeriodS)
		}
		if r.WindSpeedKt != nil {
			conditions += fmt.Sprintf("💨 %.0fkt", *r.WindSpeedKt)
		}
		if conditions != "" {
			message += conditions + "\n"
		}
		message += "\n"
	}

	message += "Use /plan for the full ranking\n"
	message += "Use /stop to pause these alerts"

	return message
}
