// Package notify delivers found opportunities to outside channels: Telegram
// alerts and a generic JSON webhook.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/akratos/surebet/internal/pkg/models"
)

// Min interval between two Telegram messages to the same chat to stay clear
// of the ~30 msg/min API limit.
const telegramSendInterval = 2 * time.Second

// TelegramNotifier sends arbitrage alerts to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramNotifier creates a notifier and verifies the bot token.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("failed to verify telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// SendOpportunity formats and sends one arbitrage alert, pacing sends to
// respect the API rate limit.
func (n *TelegramNotifier) SendOpportunity(ctx context.Context, opp *models.Opportunity) error {
	n.mu.Lock()
	if wait := telegramSendInterval - time.Since(n.lastSend); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			n.mu.Unlock()
			return ctx.Err()
		}
	}
	n.lastSend = time.Now()
	n.mu.Unlock()

	msg := tgbotapi.NewMessage(n.chatID, formatOpportunity(opp))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	slog.Info("notify: sent telegram alert", "match", opp.MatchName, "profit_percent", opp.ProfitPercent)
	return nil
}

func formatOpportunity(opp *models.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ARB %.2f%%: %s\n", opp.ProfitPercent, opp.MatchName)
	if opp.League != "" {
		fmt.Fprintf(&b, "League: %s\n", opp.League)
	}
	fmt.Fprintf(&b, "Kickoff: %s\n", opp.KickoffTime.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Guaranteed profit: %.2f per %.0f staked\n\n", opp.Profit, opp.TotalStake)
	labels := map[models.Outcome]string{
		models.OutcomeHome: "1 (home)",
		models.OutcomeDraw: "X (draw)",
		models.OutcomeAway: "2 (away)",
	}
	for _, bet := range opp.Bets {
		fmt.Fprintf(&b, "%s: %.2f @ %s, stake %.2f\n", labels[bet.Outcome], bet.Odd, bet.Bookmaker, bet.Stake)
	}
	if !opp.Executable {
		b.WriteString("\nNote: all legs at one bookmaker, not executable in practice")
	}
	return b.String()
}
