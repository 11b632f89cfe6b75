package bot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"kushklicker/internal/domain"
	"kushklicker/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackLeaderboard  = "leaderboard"
	callbackAchievements = "achievements"
	callbackWallet       = "wallet"

	commandTimeout = 10 * time.Second
)

// TelegramBot serves the player commands over the Telegram Bot API.
type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	game    Game
	gameURL string
	stopCh  chan struct{}
	wg      sync.WaitGroup
	log     *slog.Logger
}

// NewTelegramBot authorizes against the Bot API with token.
func NewTelegramBot(token string, g Game, gameURL string) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "telegram_bot")
	log.Info("telegram bot authorized", "username", api.Self.UserName)

	return &TelegramBot{
		bot:     api,
		game:    g,
		gameURL: gameURL,
		stopCh:  make(chan struct{}),
		log:     log,
	}, nil
}

// Start runs the update loop until Stop is called.
func (b *TelegramBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			switch {
			case update.CallbackQuery != nil:
				b.wg.Add(1)
				go func(q *tgbotapi.CallbackQuery) {
					defer b.wg.Done()
					b.handleCallback(q)
				}(update.CallbackQuery)
			case update.Message != nil && update.Message.IsCommand():
				b.wg.Add(1)
				go func(msg *tgbotapi.Message) {
					defer b.wg.Done()
					b.handleCommand(msg)
				}(update.Message)
			}
		}
	}
}

// Stop ends the update loop and waits for in-flight handlers.
func (b *TelegramBot) Stop() {
	b.log.Info("stopping telegram bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("telegram bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("telegram bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *TelegramBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	reply := b.respond(ctx, msg.Chat.ID, msg.From, msg.Command(), msg.CommandArguments())
	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err, "command", msg.Command())
	}
}

// respond builds the reply for a single command without talking to Telegram.
func (b *TelegramBot) respond(ctx context.Context, chatID int64, from *tgbotapi.User, command, args string) tgbotapi.MessageConfig {
	switch command {
	case "start":
		reply := tgbotapi.NewMessage(chatID, welcomeText)
		reply.ReplyMarkup = b.startKeyboard(from)
		return reply
	case "help":
		return tgbotapi.NewMessage(chatID, helpText)
	case "stats":
		return tgbotapi.NewMessage(chatID, b.stats(ctx, from))
	case "leaderboard":
		return tgbotapi.NewMessage(chatID, b.leaderboard(ctx))
	case "link":
		return tgbotapi.NewMessage(chatID, b.link(ctx, from, args))
	default:
		return tgbotapi.NewMessage(chatID, unknownCommandText)
	}
}

func (b *TelegramBot) startKeyboard(from *tgbotapi.User) tgbotapi.InlineKeyboardMarkup {
	var username string
	if from != nil {
		username = from.UserName
	}
	// v5.5.1 has no web_app button type; a URL button opens the same page.
	play := tgbotapi.NewInlineKeyboardButtonURL("🎮 Play KushKlicker", gameLink(b.gameURL, username))
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(play),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Leaderboard", callbackLeaderboard),
			tgbotapi.NewInlineKeyboardButtonData("🏆 Achievements", callbackAchievements),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Wallet", callbackWallet),
		),
	)
}

// stats prefers a linked account and falls back to the Telegram username.
func (b *TelegramBot) stats(ctx context.Context, from *tgbotapi.User) string {
	if from == nil {
		return notFoundText
	}
	p, err := b.game.FindLinkedPlayer(ctx, telegramPrefix(from.ID))
	if errors.Is(err, domain.ErrNotFound) && from.UserName != "" {
		p, err = b.game.GetPlayerByUsername(ctx, from.UserName)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return notFoundText
		}
		b.log.Error("stats lookup failed", "error", err, "tg_id", from.ID)
		return errorText
	}
	return statsText(p)
}

func (b *TelegramBot) leaderboard(ctx context.Context) string {
	players, err := b.game.TopPlayers(ctx, leaderboardSize)
	if err != nil {
		b.log.Error("leaderboard lookup failed", "error", err)
		return errorText
	}
	return "🏆 Top KushKlicker Players\n\n" + leaderboardLines(players, true)
}

func (b *TelegramBot) link(ctx context.Context, from *tgbotapi.User, args string) string {
	username := strings.TrimSpace(args)
	if username == "" || from == nil {
		return linkUsageText
	}
	p, err := b.game.LinkAccount(ctx, username, telegramPrefix(from.ID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return linkNotFoundText
		}
		b.log.Error("link failed", "error", err, "tg_id", from.ID)
		return errorText
	}
	b.log.Info("account linked", "tg_id", from.ID, "player_id", p.ID)
	return "✅ Account linked! Your KushKlicker stats are now available with /stats."
}

func (b *TelegramBot) handleCallback(q *tgbotapi.CallbackQuery) {
	if _, err := b.bot.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.log.Warn("callback ack failed", "error", err)
	}
	if q.Message == nil {
		return
	}
	text, ok := callbackText(q.Data)
	if !ok {
		return
	}
	if _, err := b.bot.Send(tgbotapi.NewMessage(q.Message.Chat.ID, text)); err != nil {
		b.log.Error("error sending message", "error", err, "callback", q.Data)
	}
}

func callbackText(data string) (string, bool) {
	switch data {
	case callbackLeaderboard:
		return leaderboardHint, true
	case callbackAchievements:
		return achievementsHint, true
	case callbackWallet:
		return walletHint, true
	}
	return "", false
}

func telegramPrefix(id int64) string {
	return linkPrefix(domain.TelegramLinkPrefix, strconv.FormatInt(id, 10))
}
