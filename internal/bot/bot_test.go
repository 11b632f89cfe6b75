package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kushklicker/internal/domain"
	"kushklicker/internal/game"
	"kushklicker/internal/logger"
	"kushklicker/internal/repository"

	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T) (*game.Engine, context.Context) {
	t.Helper()
	e := game.NewEngine(repository.NewMemoryStore(), game.Options{})
	ctx := context.Background()
	require.NoError(t, e.SeedCatalog(ctx))
	return e, ctx
}

func addPlayer(t *testing.T, e *game.Engine, username string, kush int64) *domain.Player {
	t.Helper()
	ctx := context.Background()
	p, err := e.CreatePlayer(ctx, game.NewPlayerInput{Username: username})
	require.NoError(t, err)
	if kush > 0 {
		p, err = e.UpdatePlayer(ctx, p.ID, domain.PlayerPatch{TotalKush: &kush})
		require.NoError(t, err)
	}
	return p
}

func newTestTelegram(g Game) *TelegramBot {
	return &TelegramBot{game: g, gameURL: "https://kush.example/play", stopCh: make(chan struct{}), log: logger.With("component", "test")}
}

func newTestDiscord(g Game) *DiscordBot {
	return &DiscordBot{game: g, gameURL: "https://kush.example/play", log: logger.With("component", "test")}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "alice", displayName("telegram_42_alice"))
	assert.Equal(t, "bob_the_grower", displayName("discord_99_bob_the_grower"))
	assert.Equal(t, "telegram_fan", displayName("telegram_fan"))
	assert.Equal(t, "telegram_x_y", displayName("telegram_x_y"))
	assert.Equal(t, "ChillFarmer42", displayName("ChillFarmer42"))
}

func TestGameLink(t *testing.T) {
	assert.Equal(t, "https://g.example?ref=alice", gameLink("https://g.example", "alice"))
	assert.Equal(t, "https://g.example?x=1&ref=alice", gameLink("https://g.example?x=1", "alice"))
	assert.Equal(t, "https://g.example", gameLink("https://g.example", ""))
}

func TestLeaderboardLines(t *testing.T) {
	players := []*domain.Player{
		{Username: "a", TotalKush: 1_500_000},
		{Username: "telegram_1_b", TotalKush: 2_500},
		{Username: "c", TotalKush: 300},
		{Username: "d", TotalKush: 7},
	}

	withMedals := leaderboardLines(players, true)
	assert.Equal(t, "🥇 a - 1.5M KUSH\n🥈 b - 2.5K KUSH\n🥉 c - 300 KUSH\n4. d - 7 KUSH", withMedals)

	plain := leaderboardLines(players[:2], false)
	assert.Equal(t, "1. a - 1.5M KUSH\n2. b - 2.5K KUSH", plain)

	assert.Equal(t, "No players yet. Be the first!", leaderboardLines(nil, true))
}

func TestTelegramStart(t *testing.T) {
	e, ctx := newTestGame(t)
	b := newTestTelegram(e)

	reply := b.respond(ctx, 7, &tgbotapi.User{ID: 1, UserName: "alice"}, "start", "")
	assert.Equal(t, int64(7), reply.ChatID)
	assert.Contains(t, reply.Text, "Welcome to KushKlicker")

	kb, ok := reply.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 3)
	play := kb.InlineKeyboard[0][0]
	require.NotNil(t, play.URL)
	assert.Equal(t, "https://kush.example/play?ref=alice", *play.URL)
	require.NotNil(t, kb.InlineKeyboard[2][0].CallbackData)
	assert.Equal(t, callbackWallet, *kb.InlineKeyboard[2][0].CallbackData)
}

func TestTelegramStatsFallsBackToUsername(t *testing.T) {
	e, ctx := newTestGame(t)
	b := newTestTelegram(e)
	addPlayer(t, e, "alice", 2_000)

	reply := b.respond(ctx, 1, &tgbotapi.User{ID: 10, UserName: "alice"}, "stats", "")
	assert.Contains(t, reply.Text, "Total KUSH: 2.0K")

	reply = b.respond(ctx, 1, &tgbotapi.User{ID: 11, UserName: "nobody"}, "stats", "")
	assert.Equal(t, notFoundText, reply.Text)

	reply = b.respond(ctx, 1, &tgbotapi.User{ID: 12}, "stats", "")
	assert.Equal(t, notFoundText, reply.Text)
}

func TestTelegramLinkThenStats(t *testing.T) {
	e, ctx := newTestGame(t)
	b := newTestTelegram(e)
	p := addPlayer(t, e, "GreenGrower7", 50)
	from := &tgbotapi.User{ID: 42, UserName: "someone_else"}

	reply := b.respond(ctx, 1, from, "link", "")
	assert.Equal(t, linkUsageText, reply.Text)

	reply = b.respond(ctx, 1, from, "link", "missing")
	assert.Equal(t, linkNotFoundText, reply.Text)

	reply = b.respond(ctx, 1, from, "link", " GreenGrower7 ")
	assert.Contains(t, reply.Text, "Account linked")

	linked, err := e.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "telegram_42_GreenGrower7", linked.Username)

	reply = b.respond(ctx, 1, from, "stats", "")
	assert.Contains(t, reply.Text, "Total KUSH: 50")
}

func TestTelegramLeaderboardAndUnknown(t *testing.T) {
	e, ctx := newTestGame(t)
	b := newTestTelegram(e)
	addPlayer(t, e, "low", 10)
	addPlayer(t, e, "high", 5_000)

	reply := b.respond(ctx, 1, &tgbotapi.User{ID: 1}, "leaderboard", "")
	lines := strings.Split(reply.Text, "\n")
	assert.Equal(t, "🏆 Top KushKlicker Players", lines[0])
	assert.Equal(t, "🥇 high - 5.0K KUSH", lines[2])
	assert.Equal(t, "🥈 low - 10 KUSH", lines[3])

	reply = b.respond(ctx, 1, &tgbotapi.User{ID: 1}, "dance", "")
	assert.Equal(t, unknownCommandText, reply.Text)
}

func TestCallbackText(t *testing.T) {
	text, ok := callbackText(callbackAchievements)
	assert.True(t, ok)
	assert.Equal(t, achievementsHint, text)

	_, ok = callbackText("bogus")
	assert.False(t, ok)
}

type failingGame struct{ Game }

func (failingGame) TopPlayers(context.Context, int) ([]*domain.Player, error) {
	return nil, errors.New("connection refused")
}

func (failingGame) FindLinkedPlayer(context.Context, string) (*domain.Player, error) {
	return nil, errors.New("connection refused")
}

func TestBotsHideStoreErrors(t *testing.T) {
	ctx := context.Background()
	tg := newTestTelegram(failingGame{})
	assert.Equal(t, errorText, tg.respond(ctx, 1, &tgbotapi.User{ID: 1}, "leaderboard", "").Text)
	assert.Equal(t, errorText, tg.respond(ctx, 1, &tgbotapi.User{ID: 1}, "stats", "").Text)

	dc := newTestDiscord(failingGame{})
	resp := dc.respond(ctx, &discordgo.User{ID: "1"}, "leaderboard", nil)
	assert.Equal(t, errorText, resp.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Flags)
}

func TestDiscordStatsRequiresLink(t *testing.T) {
	e, ctx := newTestGame(t)
	b := newTestDiscord(e)
	addPlayer(t, e, "alice", 1_234)
	user := &discordgo.User{ID: "555"}

	resp := b.respond(ctx, user, "stats", nil)
	assert.Equal(t, notLinkedText, resp.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Flags)

	resp = b.respond(ctx, user, "link", map[string]string{"username": "nobody"})
	assert.Equal(t, linkNotFoundText, resp.Content)

	resp = b.respond(ctx, user, "link", map[string]string{"username": "alice"})
	require.Len(t, resp.Embeds, 1)
	assert.Equal(t, "✅ Account Linked Successfully!", resp.Embeds[0].Title)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Flags)

	p, err := e.GetPlayerByUsername(ctx, "discord_555_alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1_234), p.TotalKush)

	resp = b.respond(ctx, user, "stats", nil)
	require.Len(t, resp.Embeds, 1)
	assert.Equal(t, "📊 alice's Stats", resp.Embeds[0].Title)
	assert.Equal(t, embedColor, resp.Embeds[0].Color)
	assert.Equal(t, "1.2K", resp.Embeds[0].Fields[0].Value)
}

func TestDiscordStartAndLeaderboard(t *testing.T) {
	e, ctx := newTestGame(t)
	b := newTestDiscord(e)
	addPlayer(t, e, "first", 900)
	addPlayer(t, e, "second", 100)
	user := &discordgo.User{ID: "1"}

	resp := b.respond(ctx, user, "start", nil)
	require.Len(t, resp.Embeds, 1)
	assert.Equal(t, "🌿 Welcome to KushKlicker! 🌿", resp.Embeds[0].Title)
	assert.Zero(t, resp.Flags)

	resp = b.respond(ctx, user, "leaderboard", nil)
	require.Len(t, resp.Embeds, 1)
	assert.Equal(t, "🏆 Top KushKlicker Players", resp.Embeds[0].Title)
	assert.Equal(t, "1. first - 900 KUSH\n2. second - 100 KUSH", resp.Embeds[0].Description)

	resp = b.respond(ctx, nil, "stats", nil)
	assert.Equal(t, errorText, resp.Content)
}
