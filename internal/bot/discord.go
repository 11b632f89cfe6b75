package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"kushklicker/internal/domain"
	"kushklicker/internal/game"
	"kushklicker/internal/logger"

	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x4CAF50

var discordCommands = []*discordgo.ApplicationCommand{
	{Name: "start", Description: "Start playing KushKlicker"},
	{Name: "stats", Description: "Show your KushKlicker stats"},
	{Name: "leaderboard", Description: "Show the top KushKlicker players"},
	{
		Name:        "link",
		Description: "Link your Discord account to your KushKlicker player",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "username",
			Description: "Your KushKlicker username",
			Required:    true,
		}},
	},
}

// DiscordBot serves the slash commands over a discordgo gateway session.
type DiscordBot struct {
	session *discordgo.Session
	game    Game
	gameURL string
	wg      sync.WaitGroup
	log     *slog.Logger
}

func NewDiscordBot(token string, g Game, gameURL string) (*DiscordBot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	b := &DiscordBot{
		session: s,
		game:    g,
		gameURL: gameURL,
		log:     logger.With("component", "discord_bot"),
	}
	s.AddHandler(b.onInteraction)
	return b, nil
}

// Start opens the gateway and registers the slash commands globally.
func (b *DiscordBot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	appID := b.session.State.User.ID
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, "", discordCommands); err != nil {
		b.session.Close()
		return fmt.Errorf("register discord commands: %w", err)
	}
	b.log.Info("discord bot ready", "username", b.session.State.User.Username)
	return nil
}

// Stop waits for running handlers and closes the gateway.
func (b *DiscordBot) Stop() {
	b.log.Info("stopping discord bot...")
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		b.log.Warn("discord bot shutdown timeout, some handlers may not have completed")
	}
	if err := b.session.Close(); err != nil {
		b.log.Warn("discord session close failed", "error", err)
	}
}

func (b *DiscordBot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	b.wg.Add(1)
	defer b.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	data := i.ApplicationCommandData()
	options := make(map[string]string, len(data.Options))
	for _, o := range data.Options {
		if o.Type == discordgo.ApplicationCommandOptionString {
			options[o.Name] = o.StringValue()
		}
	}

	resp := b.respond(ctx, interactionUser(i), data.Name, options)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: resp,
	})
	if err != nil {
		b.log.Error("interaction respond failed", "error", err, "command", data.Name)
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func (b *DiscordBot) respond(ctx context.Context, user *discordgo.User, command string, options map[string]string) *discordgo.InteractionResponseData {
	if user == nil {
		return ephemeral(errorText)
	}
	switch command {
	case "start":
		return b.start()
	case "stats":
		return b.stats(ctx, user)
	case "leaderboard":
		return b.leaderboard(ctx)
	case "link":
		return b.link(ctx, user, options["username"])
	default:
		return ephemeral(unknownCommandText)
	}
}

func (b *DiscordBot) start() *discordgo.InteractionResponseData {
	return embed(&discordgo.MessageEmbed{
		Title:       "🌿 Welcome to KushKlicker! 🌿",
		Description: strings.TrimPrefix(welcomeText, "🌿 Welcome to KushKlicker! 🌿\n\n"),
		URL:         b.gameURL,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎮 Play", Value: b.gameURL},
			{Name: "🔗 Link", Value: "Use `/link` to connect your Discord account to your player."},
		},
	})
}

func (b *DiscordBot) stats(ctx context.Context, user *discordgo.User) *discordgo.InteractionResponseData {
	p, err := b.game.FindLinkedPlayer(ctx, discordPrefix(user.ID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ephemeral(notLinkedText)
		}
		b.log.Error("stats lookup failed", "error", err, "discord_id", user.ID)
		return ephemeral(errorText)
	}
	return embed(&discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 %s's Stats", displayName(p.Username)),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🌿 Total KUSH", Value: game.FormatNumber(p.TotalKush), Inline: true},
			{Name: "👆 Total Clicks", Value: game.FormatNumber(p.TotalClicks), Inline: true},
			{Name: "💪 Per Click", Value: game.FormatNumber(p.PerClickMultiplier), Inline: true},
			{Name: "⏰ Per Hour", Value: game.FormatNumber(p.AutoIncomePerHour), Inline: true},
			{Name: "🪙 Claimable Tokens", Value: game.FormatNumber(p.ClaimableTokens), Inline: true},
		},
	})
}

func (b *DiscordBot) leaderboard(ctx context.Context) *discordgo.InteractionResponseData {
	players, err := b.game.TopPlayers(ctx, leaderboardSize)
	if err != nil {
		b.log.Error("leaderboard lookup failed", "error", err)
		return ephemeral(errorText)
	}
	return embed(&discordgo.MessageEmbed{
		Title:       "🏆 Top KushKlicker Players",
		Description: leaderboardLines(players, false),
	})
}

func (b *DiscordBot) link(ctx context.Context, user *discordgo.User, username string) *discordgo.InteractionResponseData {
	username = strings.TrimSpace(username)
	if username == "" {
		return ephemeral(linkNotFoundText)
	}
	p, err := b.game.LinkAccount(ctx, username, discordPrefix(user.ID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ephemeral(linkNotFoundText)
		}
		b.log.Error("link failed", "error", err, "discord_id", user.ID)
		return ephemeral(errorText)
	}
	b.log.Info("account linked", "discord_id", user.ID, "player_id", p.ID)

	resp := embed(&discordgo.MessageEmbed{
		Title:       "✅ Account Linked Successfully!",
		Description: fmt.Sprintf("Your Discord account is now linked to **%s**. Use `/stats` to see your progress.", username),
	})
	resp.Flags = discordgo.MessageFlagsEphemeral
	return resp
}

func embed(e *discordgo.MessageEmbed) *discordgo.InteractionResponseData {
	e.Color = embedColor
	return &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{e}}
}

func ephemeral(text string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	}
}

func discordPrefix(id string) string {
	return linkPrefix(domain.DiscordLinkPrefix, id)
}
