package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"kushklicker/internal/domain"
	"kushklicker/internal/game"
)

// Game is the slice of the engine the chat bots are allowed to touch.
type Game interface {
	GetPlayerByUsername(ctx context.Context, username string) (*domain.Player, error)
	FindLinkedPlayer(ctx context.Context, linkPrefix string) (*domain.Player, error)
	TopPlayers(ctx context.Context, n int) ([]*domain.Player, error)
	LinkAccount(ctx context.Context, username, linkPrefix string) (*domain.Player, error)
}

const leaderboardSize = 10

var medals = []string{"🥇", "🥈", "🥉"}

// linkPrefix is the username prefix written for a chat account, e.g.
// "telegram_42_".
func linkPrefix(platform string, userID string) string {
	return platform + userID + "_"
}

// displayName strips a link prefix so linked players show their chosen name.
func displayName(username string) string {
	for _, p := range []string{domain.TelegramLinkPrefix, domain.DiscordLinkPrefix} {
		rest, ok := strings.CutPrefix(username, p)
		if !ok {
			continue
		}
		id, name, ok := strings.Cut(rest, "_")
		if !ok || name == "" {
			return username
		}
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return username
		}
		return name
	}
	return username
}

// gameLink builds the Web App URL carrying the referral username.
func gameLink(base, username string) string {
	if username == "" {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "ref=" + username
}

func leaderboardLines(players []*domain.Player, withMedals bool) string {
	if len(players) == 0 {
		return "No players yet. Be the first!"
	}
	var b strings.Builder
	for i, p := range players {
		rank := fmt.Sprintf("%d.", i+1)
		if withMedals && i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&b, "%s %s - %s KUSH\n", rank, displayName(p.Username), game.FormatNumber(p.TotalKush))
	}
	return strings.TrimRight(b.String(), "\n")
}

func statsText(p *domain.Player) string {
	return fmt.Sprintf(`📊 Your KushKlicker Stats

🌿 Total KUSH: %s
👆 Total Clicks: %s
💪 Per Click: %s
⏰ Per Hour: %s
🪙 Claimable Tokens: %s`,
		game.FormatNumber(p.TotalKush),
		game.FormatNumber(p.TotalClicks),
		game.FormatNumber(p.PerClickMultiplier),
		game.FormatNumber(p.AutoIncomePerHour),
		game.FormatNumber(p.ClaimableTokens),
	)
}

const welcomeText = `🌿 Welcome to KushKlicker! 🌿

Click to grow your KUSH empire, buy upgrades and unlock achievements.

🎮 Tap Play to start clicking
📊 Climb the leaderboard
🏆 Unlock achievements
💰 Connect your wallet to earn rewards`

const helpText = `🌿 KushKlicker Commands

/start - Open the game
/stats - Show your stats
/leaderboard - Top players
/link <username> - Link your game account
/help - Show this message`

const (
	notFoundText       = "🔍 Player not found. Start playing first with /start!"
	notLinkedText      = "❌ No linked account found! Use `/link` to connect your Discord account first."
	linkNotFoundText   = "❌ Player not found! Make sure you entered your correct KushKlicker username."
	linkUsageText      = "Usage: /link <username>"
	leaderboardHint    = "Use /leaderboard to see top players!"
	achievementsHint   = "🏆 View your achievements in the game! Use the Play button to open KushKlicker."
	walletHint         = "💰 Connect your Solana wallet in the game to earn real rewards!"
	unknownCommandText = "❓ Unknown command. Use /help to see what I can do."
	errorText          = "⚠️ Something went wrong. Please try again later."
)
