package game

import (
	"fmt"
	"math/rand/v2"
	"strconv"
)

// FormatNumber renders an amount the way the game UI shows it:
// 999, 1.5K, 2.0M, 3.1B.
func FormatNumber(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1e9)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1e3)
	}
	return strconv.FormatInt(n, 10)
}

var (
	usernameAdjectives = []string{"Green", "High", "Chill", "Blazed", "Mellow", "Cosmic", "Zen", "Fresh"}
	usernameNouns      = []string{"Grower", "Smoker", "Farmer", "Master", "King", "Queen", "Legend", "Pro"}
)

// GenerateUsername returns a random name such as "ChillFarmer42".
func GenerateUsername() string {
	return usernameAdjectives[rand.IntN(len(usernameAdjectives))] +
		usernameNouns[rand.IntN(len(usernameNouns))] +
		strconv.Itoa(rand.IntN(1000))
}
