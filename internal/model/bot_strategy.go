package model

// Bot strategy names
const (
	BotStrategyRandom   = "random"
	BotStrategyExplorer = "explorer"
)

// DefaultBotStrategy is used when a caller names none
const DefaultBotStrategy = BotStrategyExplorer

// BotStrategyDisplayName returns a human-readable label for a strategy
func BotStrategyDisplayName(strategy string) string {
	switch strategy {
	case BotStrategyRandom:
		return "Random walk"
	case BotStrategyExplorer:
		return "Explorer"
	default:
		return strategy
	}
}

// ValidBotStrategies returns all valid bot strategy names
func ValidBotStrategies() []string {
	return []string{BotStrategyRandom, BotStrategyExplorer}
}
