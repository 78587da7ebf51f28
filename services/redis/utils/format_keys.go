package utils

import "fmt"

// FormatPresenceKey builds the key holding a player's presence in a game
// Key format: "presence:{gameID}:{username}"
func FormatPresenceKey(gameID uint, username string) string {
	return fmt.Sprintf("presence:%d:%s", gameID, username)
}

// FormatPresencePattern matches every presence key of one game
func FormatPresencePattern(gameID uint) string {
	return fmt.Sprintf("presence:%d:*", gameID)
}

// FormatChatKey builds the key of a game's chat history list
// Key format: "chat:{gameID}"
func FormatChatKey(gameID uint) string {
	return fmt.Sprintf("chat:%d", gameID)
}
