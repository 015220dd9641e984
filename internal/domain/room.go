package domain

const MaxChatIDLen = 128

// ChatID names a room. Anyone who knows it may join, so it is treated as a capability.
type ChatID string

// ParseChatID accepts any non-empty id up to MaxChatIDLen bytes, taken verbatim.
func ParseChatID(raw string) (ChatID, error) {
	if raw == "" {
		return "", ErrChatIDEmpty
	}
	if len(raw) > MaxChatIDLen {
		return "", ErrChatIDTooLong
	}
	return ChatID(raw), nil
}
