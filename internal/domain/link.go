package domain

import "time"

// Link is the shareable record behind a room. It is immutable once created.
type Link struct {
	ChatID    ChatID    `json:"chatId"`
	CreatedAt time.Time `json:"createdAt"`
}
