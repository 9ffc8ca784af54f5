package models

import "time"

// ChatEntry is one persisted (question, answer) turn of the global conversation.
// Entries are auto-numbered and returned in creation order.
type ChatEntry struct {
	ID        int64     `json:"id" db:"id"`
	Message   string    `json:"message" db:"message"`
	Response  string    `json:"response" db:"response"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Message string `json:"message"`
}

// HistoryHit is a search result over the conversation log.
type HistoryHit struct {
	Entry ChatEntry `json:"entry"`
	Score float64   `json:"score"`
}
