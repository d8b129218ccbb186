package entities

import "time"

// Conversation is a derived view, never persisted as its own row. It is
// assembled on every list fetch from the friendship edge and the latest
// message of the pair.
type Conversation struct {
	ID          string    `json:"id"`
	Friend      User      `json:"friend"`
	LastMessage string    `json:"last_message"`
	UpdatedAt   time.Time `json:"updated_at"`
}
