package entities

import "time"

// User carries the public profile fields exposed to conversation lists.
type User struct {
	ID        string `json:"_id" db:"id"`
	Firstname string `json:"firstname" db:"firstname"`
	Lastname  string `json:"lastname" db:"lastname"`
	Avatar    string `json:"avatar" db:"avatar"`
}

// Friendship is an edge between two users. CreatedAt doubles as the
// conversation timestamp while no message has been exchanged yet.
type Friendship struct {
	UserID    string    `db:"user_id"`
	FriendID  string    `db:"friend_id"`
	CreatedAt time.Time `db:"created_at"`
}
