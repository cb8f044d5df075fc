package domain

import "time"

// Session represents a signed-in user for the lifetime of one console run.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Actor() (User, bool) {
	if s == nil {
		return User{}, false
	}
	return s.User, true
}
