package domain

// User represents a person who can be assigned tasks and sign in.
// Users are seeded externally and never modified by the application.
type User struct {
	Code     int    `json:"code"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

func (u User) Is(other User) bool {
	return u.Code == other.Code
}
