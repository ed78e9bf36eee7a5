package entity

import "time"

// Role represents an authorization role. Slug is the stable identifier
// referenced from users; Title is the display name.
type Role struct {
	ID        string
	Slug      string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
