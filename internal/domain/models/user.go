package models

import "time"

// User is a registered chatbot user.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserQuery is one logged chat or search query.
type UserQuery struct {
	ID        int64     `json:"id"`
	UserEmail string    `json:"user_email,omitempty"`
	Query     string    `json:"user_query"`
	Intent    string    `json:"intent"`
	Locations string    `json:"locations"`
	Dates     string    `json:"dates"`
	CreatedAt time.Time `json:"created_at"`
}
