package models

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	UserName     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Author is the public projection of a user embedded in reviews and replies.
type Author struct {
	UserName string `json:"username"`
}
