// Package models holds the persisted entities of the book review server and
// their JSON representation.
package models

import "time"

// Review is a user's opinion on a book identified by an external BookID.
// Likes is an ordered sequence of free-form liker identifiers; duplicates
// are kept and it is never nil once loaded.
type Review struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	BookID    string    `json:"bookId"`
	CreatedAt time.Time `json:"createdAt"`
	Likes     []string  `json:"likes"`
	UserID    int64     `json:"-"`
	Author    Author    `json:"user"`
}

// OwnerUsername returns the username the review belongs to.
func (r *Review) OwnerUsername() string {
	return r.Author.UserName
}
