package models

import "time"

// Reply is a comment attached to a single review.
type Reply struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	ReviewID  int64     `json:"reviewId"`
	UserID    int64     `json:"-"`
	Author    Author    `json:"user"`
}

// OwnerUsername returns the username the reply belongs to.
func (r *Reply) OwnerUsername() string {
	return r.Author.UserName
}
