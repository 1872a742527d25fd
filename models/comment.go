package models

import "time"

// Comment is an append-only child of a Post. It carries the author's
// display name snapshot only; comments are never queried on their own.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"index;not null" json:"post_id"`
	AuthorName string    `gorm:"size:128;not null" json:"author_name"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
