package models

import "time"

// Post is the feed aggregate. Author name and role are snapshotted at
// creation so reads never join back to the users table; a later profile
// change does not rewrite history.
//
// LikeCount must equal the number of PostLike rows for the post at all
// times; both sides are updated inside a single store transaction.
type Post struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	AuthorID   uint       `gorm:"index;not null" json:"author_id"`
	AuthorName string     `gorm:"size:128;not null" json:"author_name"`
	AuthorRole string     `gorm:"size:16;not null" json:"author_role"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	LikeCount  int        `gorm:"not null;default:0" json:"likes"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	Comments   []Comment  `gorm:"constraint:OnDelete:CASCADE" json:"comments"`
	Likes      []PostLike `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	// LikedBy is derived from Likes when a post is loaded; not a column.
	LikedBy []uint `gorm:"-" json:"liked_by"`
}

// PostLike records one user's membership in a post's liker set. The
// composite primary key is the uniqueness guarantee behind idempotent
// like toggling.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
