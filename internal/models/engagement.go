package models

import (
	"time"

	"gorm.io/gorm"
)

// Like is a unique (user, reel) pair. Totals come from a count query; the
// cached like_count on Reel is refreshed opportunistically.
type Like struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_likes_pair;index" json:"user_id"`
	ReelID string `gorm:"type:uuid;not null;uniqueIndex:idx_likes_pair;index" json:"reel_id"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Reel Reel `gorm:"foreignKey:ReelID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Share records a reel being shared out; unique per (user, reel)
type Share struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_shares_pair;index" json:"user_id"`
	ReelID string `gorm:"type:uuid;not null;uniqueIndex:idx_shares_pair;index" json:"reel_id"`

	CreatedAt time.Time `json:"created_at"`
}

// Bookmark marks a reel as worth revisiting. A repeat bookmark is not a
// conflict: it bumps revisit_count and last_visited_at instead.
type Bookmark struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_pair;index" json:"user_id"`
	ReelID string `gorm:"type:uuid;not null;uniqueIndex:idx_bookmarks_pair;index" json:"reel_id"`

	RevisitCount  int        `gorm:"default:0" json:"revisit_count"`
	LastVisitedAt *time.Time `json:"last_visited_at"`

	Reel Reel `gorm:"foreignKey:ReelID" json:"reel,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentLike is a unique (user, comment) pair behind the comment like
// toggle.
type CommentLike struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_pair;index" json:"user_id"`
	CommentID string `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_pair;index" json:"comment_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (CommentLike) TableName() string { return "comment_likes" }

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (s *Share) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = generateUUID()
	}
	return nil
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = generateUUID()
	}
	return nil
}

func (cl *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if cl.ID == "" {
		cl.ID = generateUUID()
	}
	return nil
}
