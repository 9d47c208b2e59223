package models

import (
	"time"

	"gorm.io/gorm"
)

// Reel represents a short-form video post. Transcoding and file storage live
// in a separate service; the backend only needs the reel's existence, its
// owner, and cached engagement counts.
type Reel struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Caption      string `gorm:"type:text" json:"caption"`
	VideoURL     string `gorm:"not null" json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     float64 `json:"duration"` // seconds

	// Engagement counts cached for feed rendering. like_count is refreshed
	// from a count query on every like/unlike; the rest are incremented
	// alongside their engagement rows.
	LikeCount     int `gorm:"default:0" json:"like_count"`
	CommentCount  int `gorm:"default:0" json:"comment_count"`
	ShareCount    int `gorm:"default:0" json:"share_count"`
	BookmarkCount int `gorm:"default:0" json:"bookmark_count"`
	ViewCount     int `gorm:"default:0" json:"view_count"`

	IsPublic bool `gorm:"default:true" json:"is_public"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Comment represents a comment on a Reel
type Comment struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	ReelID string `gorm:"not null;index" json:"reel_id"`
	Reel   Reel   `gorm:"foreignKey:ReelID" json:"-"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	// Threading - parent_id is null for top-level comments
	ParentID *string `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	// Cached count; comment_likes rows are the truth
	LikeCount int `gorm:"default:0" json:"like_count"`

	// Moderation
	IsDeleted bool `gorm:"default:false" json:"is_deleted"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Reel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}
