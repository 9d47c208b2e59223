package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentPermission controls who may comment on a user's reels
type CommentPermission string

const (
	CommentPermissionEveryone  CommentPermission = "everyone"
	CommentPermissionFollowers CommentPermission = "followers"
	CommentPermissionNobody    CommentPermission = "nobody"
)

// User represents a Reelnet account
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `gorm:"not null" json:"display_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	AvatarURL   string `json:"avatar_url"`

	// Session identity is issued elsewhere; we only store the password hash
	// so 2FA enrollment can re-verify the caller.
	PasswordHash *string `gorm:"type:text" json:"-"`

	// Denormalized counters. Source of truth is the follows table; these are
	// updated in the same transaction as every edge write and can be rebuilt
	// with `reelctl recount`.
	FollowerCount  int `gorm:"default:0" json:"follower_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`
	ReelCount      int `gorm:"default:0" json:"reel_count"`

	// Privacy settings
	IsPublic              bool              `gorm:"default:true" json:"is_public"`
	RequireFollowApproval bool              `gorm:"default:false" json:"require_follow_approval"`
	AllowSuggestions      bool              `gorm:"default:true" json:"allow_suggestions"`
	AppearInDiscover      bool              `gorm:"default:true" json:"appear_in_discover"`
	CommentPermission     CommentPermission `gorm:"type:varchar(16);default:everyone" json:"comment_permission"`
	MentionPermission     CommentPermission `gorm:"type:varchar(16);default:everyone" json:"mention_permission"`

	// Activity tracking (authoritative fallback for the presence radar;
	// the live copy lives in redis with a TTL)
	LastActiveAt       *time.Time `json:"last_active_at"`
	CurrentActivity    string     `gorm:"type:varchar(32)" json:"current_activity"`
	ShowActivityStatus bool       `gorm:"default:true" json:"show_activity_status"`
	ShowLastActive     bool       `gorm:"default:true" json:"show_last_active"`

	// Two-factor authentication
	TwoFactorEnabled bool    `gorm:"default:false" json:"two_factor_enabled"`
	TwoFactorSecret  *string `gorm:"type:text" json:"-"`
	BackupCodes      *string `gorm:"type:text" json:"-"` // JSON array of bcrypt hashes

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RequiresApproval reports whether a follow of this user must go through the
// request workflow instead of creating an edge directly.
func (u *User) RequiresApproval() bool {
	return !u.IsPublic || u.RequireFollowApproval
}

// GetAvatarURL returns the avatar URL or empty string
func (u *User) GetAvatarURL() string {
	return u.AvatarURL
}

// BeforeCreate hooks for GORM
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

// Helper function for UUID generation
func generateUUID() string {
	return uuid.New().String()
}
