package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType identifies the social action that produced a notification
type NotificationType string

const (
	NotificationTypeLike           NotificationType = "like"
	NotificationTypeComment        NotificationType = "comment"
	NotificationTypeCommentLike    NotificationType = "comment_like"
	NotificationTypeFollowRequest  NotificationType = "follow_request"
	NotificationTypeFollowAccepted NotificationType = "follow_accepted"
)

// EntityType identifies what a notification points at
type EntityType string

const (
	EntityTypeReel          EntityType = "reel"
	EntityTypeComment       EntityType = "comment"
	EntityTypeUser          EntityType = "user"
	EntityTypeFollowRequest EntityType = "follow_request"
)

// Notification is a fan-out record written as a side effect of a social
// action. Actor display info and reel thumbnails are joined at read time,
// not denormalized here.
type Notification struct {
	ID          string           `gorm:"primaryKey;type:uuid" json:"id"`
	RecipientID string           `gorm:"type:uuid;not null;index:idx_notifications_recipient" json:"recipient_id"`
	ActorID     string           `gorm:"type:uuid;not null" json:"actor_id"`
	Type        NotificationType `gorm:"type:varchar(24);not null;index:idx_notifications_recipient" json:"type"`
	EntityType  EntityType       `gorm:"type:varchar(24);not null" json:"entity_type"`
	EntityID    string           `gorm:"type:uuid;not null;index" json:"entity_id"`
	Text        string           `gorm:"type:text" json:"text"`
	Read        bool             `gorm:"default:false;index" json:"read"`

	// For follow_request notifications: the canonical FollowRequest id, so
	// the recipient can act on the request without any fallback lookup.
	RequestID *string `gorm:"type:uuid;index" json:"request_id,omitempty"`

	Actor User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
