package models

import (
	"time"

	"gorm.io/gorm"
)

// Follow is a directed edge: follower -> following. Edges are only created
// through FollowService (direct follow of a public account, or request
// approval) and only ever deleted, never updated.
type Follow struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID  string `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index" json:"follower_id"`
	FollowingID string `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`

	Follower  User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Follow) TableName() string { return "follows" }

// FollowRequestStatus values only exist in flight: a resolved request row is
// deleted, so "pending" is the only status persisted.
const (
	FollowRequestStatusPending  = "pending"
	FollowRequestStatusAccepted = "accepted"
	FollowRequestStatusRejected = "rejected"
)

// FollowRequest gates edge creation when the target account requires
// approval. At most one pending request per (requester, target) pair.
type FollowRequest struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	RequesterID string `gorm:"type:uuid;not null;uniqueIndex:idx_follow_requests_pair;index" json:"requester_id"`
	TargetID    string `gorm:"type:uuid;not null;uniqueIndex:idx_follow_requests_pair;index" json:"target_id"`
	Status      string `gorm:"type:varchar(16);not null;default:pending" json:"status"`

	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Target    User `gorm:"foreignKey:TargetID" json:"target,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FollowRequest) TableName() string { return "follow_requests" }

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

func (fr *FollowRequest) BeforeCreate(tx *gorm.DB) error {
	if fr.ID == "" {
		fr.ID = generateUUID()
	}
	return nil
}
