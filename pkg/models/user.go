package models

import "time"

// User is the read-only profile stub owned by the identity provider.
type User struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Username  string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"username"`
	AvatarURL string    `gorm:"type:varchar(500)" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// Friendship rows are stored in both directions: (a, b) and (b, a).
type Friendship struct {
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	FriendID  string    `gorm:"type:uuid;primaryKey;index" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Friendship) TableName() string { return "friendships" }
