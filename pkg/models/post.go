package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID           string     `gorm:"type:uuid;primary_key;index:idx_posts_created_id,priority:2" json:"id"`
	OwnerID      string     `gorm:"type:uuid;not null;index" json:"owner_id"`
	Body         *string    `gorm:"type:text" json:"body"`
	Privacy      Privacy    `gorm:"type:varchar(16);not null;index" json:"privacy"`
	AllowShare   bool       `gorm:"not null" json:"allow_share"`
	SharedFromID *string    `gorm:"type:uuid;index" json:"shared_from_id"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_posts_created_id,priority:1" json:"created_at"`
	EditedAt     *time.Time `json:"edited_at"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// PostMedia only references its post; the post's media list is always a query.
type PostMedia struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	PostID     string    `gorm:"type:uuid;not null;index:idx_post_media_post_pos,priority:1" json:"post_id"`
	URL        string    `gorm:"type:varchar(500);not null" json:"url"`
	ObjectKey  string    `gorm:"type:varchar(500)" json:"-"`
	Kind       MediaKind `gorm:"type:varchar(10);not null" json:"kind"`
	UploaderID string    `gorm:"type:uuid;not null" json:"uploader_id"`
	Position   int       `gorm:"not null;index:idx_post_media_post_pos,priority:2" json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PostMedia) TableName() string { return "post_media" }

func (m *PostMedia) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// PostCoCreator stores the ordered co-creator set of a post. Rows are only
// written by an accepted invite and removed by the co-creator leaving.
type PostCoCreator struct {
	PostID   string    `gorm:"type:uuid;primaryKey" json:"post_id"`
	UserID   string    `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	CanEdit  bool      `gorm:"not null" json:"can_edit"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
}

func (PostCoCreator) TableName() string { return "post_co_creators" }

type CollaborationInvite struct {
	PostID      string       `gorm:"type:uuid;primaryKey" json:"post_id"`
	InviteeID   string       `gorm:"type:uuid;primaryKey;index" json:"invitee_id"`
	InviterID   string       `gorm:"type:uuid;not null" json:"inviter_id"`
	Status      InviteStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CanEdit     bool         `gorm:"not null" json:"can_edit"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	RespondedAt *time.Time   `json:"responded_at"`
}

func (CollaborationInvite) TableName() string { return "collaboration_invites" }

// IsAuthor reports whether userID may edit a post: its owner or one of its
// accepted co-creators.
func IsAuthor(ownerID string, coCreatorIDs []string, userID string) bool {
	if userID == "" {
		return false
	}
	if userID == ownerID {
		return true
	}
	for _, id := range coCreatorIDs {
		if id == userID {
			return true
		}
	}
	return false
}
