package entity

import (
	"time"

	"cofeed/pkg/models"
	"cofeed/pkg/visibility"
)

// PostRef is the slice of a post engagement rules look at.
type PostRef struct {
	ID           string
	OwnerID      string
	CoCreatorIDs []string
	Privacy      models.Privacy
	AllowShare   bool
}

func (p *PostRef) Subject() visibility.Subject {
	return visibility.Subject{
		OwnerID:      p.OwnerID,
		CoCreatorIDs: p.CoCreatorIDs,
		Privacy:      p.Privacy,
	}
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentPage struct {
	Comments   []Comment `json:"comments"`
	NextCursor string    `json:"next_cursor"`
}

// Counts are always derived from the child rows at read time.
type Counts struct {
	PostID        string `json:"post_id"`
	Likes         int64  `json:"likes"`
	Comments      int64  `json:"comments"`
	Shares        int64  `json:"shares"`
	LikedByViewer bool   `json:"liked_by_viewer"`
}

// SharedPost is the post a share creates.
type SharedPost struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"owner_id"`
	Body         string         `json:"body"`
	Privacy      models.Privacy `json:"privacy"`
	SharedFromID string         `json:"shared_from_id"`
	CreatedAt    time.Time      `json:"created_at"`
}
