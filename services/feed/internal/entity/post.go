package entity

import (
	"time"

	"cofeed/pkg/models"
	"cofeed/pkg/visibility"
)

type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

type Media struct {
	ID         string           `json:"id"`
	URL        string           `json:"url"`
	Kind       models.MediaKind `json:"kind"`
	UploaderID string           `json:"uploader_id"`
	Position   int              `json:"position"`
}

// Candidate is a post row read from the store before the visibility check.
type Candidate struct {
	ID           string
	OwnerID      string
	Body         *string
	Privacy      models.Privacy
	AllowShare   bool
	SharedFromID *string
	CreatedAt    time.Time
	EditedAt     *time.Time
	CoCreatorIDs []string
}

func (c *Candidate) Subject() visibility.Subject {
	return visibility.Subject{
		OwnerID:      c.OwnerID,
		CoCreatorIDs: c.CoCreatorIDs,
		Privacy:      c.Privacy,
	}
}

// Stats are recomputed from child rows for every page.
type Stats struct {
	Likes         int64 `json:"likes"`
	Comments      int64 `json:"comments"`
	Shares        int64 `json:"shares"`
	LikedByViewer bool  `json:"liked_by_viewer"`
}

// FeedPost is a visible post with everything the client renders.
type FeedPost struct {
	ID            string         `json:"id"`
	Owner         Profile        `json:"owner"`
	CoCreators    []Profile      `json:"co_creators"`
	Body          *string        `json:"body"`
	Privacy       models.Privacy `json:"privacy"`
	AllowShare    bool           `json:"allow_share"`
	SharedFromID  *string        `json:"shared_from_id,omitempty"`
	OriginRemoved bool           `json:"origin_removed"`
	Media         []Media        `json:"media"`
	Stats         Stats          `json:"stats"`
	CreatedAt     time.Time      `json:"created_at"`
	EditedAt      *time.Time     `json:"edited_at,omitempty"`
}

type Page struct {
	Posts      []FeedPost `json:"posts"`
	NextCursor string     `json:"next_cursor"`
}
