package entity

import (
	"io"
	"time"

	"cofeed/pkg/models"
	"cofeed/pkg/s3"
	"cofeed/pkg/visibility"
)

type Post struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"owner_id"`
	Body         *string        `json:"body"`
	Privacy      models.Privacy `json:"privacy"`
	AllowShare   bool           `json:"allow_share"`
	SharedFromID *string        `json:"shared_from_id,omitempty"`
	CoCreators   []CoCreator    `json:"co_creators"`
	Media        []Media        `json:"media"`
	CreatedAt    time.Time      `json:"created_at"`
	EditedAt     *time.Time     `json:"edited_at,omitempty"`
}

type CoCreator struct {
	UserID   string    `json:"user_id"`
	CanEdit  bool      `json:"can_edit"`
	JoinedAt time.Time `json:"joined_at"`
}

type Media struct {
	ID         string           `json:"id"`
	PostID     string           `json:"post_id"`
	URL        string           `json:"url"`
	ObjectKey  string           `json:"-"`
	Kind       models.MediaKind `json:"kind"`
	UploaderID string           `json:"uploader_id"`
	Position   int              `json:"position"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (p *Post) CoCreatorIDs() []string {
	ids := make([]string, len(p.CoCreators))
	for i, c := range p.CoCreators {
		ids[i] = c.UserID
	}
	return ids
}

func (p *Post) IsOwner(userID string) bool {
	return userID != "" && p.OwnerID == userID
}

func (p *Post) IsAuthor(userID string) bool {
	return models.IsAuthor(p.OwnerID, p.CoCreatorIDs(), userID)
}

// CanInvite is true for the owner and for co-creators holding edit rights.
func (p *Post) CanInvite(userID string) bool {
	if p.IsOwner(userID) {
		return true
	}
	for _, c := range p.CoCreators {
		if c.UserID == userID {
			return c.CanEdit
		}
	}
	return false
}

func (p *Post) CoCreator(userID string) (CoCreator, bool) {
	for _, c := range p.CoCreators {
		if c.UserID == userID {
			return c, true
		}
	}
	return CoCreator{}, false
}

func (p *Post) HasBody() bool {
	return p.Body != nil && *p.Body != ""
}

func (p *Post) Subject() visibility.Subject {
	return visibility.Subject{
		OwnerID:      p.OwnerID,
		CoCreatorIDs: p.CoCreatorIDs(),
		Privacy:      p.Privacy,
	}
}

// PostPatch carries the optional fields of an edit; nil means unchanged.
type PostPatch struct {
	Body       *string `json:"body"`
	Privacy    *string `json:"privacy"`
	AllowShare *bool   `json:"allow_share"`
}

func (p PostPatch) Empty() bool {
	return p.Body == nil && p.Privacy == nil && p.AllowShare == nil
}

// NewMedia is an object already in the media store, waiting to be attached.
type NewMedia struct {
	Ref        s3.ObjectRef
	Kind       models.MediaKind
	UploaderID string
}

// Upload is one file of a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadSeekCloser, error)
}

// UploadResult reports the outcome of a single item of a batch upload.
type UploadResult struct {
	Filename string           `json:"filename"`
	Ref      s3.ObjectRef     `json:"-"`
	Kind     models.MediaKind `json:"kind,omitempty"`
	Media    *Media           `json:"media,omitempty"`
	Error    string           `json:"error,omitempty"`
	Code     string           `json:"code,omitempty"`
	Cause    error            `json:"-"`
}

func (r UploadResult) OK() bool {
	return r.Error == ""
}
