package persistent

import (
	"cofeed/pkg/models"
	"cofeed/services/interaction/internal/entity"
)

func ToCommentEntity(m *models.Comment) entity.Comment {
	return entity.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.AuthorID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func ToCommentModel(e *entity.Comment) *models.Comment {
	return &models.Comment{
		ID:        e.ID,
		PostID:    e.PostID,
		AuthorID:  e.AuthorID,
		Body:      e.Body,
		CreatedAt: e.CreatedAt,
	}
}

func ToPostRef(m *models.Post, coCreatorIDs []string) *entity.PostRef {
	return &entity.PostRef{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		CoCreatorIDs: coCreatorIDs,
		Privacy:      m.Privacy,
		AllowShare:   m.AllowShare,
	}
}

func ToSharedPost(m *models.Post) *entity.SharedPost {
	share := &entity.SharedPost{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Privacy:   m.Privacy,
		CreatedAt: m.CreatedAt,
	}
	if m.Body != nil {
		share.Body = *m.Body
	}
	if m.SharedFromID != nil {
		share.SharedFromID = *m.SharedFromID
	}
	return share
}
