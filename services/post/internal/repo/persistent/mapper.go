package persistent

import (
	"cofeed/pkg/models"
	"cofeed/services/post/internal/entity"
)

func ToPostEntity(m *models.Post, coCreators []models.PostCoCreator, media []models.PostMedia) *entity.Post {
	if m == nil {
		return nil
	}

	post := &entity.Post{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Body:         m.Body,
		Privacy:      m.Privacy,
		AllowShare:   m.AllowShare,
		SharedFromID: m.SharedFromID,
		CoCreators:   make([]entity.CoCreator, len(coCreators)),
		Media:        make([]entity.Media, len(media)),
		CreatedAt:    m.CreatedAt,
		EditedAt:     m.EditedAt,
	}

	for i := range coCreators {
		post.CoCreators[i] = ToCoCreatorEntity(&coCreators[i])
	}
	for i := range media {
		post.Media[i] = ToMediaEntity(&media[i])
	}

	return post
}

func ToPostModel(e *entity.Post) *models.Post {
	if e == nil {
		return nil
	}

	return &models.Post{
		ID:           e.ID,
		OwnerID:      e.OwnerID,
		Body:         e.Body,
		Privacy:      e.Privacy,
		AllowShare:   e.AllowShare,
		SharedFromID: e.SharedFromID,
		CreatedAt:    e.CreatedAt,
		EditedAt:     e.EditedAt,
	}
}

func ToCoCreatorEntity(m *models.PostCoCreator) entity.CoCreator {
	return entity.CoCreator{
		UserID:   m.UserID,
		CanEdit:  m.CanEdit,
		JoinedAt: m.JoinedAt,
	}
}

func ToMediaEntity(m *models.PostMedia) entity.Media {
	if m == nil {
		return entity.Media{}
	}

	return entity.Media{
		ID:         m.ID,
		PostID:     m.PostID,
		URL:        m.URL,
		ObjectKey:  m.ObjectKey,
		Kind:       m.Kind,
		UploaderID: m.UploaderID,
		Position:   m.Position,
		CreatedAt:  m.CreatedAt,
	}
}

func ToMediaModel(e *entity.Media) *models.PostMedia {
	if e == nil {
		return nil
	}

	return &models.PostMedia{
		ID:         e.ID,
		PostID:     e.PostID,
		URL:        e.URL,
		ObjectKey:  e.ObjectKey,
		Kind:       e.Kind,
		UploaderID: e.UploaderID,
		Position:   e.Position,
		CreatedAt:  e.CreatedAt,
	}
}

func ToInviteEntity(m *models.CollaborationInvite) *entity.Invite {
	if m == nil {
		return nil
	}

	return &entity.Invite{
		PostID:      m.PostID,
		InviteeID:   m.InviteeID,
		InviterID:   m.InviterID,
		Status:      m.Status,
		CanEdit:     m.CanEdit,
		CreatedAt:   m.CreatedAt,
		RespondedAt: m.RespondedAt,
	}
}

func ToInviteModel(e *entity.Invite) *models.CollaborationInvite {
	if e == nil {
		return nil
	}

	return &models.CollaborationInvite{
		PostID:      e.PostID,
		InviteeID:   e.InviteeID,
		InviterID:   e.InviterID,
		Status:      e.Status,
		CanEdit:     e.CanEdit,
		CreatedAt:   e.CreatedAt,
		RespondedAt: e.RespondedAt,
	}
}
