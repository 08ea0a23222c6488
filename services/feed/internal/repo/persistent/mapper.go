package persistent

import (
	"cofeed/pkg/models"
	"cofeed/services/feed/internal/entity"
)

func ToCandidate(m *models.Post) entity.Candidate {
	return entity.Candidate{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Body:         m.Body,
		Privacy:      m.Privacy,
		AllowShare:   m.AllowShare,
		SharedFromID: m.SharedFromID,
		CreatedAt:    m.CreatedAt,
		EditedAt:     m.EditedAt,
	}
}

func ToProfile(m *models.User) entity.Profile {
	return entity.Profile{
		ID:        m.ID,
		Username:  m.Username,
		AvatarURL: m.AvatarURL,
	}
}

func ToMedia(m *models.PostMedia) entity.Media {
	return entity.Media{
		ID:         m.ID,
		URL:        m.URL,
		Kind:       m.Kind,
		UploaderID: m.UploaderID,
		Position:   m.Position,
	}
}
