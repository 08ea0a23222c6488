package persistent

import (
	"cofeed/pkg/models"
)

func ToUsernames(users []models.User) map[string]string {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}
