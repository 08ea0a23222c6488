package visibility

import (
	"testing"

	"cofeed/pkg/models"

	"github.com/stretchr/testify/assert"
)

var allPrivacies = []models.Privacy{models.PrivacyPublic, models.PrivacyFriends, models.PrivacyPrivate}

func TestCanView_AuthorsAlwaysSee(t *testing.T) {
	for _, privacy := range allPrivacies {
		post := Subject{OwnerID: "owner", CoCreatorIDs: []string{"co1", "co2"}, Privacy: privacy}
		for _, connected := range []bool{true, false} {
			assert.True(t, CanView(post, "owner", connected), privacy)
			assert.True(t, CanView(post, "co1", connected), privacy)
			assert.True(t, CanView(post, "co2", connected), privacy)
		}
	}
}

func TestCanView_PrivateHiddenFromEveryoneElse(t *testing.T) {
	post := Subject{OwnerID: "owner", CoCreatorIDs: []string{"co1"}, Privacy: models.PrivacyPrivate}
	assert.False(t, CanView(post, "stranger", false))
	assert.False(t, CanView(post, "friend", true))
	assert.False(t, CanView(post, "", false))
}

func TestCanView_Friends(t *testing.T) {
	post := Subject{OwnerID: "owner", Privacy: models.PrivacyFriends}
	assert.True(t, CanView(post, "friend", true))
	assert.False(t, CanView(post, "stranger", false))
}

func TestCanView_Public(t *testing.T) {
	post := Subject{OwnerID: "owner", Privacy: models.PrivacyPublic}
	assert.True(t, CanView(post, "stranger", false))
	assert.True(t, CanView(post, "", false))
}

func TestCanView_UnknownPrivacyIsHidden(t *testing.T) {
	post := Subject{OwnerID: "owner", Privacy: models.Privacy("followers")}
	assert.False(t, CanView(post, "friend", true))
}

func TestNeedsRelationship(t *testing.T) {
	friends := Subject{OwnerID: "owner", CoCreatorIDs: []string{"co"}, Privacy: models.PrivacyFriends}
	assert.True(t, NeedsRelationship(friends, "viewer"))
	assert.False(t, NeedsRelationship(friends, "owner"))
	assert.False(t, NeedsRelationship(friends, "co"))
	assert.False(t, NeedsRelationship(Subject{OwnerID: "owner", Privacy: models.PrivacyPublic}, "viewer"))
}
