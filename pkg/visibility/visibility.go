// Package visibility decides whether a viewer may see a post. It performs no
// I/O: the caller resolves the viewer/owner relationship beforehand, batched
// across all candidates.
package visibility

import "cofeed/pkg/models"

// Subject is the part of a post the decision depends on.
type Subject struct {
	OwnerID      string
	CoCreatorIDs []string
	Privacy      models.Privacy
}

// CanView applies, in order: owner, co-creator, public, friends-and-connected.
// Everything else, including private posts and unknown privacy values, is hidden.
func CanView(post Subject, viewerID string, connected bool) bool {
	if viewerID != "" && models.IsAuthor(post.OwnerID, post.CoCreatorIDs, viewerID) {
		return true
	}
	switch post.Privacy {
	case models.PrivacyPublic:
		return true
	case models.PrivacyFriends:
		return connected
	default:
		return false
	}
}

// NeedsRelationship reports whether CanView's answer for this viewer depends
// on the relationship lookup, so callers can skip owners they don't need.
func NeedsRelationship(post Subject, viewerID string) bool {
	return post.Privacy == models.PrivacyFriends &&
		!models.IsAuthor(post.OwnerID, post.CoCreatorIDs, viewerID)
}
