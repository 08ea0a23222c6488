package models

import (
	"strings"

	"cofeed/pkg/apperror"
)

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyFriends Privacy = "friends"
	PrivacyPrivate Privacy = "private"
)

// ParsePrivacy accepts only the closed set of privacy values.
func ParsePrivacy(s string) (Privacy, error) {
	switch p := Privacy(strings.ToLower(strings.TrimSpace(s))); p {
	case PrivacyPublic, PrivacyFriends, PrivacyPrivate:
		return p, nil
	default:
		return "", apperror.Validation("unknown privacy %q", s)
	}
}

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

func ParseMediaKind(s string) (MediaKind, error) {
	switch k := MediaKind(strings.ToLower(strings.TrimSpace(s))); k {
	case MediaImage, MediaVideo:
		return k, nil
	default:
		return "", apperror.Validation("unknown media kind %q", s)
	}
}

// MediaKindFromContentType maps an upload's MIME type onto a media kind.
func MediaKindFromContentType(contentType string) (MediaKind, error) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaImage, nil
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo, nil
	default:
		return "", apperror.Validation("unsupported content type %q", contentType)
	}
}

type InviteStatus string

const (
	InviteInvited  InviteStatus = "invited"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

func (s InviteStatus) Terminal() bool {
	return s == InviteAccepted || s == InviteDeclined
}

func (s InviteStatus) String() string {
	return string(s)
}

func (p Privacy) String() string {
	return string(p)
}

func (k MediaKind) String() string {
	return string(k)
}
