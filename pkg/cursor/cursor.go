// Package cursor encodes keyset pagination positions as opaque strings.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"cofeed/pkg/apperror"
)

// Cursor is the (created_at, id) position of the last row a page returned.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
}

func Encode(t time.Time, id string) string {
	b, _ := json.Marshal(Cursor{
		CreatedAt: t.UTC(),
		ID:        id,
	})
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode parses a cursor produced by Encode. The empty string means "from the
// start" and yields nil.
func Decode(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, apperror.Validation("malformed cursor")
	}

	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" || c.CreatedAt.IsZero() {
		return nil, apperror.Validation("malformed cursor")
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}
