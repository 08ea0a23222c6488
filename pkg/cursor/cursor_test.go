package cursor

import (
	"testing"
	"time"

	"cofeed/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)

	c, err := Decode(Encode(at, "post-1"))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, at.Equal(c.CreatedAt))
	assert.Equal(t, "post-1", c.ID)
}

func TestEncode_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	at := time.Date(2024, 3, 1, 15, 0, 0, 0, loc)

	c, err := Decode(Encode(at, "p"))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, c.CreatedAt.Location())
	assert.Equal(t, 12, c.CreatedAt.Hour())
}

func TestDecode_Empty(t *testing.T) {
	c, err := Decode("")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestDecode_Malformed(t *testing.T) {
	for _, s := range []string{"%%%", "bm90LWpzb24", "e30"} {
		_, err := Decode(s)
		assert.ErrorIs(t, err, apperror.ErrValidation, s)
	}
}
