package relation

import (
	"context"
	"testing"
	"time"

	"cofeed/pkg/logger"
	"cofeed/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchConnected_NoCache(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Befriend(t, db, "u1", "u2")
	testutil.Befriend(t, db, "u1", "u3")
	testutil.Befriend(t, db, "u4", "u5")

	g := NewGraph(db, nil, time.Minute, logger.Nop())
	res, err := g.BatchConnected(context.Background(), "u1", []string{"u2", "u3", "u4", "u2", ""})
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"u2": true, "u3": true, "u4": false}, res)
}

func TestAreConnected(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Befriend(t, db, "u1", "u2")
	g := NewGraph(db, nil, time.Minute, logger.Nop())

	ok, err := g.AreConnected(context.Background(), "u2", "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.AreConnected(context.Background(), "u2", "u9")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBatchConnected_CachesAnswers(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Befriend(t, db, "u1", "u2")

	client, mr := testutil.NewRedis(t)

	g := NewGraph(db, client, time.Minute, logger.Nop())
	ctx := context.Background()

	res, err := g.BatchConnected(ctx, "u1", []string{"u2", "u3"})
	require.NoError(t, err)
	assert.True(t, res["u2"])
	assert.False(t, res["u3"])

	v, err := mr.Get("relation:u1:u2")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	v, err = mr.Get("relation:u1:u3")
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	// the store changes but the cached answer stands until the TTL expires
	testutil.Befriend(t, db, "u1", "u3")
	res, err = g.BatchConnected(ctx, "u1", []string{"u3"})
	require.NoError(t, err)
	assert.False(t, res["u3"])

	mr.FastForward(2 * time.Minute)
	res, err = g.BatchConnected(ctx, "u1", []string{"u3"})
	require.NoError(t, err)
	assert.True(t, res["u3"])
}

func TestBatchConnected_Empty(t *testing.T) {
	g := NewGraph(testutil.NewDB(t), nil, time.Minute, logger.Nop())
	res, err := g.BatchConnected(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, res)
}
