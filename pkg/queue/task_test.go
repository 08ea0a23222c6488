package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Priority(t *testing.T) {
	assert.Equal(t, uint8(7), NewTask("u1", EventCollabInvite, nil).Priority)
	assert.Equal(t, uint8(3), NewTask("u1", EventLike, nil).Priority)
	assert.Equal(t, uint8(1), NewTask("u1", "unknown", nil).Priority)
}

func TestDecodeTask(t *testing.T) {
	body, err := json.Marshal(NewTask("u1", EventCollabAccepted, map[string]interface{}{"post_id": "p1"}))
	require.NoError(t, err)

	task, err := DecodeTask(body)
	require.NoError(t, err)
	assert.Equal(t, EventCollabAccepted, task.Type)
	assert.Equal(t, "u1", task.UserID)
	assert.Equal(t, "p1", task.PayloadString("post_id"))
	assert.Equal(t, "", task.PayloadString("missing"))
}

func TestDecodeTask_Invalid(t *testing.T) {
	_, err := DecodeTask([]byte("{not json"))
	assert.Error(t, err)

	_, err = DecodeTask([]byte(`{"type":"like"}`))
	assert.Error(t, err)
}
