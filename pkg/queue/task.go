package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventCollabInvite   = "collab_invite"
	EventCollabAccepted = "collab_accepted"
	EventLike           = "like"
	EventComment        = "comment"
	EventShare          = "share"
)

var EventTypes = []string{EventCollabInvite, EventCollabAccepted, EventLike, EventComment, EventShare}

var priorities = map[string]uint8{
	EventCollabInvite:   7,
	EventCollabAccepted: 6,
	EventComment:        4,
	EventShare:          4,
	EventLike:           3,
}

// Task is the wire shape of a notification event.
type Task struct {
	Type      string                 `json:"type"`
	UserID    string                 `json:"user_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Priority  uint8                  `json:"priority"`
	CreatedAt time.Time              `json:"created_at"`
}

func NewTask(userID, eventType string, payload map[string]interface{}) Task {
	priority, ok := priorities[eventType]
	if !ok {
		priority = 1
	}
	return Task{
		Type:      eventType,
		UserID:    userID,
		Payload:   payload,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}
}

func DecodeTask(body []byte) (Task, error) {
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return Task{}, err
	}
	if task.Type == "" || task.UserID == "" {
		return Task{}, fmt.Errorf("task missing type or user_id")
	}
	return task, nil
}

// PayloadString reads a string field from the payload, "" when absent.
func (t Task) PayloadString(key string) string {
	if t.Payload == nil {
		return ""
	}
	s, _ := t.Payload[key].(string)
	return s
}

// Emitter is the fire-and-forget notification contract use cases depend on.
type Emitter interface {
	Notify(userID, eventType string, payload map[string]interface{})
}

// NopEmitter drops every event; used when the broker is unavailable.
type NopEmitter struct{}

func (NopEmitter) Notify(string, string, map[string]interface{}) {}

var _ Emitter = (*Client)(nil)
