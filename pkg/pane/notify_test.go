package pane

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

func TestNotifyTracker(t *testing.T) {
	identity := chat.Identity{UserID: "5", Type: chat.Client}
	var tracker notifyTracker

	backlog := []chat.Message{message("1", "9", "a", "2024-03-01T10:00:00Z")}
	_, ok := tracker.observe(backlog, identity)
	assert.False(t, ok, "backlog must not notify")

	withReply := append(backlog, message("2", "9", "b", "2024-03-01T10:01:00Z"))
	latest, ok := tracker.observe(withReply, identity)
	assert.True(t, ok)
	assert.Equal(t, chat.ID("2"), latest.ID)

	_, ok = tracker.observe(withReply, identity)
	assert.False(t, ok, "same message must not notify twice")

	withOwn := append(withReply, message("3", "5", "c", "2024-03-01T10:02:00Z"))
	_, ok = tracker.observe(withOwn, identity)
	assert.False(t, ok, "own messages must not notify")

	tracker.reset()
	_, ok = tracker.observe(withReply, identity)
	assert.False(t, ok, "a reset tracker treats the next list as backlog")
}

func TestNotifyTrackerEmptyFirstLoad(t *testing.T) {
	identity := chat.Identity{UserID: "5", Type: chat.Client}
	var tracker notifyTracker

	_, ok := tracker.observe(nil, identity)
	assert.False(t, ok)

	_, ok = tracker.observe([]chat.Message{message("1", "9", "a", "2024-03-01T10:00:00Z")}, identity)
	assert.True(t, ok, "first message of an empty conversation notifies")
}
