package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/City-Bureau/seerchat/pkg/chat"
	"github.com/City-Bureau/seerchat/pkg/locale"
	"github.com/City-Bureau/seerchat/pkg/pane"
)

var self = chat.Identity{UserID: "5", Type: chat.Client}

func newTestViewport(width, height int) *LineViewport {
	v := NewLineViewport(self, locale.LoadLocalizer("en"), time.UTC)
	v.now = func() time.Time { return time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC) }
	v.Resize(width, height)
	return v
}

func shortMessages(count int) []chat.Message {
	messages := make([]chat.Message, count)
	for i := range messages {
		sender := chat.ID("9")
		if i%2 == 0 {
			sender = "5"
		}
		messages[i] = chat.Message{
			ID:           chat.ID(string(rune('a' + i))),
			Sender:       sender,
			Body:         "hi",
			CreationDate: time.Date(2024, 3, 1, 10, i, 0, 0, time.UTC).Format(time.RFC3339),
		}
	}
	return messages
}

func TestLayoutCountsLines(t *testing.T) {
	v := newTestViewport(80, 5)
	v.Layout(shortMessages(4))

	m := v.Metrics()
	assert.Equal(t, 5, m.ScrollHeight, "one day header plus one line per message")
	assert.Equal(t, 5, m.ClientHeight)
	assert.Contains(t, v.Visible()[0], "Today")
}

func TestLayoutWrapsLongMessages(t *testing.T) {
	v := newTestViewport(40, 10)
	v.Layout([]chat.Message{{
		ID:           "1",
		Sender:       "9",
		Body:         strings.Repeat("word ", 20),
		CreationDate: "2024-03-01T10:00:00Z",
	}})
	assert.Greater(t, v.Metrics().ScrollHeight, 3)
}

func TestLayoutPutsUndatedFirst(t *testing.T) {
	v := newTestViewport(80, 10)
	v.Layout([]chat.Message{
		{ID: "1", Sender: "9", Body: "dated", CreationDate: "2024-03-01T10:00:00Z"},
		{ID: "2", Sender: "9", Body: "undated", CreationDate: "garbage"},
	})
	lines := v.Visible()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "undated")
	assert.Contains(t, lines[1], "Today")
}

func TestScrollIsClamped(t *testing.T) {
	v := newTestViewport(80, 3)
	v.Layout(shortMessages(6))

	v.ScrollTo(100)
	assert.Equal(t, 4, v.Metrics().ScrollTop)
	assert.Len(t, v.Visible(), 3)

	v.ScrollBy(-10)
	assert.Equal(t, 0, v.Metrics().ScrollTop)
}

func TestResizeKeepsBottomAnchored(t *testing.T) {
	v := newTestViewport(80, 3)
	v.Layout(shortMessages(6))
	v.ScrollTo(100)

	v.Resize(80, 2)
	m := v.Metrics()
	assert.True(t, m.AtBottom(1))
	assert.Equal(t, 5, m.ScrollTop)

	v.ScrollTo(0)
	v.Resize(80, 4)
	assert.Equal(t, 0, v.Metrics().ScrollTop)
}

func TestProvisionalMarked(t *testing.T) {
	v := newTestViewport(80, 5)
	v.Layout([]chat.Message{{ID: "temp-1", Sender: "5", Body: "pending", CreationDate: "2024-03-01T10:00:00Z"}})
	lines := v.Visible()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "…")
}

func TestViewportSatisfiesPane(t *testing.T) {
	var _ pane.Viewport = newTestViewport(80, 5)
}
