package pane

import (
	"context"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

// Notifier announces a message received from the counterpart
type Notifier interface {
	Notify(ctx context.Context, message chat.Message) error
}

// notifyTracker decides when the latest message deserves a notification.
// The first load of a conversation only records the latest id so backlog
// never triggers, and an id is announced at most once.
type notifyTracker struct {
	primed bool
	lastID chat.ID
}

func (t *notifyTracker) reset() {
	t.primed = false
	t.lastID = ""
}

func (t *notifyTracker) observe(messages []chat.Message, identity chat.Identity) (chat.Message, bool) {
	if !t.primed {
		t.primed = true
		if len(messages) > 0 {
			t.lastID = messages[len(messages)-1].ID
		}
		return chat.Message{}, false
	}
	if len(messages) == 0 {
		return chat.Message{}, false
	}

	latest := messages[len(messages)-1]
	if latest.IsProvisional() || identity.IsSelf(latest.Sender) || latest.ID == t.lastID {
		return chat.Message{}, false
	}
	t.lastID = latest.ID
	return latest, true
}
