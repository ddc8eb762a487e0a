package pane

import (
	"sort"
	"time"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

// merge folds incoming messages into the current list. Confirmed messages are
// unioned by id with the incoming copy winning, and the result is sorted by
// creation date. fresh holds the confirmed messages that were not known before.
// A provisional message is only dropped when one of them confirms it.
func merge(current, incoming []chat.Message, window time.Duration) (merged []chat.Message, fresh []chat.Message) {
	merged = make([]chat.Message, 0, len(current)+len(incoming))
	byID := make(map[chat.ID]int, len(current)+len(incoming))
	var provisional []chat.Message

	for _, message := range current {
		if message.IsProvisional() {
			provisional = append(provisional, message)
			continue
		}
		if idx, ok := byID[message.ID]; ok {
			merged[idx] = message
			continue
		}
		byID[message.ID] = len(merged)
		merged = append(merged, message)
	}

	for _, message := range incoming {
		if message.IsProvisional() || message.ID.IsZero() {
			continue
		}
		if idx, ok := byID[message.ID]; ok {
			merged[idx] = message
			continue
		}
		byID[message.ID] = len(merged)
		merged = append(merged, message)
		fresh = append(fresh, message)
	}

	for _, message := range provisional {
		if !confirmed(message, fresh, window) {
			merged = append(merged, message)
		}
	}

	sortChronological(merged)
	return merged, fresh
}

// confirmed reports whether a confirmed message matches a provisional one:
// same body, created within window of each other. Missing timestamps match on body alone.
func confirmed(provisional chat.Message, messages []chat.Message, window time.Duration) bool {
	sentAt, sentOK := provisional.CreatedAt()
	for _, message := range messages {
		if message.IsProvisional() || message.Body != provisional.Body {
			continue
		}
		createdAt, ok := message.CreatedAt()
		if !ok || !sentOK {
			return true
		}
		delta := createdAt.Sub(sentAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= window {
			return true
		}
	}
	return false
}

// withoutProvisional returns the confirmed messages only
func withoutProvisional(messages []chat.Message) []chat.Message {
	kept := make([]chat.Message, 0, len(messages))
	for _, message := range messages {
		if !message.IsProvisional() {
			kept = append(kept, message)
		}
	}
	return kept
}

// Malformed timestamps sort as the zero time
func sortChronological(messages []chat.Message) {
	sort.SliceStable(messages, func(a, b int) bool {
		aTime, _ := messages[a].CreatedAt()
		bTime, _ := messages[b].CreatedAt()
		return aTime.Before(bTime)
	})
}
