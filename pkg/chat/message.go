package chat

import (
	"strings"
	"time"
)

// ProvisionalPrefix marks ids generated locally for messages the backend has not confirmed yet
const ProvisionalPrefix = "temp-"

// Message is a single message exchanged between a client and a seer
type Message struct {
	ID           ID     `json:"id"`
	Sender       ID     `json:"sender"`
	Recipient    ID     `json:"reciever,omitempty"`
	Body         string `json:"body"`
	CreationDate string `json:"creation_date"`
	Provisional  bool   `json:"isTemporary,omitempty"`
}

// CreatedAt parses the creation date, returning false if it is missing or malformed
func (m Message) CreatedAt() (time.Time, bool) {
	return ParseTimestamp(m.CreationDate)
}

// IsProvisional is true for locally echoed messages awaiting confirmation
func (m Message) IsProvisional() bool {
	return m.Provisional || strings.HasPrefix(string(m.ID), ProvisionalPrefix)
}

// Page is one page of messages as returned by the backend, newest first
type Page struct {
	Results  []Message `json:"results"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
}

// NextURL returns the next cursor or an empty string
func (p *Page) NextURL() string {
	if p == nil || p.Next == nil {
		return ""
	}
	return *p.Next
}

// PreviousURL returns the previous cursor or an empty string
func (p *Page) PreviousURL() string {
	if p == nil || p.Previous == nil {
		return ""
	}
	return *p.Previous
}

// Cursor tracks how far a conversation has been loaded in both directions
type Cursor struct {
	OldestSeen  string
	NewestSeen  string
	NextURL     string
	PreviousURL string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999Z07:00",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts the ISO-8601 variants the backend produces
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateForAPI renders a timestamp the way the creationDate query parameter expects it,
// in UTC with fractional seconds removed. Invalid input returns an empty string.
func FormatDateForAPI(value string) string {
	t, ok := ParseTimestamp(value)
	if !ok {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05")
}
