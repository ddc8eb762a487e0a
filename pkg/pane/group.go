package pane

import (
	"time"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

// DayGroup is the run of messages shown under one day divider
type DayGroup struct {
	Day      time.Time
	Messages []chat.Message
}

// GroupByDay groups consecutive messages by calendar day in loc. Messages
// with a malformed creation date are left out.
func GroupByDay(messages []chat.Message, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	var groups []DayGroup
	for _, message := range messages {
		createdAt, ok := message.CreatedAt()
		if !ok {
			continue
		}
		year, month, day := createdAt.In(loc).Date()
		start := time.Date(year, month, day, 0, 0, 0, 0, loc)
		if len(groups) > 0 && groups[len(groups)-1].Day.Equal(start) {
			last := &groups[len(groups)-1]
			last.Messages = append(last.Messages, message)
			continue
		}
		groups = append(groups, DayGroup{Day: start, Messages: []chat.Message{message}})
	}
	return groups
}
