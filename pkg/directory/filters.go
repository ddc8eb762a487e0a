package directory

import (
	"strings"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

// Filter keeps the participants matching query on any of their names, case
// insensitively. An empty query keeps everyone.
func Filter(participants []chat.Participant, query string) []chat.Participant {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return participants
	}

	var matches []chat.Participant
	for _, p := range participants {
		if matchesAny(query, p.Name, p.UserName, p.Email, p.ID.String()) {
			matches = append(matches, p)
		}
	}
	return matches
}

func matchesAny(query string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
