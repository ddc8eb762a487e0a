package directory

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/City-Bureau/seerchat/pkg/chat"
	"github.com/City-Bureau/seerchat/pkg/locale"
)

// ProfileText renders a participant the way it displays above a conversation
func ProfileText(p chat.Participant, localizer *i18n.Localizer) string {
	profileStr := p.DisplayName()
	if p.UnreadMessageCount > 0 {
		profileStr += fmt.Sprintf("\n%s: %d", locale.Text(localizer, "unread-label", nil), p.UnreadMessageCount)
	}
	if description := PlainText(p.Description); description != "" {
		profileStr += fmt.Sprintf("\n%s: %s", locale.Text(localizer, "description-label", nil), description)
	}
	if p.LastMessage != "" {
		profileStr += fmt.Sprintf("\n%s: %s", locale.Text(localizer, "last-message-label", nil), strings.TrimSpace(p.LastMessage))
	}
	if bio := PlainText(p.Bio); bio != "" {
		profileStr += fmt.Sprintf("\n\n%s\n%s", locale.Text(localizer, "bio-label", nil), bio)
	}
	return profileStr
}

// PlainText flattens the HTML seers write their bios in. Block elements and
// line breaks become newlines, other whitespace collapses.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	document.Find("br").ReplaceWithHtml("\n")
	document.Find("p, div, li, h1, h2, h3, h4, h5, h6").Each(func(index int, element *goquery.Selection) {
		element.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(document.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// UnreadTotal sums the unread counts of a list
func UnreadTotal(participants []chat.Participant) int {
	total := 0
	for _, p := range participants {
		total += p.UnreadMessageCount
	}
	return total
}
