package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/City-Bureau/seerchat/pkg/chat"
	"github.com/City-Bureau/seerchat/pkg/locale"
)

func TestPlainText(t *testing.T) {
	html := `<p>Voyante depuis <strong>20 ans</strong>.</p><p>Tarot,<br>   cartomancie</p><ul><li>Amour</li><li>Travail</li></ul>`
	assert.Equal(t, "Voyante depuis 20 ans.\nTarot,\ncartomancie\nAmour\nTravail", PlainText(html))
	assert.Equal(t, "Sans balise", PlainText("  Sans   balise "))
	assert.Equal(t, "", PlainText(""))
}

func TestProfileText(t *testing.T) {
	localizer := locale.LoadLocalizer("fr")
	p := chat.Participant{
		ID:                 "3",
		Name:               "Irma",
		Description:        "Tarot",
		Bio:                "<p>Bonjour</p>",
		UnreadMessageCount: 2,
	}
	assert.Equal(t, "Irma\nNon lus: 2\nSpécialités: Tarot\n\nPrésentation\nBonjour", ProfileText(p, localizer))
	assert.Equal(t, "3", ProfileText(chat.Participant{ID: "3"}, localizer))
}

func TestUnreadTotal(t *testing.T) {
	assert.Equal(t, 5, UnreadTotal([]chat.Participant{{UnreadMessageCount: 2}, {}, {UnreadMessageCount: 3}}))
}
