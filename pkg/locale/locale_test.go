package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayLabelFrench(t *testing.T) {
	localizer := LoadLocalizer("fr")
	now := time.Date(2024, time.March, 13, 15, 0, 0, 0, time.UTC) // Wednesday

	assert.Equal(t, "Aujourd'hui", DayLabel(localizer, now.Add(-time.Hour), now))
	assert.Equal(t, "Hier", DayLabel(localizer, now.AddDate(0, 0, -1), now))
	assert.Equal(t, "Dimanche", DayLabel(localizer, now.AddDate(0, 0, -3), now))
	assert.Equal(t, "09 mars 2024", DayLabel(localizer, now.AddDate(0, 0, -4), now))
	assert.Equal(t, "25 déc. 2023", DayLabel(localizer, time.Date(2023, time.December, 25, 8, 0, 0, 0, time.UTC), now))
}

func TestDayLabelEnglish(t *testing.T) {
	localizer := LoadLocalizer("en")
	now := time.Date(2024, time.March, 13, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "Today", DayLabel(localizer, now, now))
	assert.Equal(t, "14 Jul 2023", DayLabel(localizer, time.Date(2023, time.July, 14, 0, 0, 0, 0, time.UTC), now))
}

func TestUnknownLanguageFallsBackToFrench(t *testing.T) {
	localizer := LoadLocalizer("de")
	assert.Equal(t, "Chargement des messages...", Text(localizer, "loading-messages", nil))
	assert.Equal(t, "3 crédits restants", Text(localizer, "credits-left", map[string]string{"Count": "3"}))
}
