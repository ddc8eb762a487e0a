package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed i18n/*.json
var messageFiles embed.FS

// DefaultLanguage is the language of the marketplace
const DefaultLanguage = "fr"

func loadBundle() *i18n.Bundle {
	bundle := i18n.NewBundle(language.French)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	entries, _ := messageFiles.ReadDir("i18n")
	for _, entry := range entries {
		buf, err := messageFiles.ReadFile(path.Join("i18n", entry.Name()))
		if err != nil {
			log.Println(err)
			continue
		}
		bundle.MustParseMessageFileBytes(buf, entry.Name())
	}
	return bundle
}

// LoadLocalizer returns a localizer for lang, falling back to French
func LoadLocalizer(lang string) *i18n.Localizer {
	bundle := loadBundle()
	if lang != "" {
		return i18n.NewLocalizer(bundle, lang, DefaultLanguage)
	}
	return i18n.NewLocalizer(bundle, DefaultLanguage)
}

// Text localizes a message with optional template data
func Text(localizer *i18n.Localizer, id string, data map[string]string) string {
	text, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return text
}

// DayLabel renders the divider shown above a day's messages, relative to now
func DayLabel(localizer *i18n.Localizer, day, now time.Time) string {
	day = startOfDay(day)
	today := startOfDay(now.In(day.Location()))

	switch {
	case day.Equal(today):
		return Text(localizer, "today", nil)
	case day.Equal(today.AddDate(0, 0, -1)):
		return Text(localizer, "yesterday", nil)
	case sameWeek(day, today):
		return Text(localizer, fmt.Sprintf("weekday-%d", int(day.Weekday())), nil)
	}
	month := Text(localizer, fmt.Sprintf("month-%d", int(day.Month())), nil)
	return fmt.Sprintf("%02d %s %d", day.Day(), month, day.Year())
}

// Weeks start on Sunday
func sameWeek(a, b time.Time) bool {
	weekStart := func(t time.Time) time.Time {
		return t.AddDate(0, 0, -int(t.Weekday()))
	}
	return weekStart(a).Equal(weekStart(b))
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
