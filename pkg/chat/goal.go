package chat

import (
	"errors"
	"fmt"
	"time"
)

// ErrPartnerUnderage is returned for a partner birth date less than 18 years ago
var ErrPartnerUnderage = errors.New("partner must be at least 18 years old")

// BirthDateLayout is the format of SoulMateBirthDate
const BirthDateLayout = "2006-01-02"

// Goal is what a seer notes about a customer's question
type Goal struct {
	CustomerID        ID     `json:"customer_id"`
	SeerAdminID       ID     `json:"seer_admin_id,omitempty"`
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	Sex               string `json:"sex"`
	CustomerQuestion  string `json:"customer_question"`
	SoulMateBirthDate string `json:"soul_mate_birth_date"`
	Concern           string `json:"concern"`
}

// Validate checks the partner birth date relative to now
func (g Goal) Validate(now time.Time) error {
	if g.SoulMateBirthDate == "" {
		return nil
	}
	birth, err := time.ParseInLocation(BirthDateLayout, g.SoulMateBirthDate, now.Location())
	if err != nil {
		return fmt.Errorf("invalid birth date %q: %w", g.SoulMateBirthDate, err)
	}
	if birth.AddDate(18, 0, 0).After(now) {
		return ErrPartnerUnderage
	}
	return nil
}
