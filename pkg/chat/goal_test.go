package chat

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoalValidate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := map[string]struct {
		birthDate string
		err       bool
	}{
		"empty":          {"", false},
		"adult":          {"1990-05-17", false},
		"eighteen today": {"2006-03-01", false},
		"one day short":  {"2006-03-02", true},
		"malformed":      {"17/05/1990", true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := Goal{SoulMateBirthDate: tc.birthDate}.Validate(now)
			if tc.err {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.True(t, errors.Is(Goal{SoulMateBirthDate: "2010-01-01"}.Validate(now), ErrPartnerUnderage))
}
