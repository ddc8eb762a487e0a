package pane

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

func TestGroupByDay(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)

	groups := GroupByDay([]chat.Message{
		message("1", "9", "a", "2024-03-01T10:00:00Z"),
		message("2", "9", "b", "2024-03-01T22:30:00Z"), // already March 2nd in Moscow
		message("3", "9", "c", "garbage"),
		message("4", "9", "d", "2024-03-02T08:00:00Z"),
	}, moscow)

	require.Len(t, groups, 2)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, moscow), groups[0].Day)
	assert.Equal(t, []string{"1"}, ids(groups[0].Messages))
	assert.Equal(t, []string{"2", "4"}, ids(groups[1].Messages))
}

func TestGroupByDaySkipsMalformedOnly(t *testing.T) {
	groups := GroupByDay([]chat.Message{message("1", "9", "a", "")}, time.UTC)
	assert.Empty(t, groups)
}
