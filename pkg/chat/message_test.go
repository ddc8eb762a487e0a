package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageDecodesNumericAndStringIDs(t *testing.T) {
	raw := `{
		"results": [
			{"id": 42, "sender": 7, "body": "Bonjour", "creation_date": "2024-03-01T10:00:00.123456Z"},
			{"id": "temp-abc", "sender": "7", "body": "Salut", "creation_date": "2024-03-01T10:01:00Z"}
		],
		"next": "https://api.example.com/api/chat/user/3/messages?page=2",
		"previous": null
	}`
	var page Page
	require.NoError(t, json.Unmarshal([]byte(raw), &page))

	require.Len(t, page.Results, 2)
	assert.Equal(t, ID("42"), page.Results[0].ID)
	assert.Equal(t, ID("7"), page.Results[0].Sender)
	assert.False(t, page.Results[0].IsProvisional())
	assert.True(t, page.Results[1].IsProvisional())
	assert.Equal(t, "https://api.example.com/api/chat/user/3/messages?page=2", page.NextURL())
	assert.Equal(t, "", page.PreviousURL())
}

func TestIDMarshalsNumbersAsNumbers(t *testing.T) {
	out, err := json.Marshal(map[string]ID{"a": "12", "b": "temp-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 12, "b": "temp-1"}`, string(out))
}

func TestCreatedAtRejectsMalformed(t *testing.T) {
	_, ok := Message{CreationDate: "not a date"}.CreatedAt()
	assert.False(t, ok)
	_, ok = Message{}.CreatedAt()
	assert.False(t, ok)

	ts, ok := Message{CreationDate: "2024-03-01T10:00:00.123456"}.CreatedAt()
	require.True(t, ok)
	assert.Equal(t, 10, ts.Hour())
}

func TestFormatDateForAPI(t *testing.T) {
	assert.Equal(t, "2024-03-01T09:00:00", FormatDateForAPI("2024-03-01T10:00:00.987+01:00"))
	assert.Equal(t, "", FormatDateForAPI("yesterday"))
	assert.Equal(t, "", FormatDateForAPI(""))
}

func TestUserTypeFromProfile(t *testing.T) {
	assert.Equal(t, Client, UserTypeFromProfile(1))
	assert.Equal(t, Seer, UserTypeFromProfile(2))
	assert.Equal(t, Admin, UserTypeFromProfile(3))
	assert.Equal(t, Seer, UserTypeFromProfile(0))
}

func TestIdentityIsSelf(t *testing.T) {
	identity := Identity{UserID: "1", ActingSeer: &Participant{ID: "20", User: "5"}, Type: Seer}

	assert.True(t, identity.IsSelf("1"))
	assert.True(t, identity.IsSelf("5"))
	assert.True(t, identity.IsSelf("20"))
	assert.False(t, identity.IsSelf("9"))
	assert.False(t, identity.IsSelf(""))
	assert.Equal(t, ID("20"), identity.SenderID())
	assert.Equal(t, ID("5"), identity.SeerUserID())

	client := Identity{UserID: "3", Type: Client}
	assert.Equal(t, ID("3"), client.SenderID())
	assert.Equal(t, ID("3"), client.SeerUserID())
}
