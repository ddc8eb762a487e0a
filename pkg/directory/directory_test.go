package directory

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/City-Bureau/seerchat/pkg/chat"
	"github.com/City-Bureau/seerchat/pkg/svc"
)

type sourceMock struct {
	mock.Mock
}

func (m *sourceMock) Counterparts(ctx context.Context) ([]chat.Participant, error) {
	args := m.Called(ctx)
	participants, _ := args.Get(0).([]chat.Participant)
	return participants, args.Error(1)
}

func (m *sourceMock) Seers(ctx context.Context) ([]chat.Participant, error) {
	args := m.Called(ctx)
	participants, _ := args.Get(0).([]chat.Participant)
	return participants, args.Error(1)
}

var (
	conversations = []chat.Participant{{ID: "21", Name: "Anne"}, {ID: "22", Name: "Bruno"}}
	seers         = []chat.Participant{{ID: "3", User: "8", Name: "Irma"}, {ID: "4", User: "10", Name: "Paul"}}
)

func TestCounterpartsWithoutDeepLink(t *testing.T) {
	participants, selected := Counterparts(conversations, seers, "")
	assert.Equal(t, conversations, participants)
	assert.Nil(t, selected)
}

func TestCounterpartsSelectsExistingConversation(t *testing.T) {
	participants, selected := Counterparts(conversations, seers, "22")
	assert.Len(t, participants, 2)
	require.NotNil(t, selected)
	assert.Equal(t, "Bruno", selected.Name)
}

func TestCounterpartsAddsSeerFromDirectory(t *testing.T) {
	participants, selected := Counterparts(conversations, seers, "10")
	require.Len(t, participants, 3)
	require.NotNil(t, selected)
	assert.Equal(t, chat.ID("10"), selected.ID)
	assert.Equal(t, "Paul", participants[2].Name)
	assert.Len(t, conversations, 2, "input list untouched")
}

func TestCounterpartsUnknownDeepLink(t *testing.T) {
	participants, selected := Counterparts(conversations, seers, "99")
	assert.Len(t, participants, 2)
	assert.Nil(t, selected)
}

func TestLoadRetriesStatusErrors(t *testing.T) {
	source := new(sourceMock)
	source.On("Counterparts", mock.Anything).Return(nil, &svc.StatusError{StatusCode: http.StatusBadGateway}).Twice()
	source.On("Counterparts", mock.Anything).Return(conversations, nil).Once()
	source.On("Seers", mock.Anything).Return(seers, nil).Once()

	participants, selected, err := Load(context.Background(), source, "8")
	require.NoError(t, err)
	assert.Len(t, participants, 3)
	assert.Equal(t, "Irma", selected.Name)
	source.AssertExpectations(t)
}

func TestLoadGivesUpAfterRetries(t *testing.T) {
	source := new(sourceMock)
	source.On("Counterparts", mock.Anything).Return(nil, &svc.StatusError{StatusCode: http.StatusInternalServerError})

	_, _, err := Load(context.Background(), source, "")
	require.Error(t, err)
	source.AssertNumberOfCalls(t, "Counterparts", maxRetries+1)
	source.AssertNotCalled(t, "Seers", mock.Anything)
}

func TestLoadDoesNotRetryTransportErrors(t *testing.T) {
	source := new(sourceMock)
	source.On("Counterparts", mock.Anything).Return(nil, errors.New("connection refused"))

	_, _, err := Load(context.Background(), source, "")
	require.Error(t, err)
	source.AssertNumberOfCalls(t, "Counterparts", 1)
}

func TestLoadKeepsListWhenSeersFail(t *testing.T) {
	source := new(sourceMock)
	source.On("Counterparts", mock.Anything).Return(conversations, nil)
	source.On("Seers", mock.Anything).Return(nil, errors.New("timeout"))

	participants, selected, err := Load(context.Background(), source, "8")
	require.NoError(t, err)
	assert.Equal(t, conversations, participants)
	assert.Nil(t, selected)
}

func TestFilter(t *testing.T) {
	assert.Equal(t, conversations, Filter(conversations, " "))
	assert.Equal(t, []chat.Participant{{ID: "22", Name: "Bruno"}}, Filter(conversations, "BRU"))
	assert.Empty(t, Filter(conversations, "zoé"))
}
