package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

type backendMock struct {
	mock.Mock
}

func (m *backendMock) SendMessage(ctx context.Context, participant chat.Participant, body string) error {
	args := m.Called(ctx, participant, body)
	return args.Error(0)
}

func (m *backendMock) Me(ctx context.Context) (*chat.Account, error) {
	args := m.Called(ctx)
	account, _ := args.Get(0).(*chat.Account)
	return account, args.Error(1)
}

type echoMock struct {
	mock.Mock
}

func (m *echoMock) MessageSent(body string) chat.ID {
	args := m.Called(body)
	return chat.ID(args.String(0))
}

var seer = &chat.Participant{ID: "9"}

func TestSendEchoesAndRefreshesCredits(t *testing.T) {
	backend := new(backendMock)
	echo := new(echoMock)
	backend.On("SendMessage", mock.Anything, *seer, "Va-t-il revenir ?").Return(nil)
	backend.On("Me", mock.Anything).Return(&chat.Account{CreditBalance: 2}, nil)
	echo.On("MessageSent", "Va-t-il revenir ?").Return("temp-1")

	outbox := New(backend, echo, chat.Client)
	id, err := outbox.Send(context.Background(), seer, "  Va-t-il revenir ?\n")
	require.NoError(t, err)
	assert.Equal(t, chat.ID("temp-1"), id)

	credits, known := outbox.Credits()
	assert.True(t, known)
	assert.Equal(t, 2, credits)
	backend.AssertExpectations(t)
	echo.AssertExpectations(t)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	backend := new(backendMock)
	outbox := New(backend, new(echoMock), chat.Client)

	_, err := outbox.Send(context.Background(), seer, " \n\t")
	assert.True(t, errors.Is(err, ErrEmptyMessage))
	backend.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendRequiresParticipant(t *testing.T) {
	outbox := New(new(backendMock), new(echoMock), chat.Client)
	_, err := outbox.Send(context.Background(), nil, "Bonjour")
	assert.True(t, errors.Is(err, ErrNoParticipant))
}

func TestSendWithoutCredits(t *testing.T) {
	backend := new(backendMock)
	backend.On("Me", mock.Anything).Return(&chat.Account{CreditBalance: 0}, nil)

	outbox := New(backend, new(echoMock), chat.Client)
	require.NoError(t, outbox.Refresh(context.Background()))

	_, err := outbox.Send(context.Background(), seer, "Bonjour")
	assert.True(t, errors.Is(err, ErrNoCredits))
	backend.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestSeersAreNotCharged(t *testing.T) {
	backend := new(backendMock)
	echo := new(echoMock)
	backend.On("Me", mock.Anything).Return(&chat.Account{CreditBalance: 0}, nil)
	backend.On("SendMessage", mock.Anything, *seer, "Bonjour").Return(nil)
	echo.On("MessageSent", "Bonjour").Return("temp-2")

	outbox := New(backend, echo, chat.Seer)
	require.NoError(t, outbox.Refresh(context.Background()))

	_, err := outbox.Send(context.Background(), seer, "Bonjour")
	assert.NoError(t, err)
}

func TestSendFailureDoesNotEcho(t *testing.T) {
	backend := new(backendMock)
	echo := new(echoMock)
	backend.On("SendMessage", mock.Anything, *seer, "Bonjour").Return(errors.New("503"))

	outbox := New(backend, echo, chat.Client)
	_, err := outbox.Send(context.Background(), seer, "Bonjour")
	require.Error(t, err)
	echo.AssertNotCalled(t, "MessageSent", mock.Anything)
}

func TestSendSucceedsWhenRefreshFails(t *testing.T) {
	backend := new(backendMock)
	echo := new(echoMock)
	backend.On("SendMessage", mock.Anything, *seer, "Bonjour").Return(nil)
	backend.On("Me", mock.Anything).Return(nil, errors.New("timeout"))
	echo.On("MessageSent", "Bonjour").Return("temp-3")

	outbox := New(backend, echo, chat.Client)
	_, err := outbox.Send(context.Background(), seer, "Bonjour")
	assert.NoError(t, err)
	_, known := outbox.Credits()
	assert.False(t, known)
}
