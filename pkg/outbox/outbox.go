package outbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

var (
	// ErrEmptyMessage is returned for messages with only whitespace
	ErrEmptyMessage = errors.New("message is empty")
	// ErrNoCredits is returned when a client has no credit left to send
	ErrNoCredits = errors.New("not enough credits")
	// ErrNoParticipant is returned when no conversation is selected
	ErrNoParticipant = errors.New("no participant selected")
)

// Backend sends messages and reports the account balance
type Backend interface {
	SendMessage(ctx context.Context, participant chat.Participant, body string) error
	Me(ctx context.Context) (*chat.Account, error)
}

// Echoer is told about messages sent so it can show them right away
type Echoer interface {
	MessageSent(body string) chat.ID
}

// Outbox sends messages for one identity and keeps its credit balance current
type Outbox struct {
	backend  Backend
	echo     Echoer
	userType chat.UserType

	mu      sync.Mutex
	credits *int
}

// New creates an Outbox. Clients are charged per message, seers are not.
func New(backend Backend, echo Echoer, userType chat.UserType) *Outbox {
	return &Outbox{backend: backend, echo: echo, userType: userType}
}

// Credits returns the last known balance and whether it is known
func (o *Outbox) Credits() (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.credits == nil {
		return 0, false
	}
	return *o.credits, true
}

// Send posts body to participant, then echoes it and refreshes the balance
func (o *Outbox) Send(ctx context.Context, participant *chat.Participant, body string) (chat.ID, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrEmptyMessage
	}
	if participant == nil || participant.ID.IsZero() {
		return "", ErrNoParticipant
	}
	if credits, known := o.Credits(); o.userType == chat.Client && known && credits < 1 {
		return "", ErrNoCredits
	}

	if err := o.backend.SendMessage(ctx, *participant, body); err != nil {
		return "", fmt.Errorf("sending message to %s: %w", participant.ID, err)
	}
	id := o.echo.MessageSent(body)

	if err := o.Refresh(ctx); err != nil {
		log.Printf("Could not refresh credits: %v", err)
	}
	return id, nil
}

// Refresh reloads the credit balance
func (o *Outbox) Refresh(ctx context.Context) error {
	account, err := o.backend.Me(ctx)
	if err != nil {
		return err
	}
	credits := account.CreditBalance
	o.mu.Lock()
	o.credits = &credits
	o.mu.Unlock()
	return nil
}
