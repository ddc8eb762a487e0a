package directory

import (
	"context"
	"errors"
	"log"

	"github.com/City-Bureau/seerchat/pkg/chat"
	"github.com/City-Bureau/seerchat/pkg/svc"
)

// maxRetries applies to requests the backend answered with an error status.
// Transport errors are not retried.
const maxRetries = 2

// Source lists the people the current identity can talk to
type Source interface {
	Counterparts(ctx context.Context) ([]chat.Participant, error)
	Seers(ctx context.Context) ([]chat.Participant, error)
}

// Load fetches the conversation list. When deepLinkID names a seer the user
// wants to contact, the seer directory is loaded too so the seer can be
// added to the list even without a previous conversation.
func Load(ctx context.Context, source Source, deepLinkID chat.ID) ([]chat.Participant, *chat.Participant, error) {
	list, err := withRetry(ctx, source.Counterparts)
	if err != nil {
		return nil, nil, err
	}

	var seers []chat.Participant
	if !deepLinkID.IsZero() {
		seers, err = withRetry(ctx, source.Seers)
		if err != nil {
			log.Printf("Could not load seers for %s: %v", deepLinkID, err)
		}
	}

	participants, selected := Counterparts(list, seers, deepLinkID)
	return participants, selected, nil
}

// Counterparts merges the deep-linked participant into list. An existing
// conversation wins over a seer from the directory, which is added with its
// user id so messages go to the seer account.
func Counterparts(list, seers []chat.Participant, deepLinkID chat.ID) ([]chat.Participant, *chat.Participant) {
	participants := append([]chat.Participant(nil), list...)
	if deepLinkID.IsZero() {
		return participants, nil
	}

	for i := range participants {
		if participants[i].ID == deepLinkID {
			selected := participants[i]
			return participants, &selected
		}
	}
	for _, seer := range seers {
		if seer.User != deepLinkID {
			continue
		}
		selected := seer
		selected.ID = seer.User
		participants = append(participants, selected)
		return participants, &selected
	}
	return participants, nil
}

func withRetry(ctx context.Context, load func(context.Context) ([]chat.Participant, error)) ([]chat.Participant, error) {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		var participants []chat.Participant
		participants, err = load(ctx)
		if err == nil {
			return participants, nil
		}
		var statusErr *svc.StatusError
		if !errors.As(err, &statusErr) || ctx.Err() != nil {
			return nil, err
		}
		log.Printf("Retrying after %v", err)
	}
	return nil, err
}
