package selection

import (
	"context"
	"log"
	"sync"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

// Selection is what the user currently has selected across the application
type Selection struct {
	ActingSeer  *chat.Participant `json:"actingSeer,omitempty"`
	Counterpart *chat.Participant `json:"counterpart,omitempty"`
}

func (s Selection) clone() Selection {
	out := Selection{}
	if s.ActingSeer != nil {
		seer := *s.ActingSeer
		out.ActingSeer = &seer
	}
	if s.Counterpart != nil {
		counterpart := *s.Counterpart
		out.Counterpart = &counterpart
	}
	return out
}

// Persister loads and saves a selection for an owner. Load returns nil
// without error when nothing was saved yet.
type Persister interface {
	Load(ctx context.Context, owner string) (*Selection, error)
	Save(ctx context.Context, owner string, selection Selection) error
}

// Store holds the selection of one owner and tells subscribers when it changes
type Store struct {
	persister Persister
	owner     string

	mu          sync.Mutex
	current     Selection
	subscribers map[int]func(Selection)
	nextID      int
}

// Open creates a Store, restoring what persister has saved for owner
func Open(ctx context.Context, persister Persister, owner string) *Store {
	if persister == nil {
		persister = NopPersister{}
	}
	store := &Store{
		persister:   persister,
		owner:       owner,
		subscribers: map[int]func(Selection){},
	}
	saved, err := persister.Load(ctx, owner)
	if err != nil {
		log.Printf("Could not restore selection for %s: %v", owner, err)
	} else if saved != nil {
		store.current = saved.clone()
	}
	return store
}

// Current returns a copy of the selection
func (s *Store) Current() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// SetActingSeer changes the seer profile being acted as. The counterpart
// belongs to the previous profile's list so it is cleared.
func (s *Store) SetActingSeer(seer *chat.Participant) {
	s.update(func(current *Selection) bool {
		if sameParticipant(current.ActingSeer, seer) {
			return false
		}
		current.ActingSeer = copyParticipant(seer)
		current.Counterpart = nil
		return true
	})
}

// SetCounterpart changes the conversation being shown, nil closes it
func (s *Store) SetCounterpart(counterpart *chat.Participant) {
	s.update(func(current *Selection) bool {
		if sameParticipant(current.Counterpart, counterpart) {
			return false
		}
		current.Counterpart = copyParticipant(counterpart)
		return true
	})
}

// Subscribe registers fn to receive the selection after every change.
// The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Selection)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close saves the selection
func (s *Store) Close(ctx context.Context) error {
	return s.persister.Save(ctx, s.owner, s.Current())
}

func (s *Store) update(change func(*Selection) bool) {
	s.mu.Lock()
	if !change(&s.current) {
		s.mu.Unlock()
		return
	}
	selection := s.current.clone()
	subscribers := make([]func(Selection), 0, len(s.subscribers))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subscribers[id]; ok {
			subscribers = append(subscribers, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(selection.clone())
	}
}

func sameParticipant(a, b *chat.Participant) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID && a.User == b.User
}

func copyParticipant(p *chat.Participant) *chat.Participant {
	if p == nil {
		return nil
	}
	copied := *p
	return &copied
}

// NopPersister keeps nothing
type NopPersister struct{}

// Load always finds nothing
func (NopPersister) Load(ctx context.Context, owner string) (*Selection, error) {
	return nil, nil
}

// Save discards the selection
func (NopPersister) Save(ctx context.Context, owner string, selection Selection) error {
	return nil
}
