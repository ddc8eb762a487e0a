package pane

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

// Fetcher loads message pages from the backend
type Fetcher interface {
	LatestMessages(ctx context.Context, participant chat.Participant) (*chat.Page, error)
	MessagesFromURL(ctx context.Context, url string) (*chat.Page, error)
}

// Config holds the pane timings and scroll tolerances
type Config struct {
	PollInterval    time.Duration
	BottomTolerance int
	TopThreshold    int
	// ConfirmWindow is how far apart a provisional message and its confirmed
	// copy may be timestamped and still be matched
	ConfirmWindow time.Duration
}

// DefaultConfig returns the timings used by the web client
func DefaultConfig() Config {
	return Config{
		PollInterval:    20 * time.Second,
		BottomTolerance: 100,
		TopThreshold:    100,
		ConfirmWindow:   2 * time.Minute,
	}
}

// State is a snapshot of what the pane shows
type State struct {
	Participant    *chat.Participant
	Messages       []chat.Message
	Cursor         chat.Cursor
	HasNewMessages bool
	InitialLoading bool
	LoadingOlder   bool
	Err            error
}

// Option customizes a Pane
type Option func(*Pane)

// WithNotifier sets where new counterpart messages are announced
func WithNotifier(notifier Notifier) Option {
	return func(p *Pane) { p.r.notifier = notifier }
}

// WithOnChange registers a callback receiving a snapshot after every event
func WithOnChange(fn func(State)) Option {
	return func(p *Pane) { p.onChange = fn }
}

// WithClock replaces time.Now for provisional timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Pane) { p.now = now }
}

// WithIDs replaces the provisional id generator
func WithIDs(newID func() string) Option {
	return func(p *Pane) { p.newID = newID }
}

// Pane keeps one conversation view current. Inputs are queued and applied in
// order by Run, which owns all state, the poll timer and the viewport.
type Pane struct {
	fetcher  Fetcher
	cfg      Config
	r        *reconciler
	events   chan event
	done     chan struct{}
	onChange func(State)
	now      func() time.Time
	newID    func() string

	mu    sync.Mutex
	state State
}

// New creates a Pane rendering into viewport
func New(fetcher Fetcher, viewport Viewport, identity chat.Identity, cfg Config, opts ...Option) *Pane {
	defaults := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.BottomTolerance <= 0 {
		cfg.BottomTolerance = defaults.BottomTolerance
	}
	if cfg.TopThreshold <= 0 {
		cfg.TopThreshold = defaults.TopThreshold
	}
	if cfg.ConfirmWindow <= 0 {
		cfg.ConfirmWindow = defaults.ConfirmWindow
	}

	p := &Pane{
		fetcher: fetcher,
		cfg:     cfg,
		r: &reconciler{
			cfg:      cfg,
			identity: identity,
			viewport: viewport,
		},
		events: make(chan event, 64),
		done:   make(chan struct{}),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes events until ctx is cancelled. The poll timer and every
// in-flight fetch are released when it returns.
func (p *Pane) Run(ctx context.Context) error {
	defer close(p.done)

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	generation := p.r.generation
	fetchCtx, cancel := context.WithCancel(ctx)
	defer func() { cancel() }()

	results := make(chan fetched)

	for {
		var ev event
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev = <-p.events:
		case result := <-results:
			ev = result
		case <-ticker.C:
			ev = pollTick{}
		}

		requests := p.r.handle(ctx, ev)
		if p.r.generation != generation {
			cancel()
			fetchCtx, cancel = context.WithCancel(ctx)
			generation = p.r.generation
			ticker.Reset(p.cfg.PollInterval)
		}
		for _, req := range requests {
			go p.fetch(ctx, fetchCtx, req, results)
		}
		p.publish()
	}
}

func (p *Pane) fetch(runCtx, ctx context.Context, req fetchRequest, results chan<- fetched) {
	var page *chat.Page
	var err error
	if req.kind == fetchOlder {
		page, err = p.fetcher.MessagesFromURL(ctx, req.url)
	} else {
		page, err = p.fetcher.LatestMessages(ctx, req.participant)
	}
	select {
	case results <- fetched{request: req, page: page, err: err}:
	case <-runCtx.Done():
	}
}

func (p *Pane) publish() {
	state := p.r.snapshot()
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
	if p.onChange != nil {
		p.onChange(state)
	}
}

func (p *Pane) send(ev event) {
	select {
	case p.events <- ev:
	case <-p.done:
	}
}

// State returns the latest snapshot
func (p *Pane) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetParticipant switches the conversation, discarding everything cached for
// the previous one. nil closes the conversation.
func (p *Pane) SetParticipant(participant *chat.Participant) {
	if participant != nil {
		copied := *participant
		participant = &copied
	}
	p.send(participantChanged{participant: participant})
}

// SetIdentity updates who counts as "self" for new sends and notifications
func (p *Pane) SetIdentity(identity chat.Identity) {
	p.send(identityChanged{identity: identity})
}

// MessageSent echoes a message the user just sent until the backend confirms
// it, and schedules an early refresh. It returns the provisional id.
func (p *Pane) MessageSent(body string) chat.ID {
	id := chat.ID(chat.ProvisionalPrefix + p.newID())
	p.send(messageSent{message: chat.Message{
		ID:           id,
		Body:         body,
		CreationDate: p.now().UTC().Format(time.RFC3339Nano),
		Provisional:  true,
	}})
	return id
}

// Scrolled must be called after the viewport scroll position changes
func (p *Pane) Scrolled() {
	p.send(scrolled{})
}

// Retry reloads the conversation after an initial load failure
func (p *Pane) Retry() {
	p.send(retryRequested{})
}
