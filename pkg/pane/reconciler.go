package pane

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

// ErrInitialLoad wraps the failure of the first page fetch of a conversation
var ErrInitialLoad = errors.New("could not load conversation")

type fetchKind int

const (
	fetchInitial fetchKind = iota
	fetchLatest
	fetchOlder
)

func (k fetchKind) String() string {
	switch k {
	case fetchInitial:
		return "initial"
	case fetchLatest:
		return "latest"
	default:
		return "older"
	}
}

type fetchRequest struct {
	generation  uint64
	kind        fetchKind
	participant chat.Participant
	url         string
}

type event interface{}

type participantChanged struct{ participant *chat.Participant }

type pollTick struct{}

type messageSent struct{ message chat.Message }

type scrolled struct{}

type retryRequested struct{}

type identityChanged struct{ identity chat.Identity }

type fetched struct {
	request fetchRequest
	page    *chat.Page
	err     error
}

// reconciler owns every piece of pane state. It is only touched from the
// pane's run loop, one event at a time.
type reconciler struct {
	cfg      Config
	identity chat.Identity
	viewport Viewport
	notifier Notifier

	generation     uint64
	participant    *chat.Participant
	messages       []chat.Message
	cursor         chat.Cursor
	pagedBack      bool
	loaded         bool
	initialLoading bool
	loadingOlder   bool
	latestInFlight bool
	refetch        bool
	deferred       *chat.Page
	recent         []chat.Message
	hasNew         bool
	err            error
	tracker        notifyTracker
}

func (r *reconciler) handle(ctx context.Context, ev event) []fetchRequest {
	switch e := ev.(type) {
	case participantChanged:
		return r.switchTo(e.participant)
	case pollTick:
		return r.poll()
	case messageSent:
		return r.echo(e.message)
	case scrolled:
		return r.scrolled()
	case retryRequested:
		return r.retry()
	case identityChanged:
		r.identity = e.identity
		return nil
	case fetched:
		return r.apply(ctx, e)
	}
	return nil
}

func (r *reconciler) request(kind fetchKind, url string) []fetchRequest {
	return []fetchRequest{{
		generation:  r.generation,
		kind:        kind,
		participant: *r.participant,
		url:         url,
	}}
}

func (r *reconciler) switchTo(participant *chat.Participant) []fetchRequest {
	r.generation++
	r.messages = nil
	r.cursor = chat.Cursor{}
	r.pagedBack = false
	r.loaded = false
	r.loadingOlder = false
	r.latestInFlight = false
	r.refetch = false
	r.deferred = nil
	r.recent = nil
	r.hasNew = false
	r.err = nil
	r.tracker.reset()
	r.viewport.Layout(nil)
	r.viewport.ScrollTo(0)

	if participant == nil {
		r.participant = nil
		r.initialLoading = false
		return nil
	}
	p := *participant
	r.participant = &p
	r.initialLoading = true
	return r.request(fetchInitial, "")
}

func (r *reconciler) poll() []fetchRequest {
	if r.participant == nil || !r.loaded || r.latestInFlight {
		return nil
	}
	r.latestInFlight = true
	return r.request(fetchLatest, "")
}

func (r *reconciler) echo(message chat.Message) []fetchRequest {
	if r.participant == nil {
		return nil
	}
	if message.Sender.IsZero() {
		message.Sender = r.identity.SenderID()
	}
	r.messages = withoutProvisional(r.messages)
	// The confirmed copy may have landed before the send was echoed
	if !r.confirmedRecently(message) {
		r.messages = append(r.messages, message)
		sortChronological(r.messages)
	}
	r.viewport.Layout(r.messages)
	scrollToBottom(r.viewport)
	r.hasNew = false

	if !r.loaded {
		return nil
	}
	if r.latestInFlight {
		r.refetch = true
		return nil
	}
	r.latestInFlight = true
	return r.request(fetchLatest, "")
}

func (r *reconciler) scrolled() []fetchRequest {
	metrics := r.viewport.Metrics()
	if metrics.AtBottom(r.cfg.BottomTolerance) {
		r.hasNew = false
	}
	if r.participant == nil || !r.loaded || r.loadingOlder || r.cursor.PreviousURL == "" {
		return nil
	}
	if !metrics.NearTop(r.cfg.TopThreshold) {
		return nil
	}
	r.loadingOlder = true
	return r.request(fetchOlder, r.cursor.PreviousURL)
}

func (r *reconciler) retry() []fetchRequest {
	if r.participant == nil || r.err == nil || r.initialLoading {
		return nil
	}
	r.err = nil
	r.initialLoading = true
	return r.request(fetchInitial, "")
}

func (r *reconciler) apply(ctx context.Context, result fetched) []fetchRequest {
	if result.request.generation != r.generation {
		log.Printf("Discarding stale %s response for %s", result.request.kind, result.request.participant.ID)
		return nil
	}
	page := result.page
	if page == nil {
		page = &chat.Page{}
	}

	switch result.request.kind {
	case fetchInitial:
		r.initialLoading = false
		if result.err != nil {
			r.err = fmt.Errorf("%w: %v", ErrInitialLoad, result.err)
			log.Println(r.err)
			return nil
		}
		r.applyInitial(ctx, page)

	case fetchLatest:
		r.latestInFlight = false
		if result.err != nil {
			log.Printf("Polling messages for %s failed: %v", result.request.participant.ID, result.err)
		} else if r.loadingOlder {
			// Held back so the prepend measures a stable scroll height
			r.deferred = page
		} else {
			r.applyLatest(ctx, page)
		}
		if r.refetch {
			r.refetch = false
			r.latestInFlight = true
			return r.request(fetchLatest, "")
		}

	case fetchOlder:
		r.loadingOlder = false
		if result.err != nil {
			log.Printf("Loading older messages for %s failed: %v", result.request.participant.ID, result.err)
		} else {
			r.applyOlder(page)
		}
		if r.deferred != nil {
			deferred := r.deferred
			r.deferred = nil
			r.applyLatest(ctx, deferred)
		}
	}
	return nil
}

func (r *reconciler) applyInitial(ctx context.Context, page *chat.Page) {
	r.loaded = true
	r.messages, _ = merge(r.messages, page.Results, r.cfg.ConfirmWindow)
	r.recent = nil
	r.cursor = chat.Cursor{
		NextURL:     page.NextURL(),
		PreviousURL: page.PreviousURL(),
	}
	r.trackBounds(page.Results)
	r.viewport.Layout(r.messages)
	scrollToBottom(r.viewport)
	r.announce(ctx)
}

func (r *reconciler) applyLatest(ctx context.Context, page *chat.Page) {
	atBottom := r.viewport.Metrics().AtBottom(r.cfg.BottomTolerance)

	var fresh []chat.Message
	r.messages, fresh = merge(r.messages, page.Results, r.cfg.ConfirmWindow)
	r.recent = fresh
	r.cursor.NextURL = page.NextURL()
	if !r.pagedBack {
		r.cursor.PreviousURL = page.PreviousURL()
	}
	r.trackBounds(page.Results)
	r.viewport.Layout(r.messages)

	if atBottom {
		scrollToBottom(r.viewport)
		r.hasNew = false
	} else if len(fresh) > 0 {
		r.hasNew = true
	}
	r.announce(ctx)
}

func (r *reconciler) applyOlder(page *chat.Page) {
	previousHeight := r.viewport.Metrics().ScrollHeight

	r.messages, _ = merge(r.messages, page.Results, r.cfg.ConfirmWindow)
	r.pagedBack = true
	r.cursor.PreviousURL = page.PreviousURL()
	r.trackBounds(page.Results)

	r.viewport.Layout(r.messages)
	r.viewport.ScrollTo(r.viewport.Metrics().ScrollHeight - previousHeight)
}

// confirmedRecently matches provisional against own messages added by the last merge
func (r *reconciler) confirmedRecently(provisional chat.Message) bool {
	var own []chat.Message
	for _, message := range r.recent {
		if r.identity.IsSelf(message.Sender) {
			own = append(own, message)
		}
	}
	return confirmed(provisional, own, r.cfg.ConfirmWindow)
}

func (r *reconciler) announce(ctx context.Context) {
	message, ok := r.tracker.observe(r.messages, r.identity)
	if !ok || r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, message); err != nil {
		log.Printf("Notifying message %s failed: %v", message.ID, err)
	}
}

func (r *reconciler) trackBounds(messages []chat.Message) {
	for _, message := range messages {
		createdAt, ok := message.CreatedAt()
		if !ok {
			continue
		}
		formatted := chat.FormatDateForAPI(message.CreationDate)
		if oldest, ok := chat.ParseTimestamp(r.cursor.OldestSeen); !ok || createdAt.Before(oldest) {
			r.cursor.OldestSeen = formatted
		}
		if newest, ok := chat.ParseTimestamp(r.cursor.NewestSeen); !ok || createdAt.After(newest) {
			r.cursor.NewestSeen = formatted
		}
	}
}

func (r *reconciler) snapshot() State {
	state := State{
		Messages:       append([]chat.Message(nil), r.messages...),
		Cursor:         r.cursor,
		HasNewMessages: r.hasNew,
		InitialLoading: r.initialLoading,
		LoadingOlder:   r.loadingOlder,
		Err:            r.err,
	}
	if r.participant != nil {
		p := *r.participant
		state.Participant = &p
	}
	return state
}
