package tui

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/City-Bureau/seerchat/pkg/chat"
	"github.com/City-Bureau/seerchat/pkg/locale"
	"github.com/City-Bureau/seerchat/pkg/pane"
)

// LineViewport renders a conversation as terminal lines. It implements
// pane.Viewport in line units: the pane lays out and scrolls it from its own
// goroutine while the UI reads the visible lines.
type LineViewport struct {
	localizer *i18n.Localizer
	loc       *time.Location
	now       func() time.Time

	mu       sync.Mutex
	identity chat.Identity
	width    int
	height   int
	top      int
	messages []chat.Message
	lines    []string
}

// NewLineViewport creates a viewport showing times in loc
func NewLineViewport(identity chat.Identity, localizer *i18n.Localizer, loc *time.Location) *LineViewport {
	if loc == nil {
		loc = time.Local
	}
	return &LineViewport{
		localizer: localizer,
		loc:       loc,
		now:       time.Now,
		identity:  identity,
		width:     80,
		height:    20,
	}
}

// Metrics implements pane.Viewport
func (v *LineViewport) Metrics() pane.Metrics {
	v.mu.Lock()
	defer v.mu.Unlock()
	return pane.Metrics{ScrollTop: v.top, ScrollHeight: len(v.lines), ClientHeight: v.height}
}

// Layout implements pane.Viewport
func (v *LineViewport) Layout(messages []chat.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = append(v.messages[:0:0], messages...)
	v.render()
}

// ScrollTo implements pane.Viewport
func (v *LineViewport) ScrollTo(top int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.top = top
	v.clamp()
}

// ScrollBy moves the viewport by delta lines
func (v *LineViewport) ScrollBy(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.top += delta
	v.clamp()
}

// Resize changes the area the conversation is drawn in. A viewport showing
// the last line keeps showing it.
func (v *LineViewport) Resize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if width < 20 {
		width = 20
	}
	if height < 1 {
		height = 1
	}
	atBottom := v.top >= len(v.lines)-v.height
	v.width = width
	v.height = height
	v.render()
	if atBottom {
		v.top = len(v.lines)
	}
	v.clamp()
}

// SetIdentity changes which messages are drawn as sent by the user
func (v *LineViewport) SetIdentity(identity chat.Identity) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.identity = identity
	v.render()
}

// Visible returns the lines currently scrolled into view
func (v *LineViewport) Visible() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	end := v.top + v.height
	if end > len(v.lines) {
		end = len(v.lines)
	}
	return append([]string(nil), v.lines[v.top:end]...)
}

func (v *LineViewport) clamp() {
	max := len(v.lines) - v.height
	if max < 0 {
		max = 0
	}
	if v.top > max {
		v.top = max
	}
	if v.top < 0 {
		v.top = 0
	}
}

func (v *LineViewport) render() {
	var lines []string
	bubbleWidth := v.width * 3 / 4

	var undated []chat.Message
	for _, message := range v.messages {
		if _, ok := message.CreatedAt(); !ok {
			undated = append(undated, message)
		}
	}
	for _, message := range undated {
		lines = append(lines, v.renderMessage(message, bubbleWidth)...)
	}

	now := v.now()
	for _, group := range pane.GroupByDay(v.messages, v.loc) {
		label := locale.DayLabel(v.localizer, group.Day, now)
		lines = append(lines, lipgloss.PlaceHorizontal(v.width, lipgloss.Center, dayStyle.Render(label)))
		for _, message := range group.Messages {
			lines = append(lines, v.renderMessage(message, bubbleWidth)...)
		}
	}
	v.lines = lines
}

func (v *LineViewport) renderMessage(message chat.Message, width int) []string {
	body := message.Body
	if createdAt, ok := message.CreatedAt(); ok {
		body += "  " + createdAt.In(v.loc).Format("15:04")
	}
	if message.IsProvisional() {
		body += " …"
	}

	wrapped := lipgloss.NewStyle().Width(width).Render(body)
	self := v.identity.IsSelf(message.Sender) || message.IsProvisional()

	style := otherStyle
	switch {
	case message.IsProvisional():
		style = pendingStyle
	case self:
		style = selfStyle
	}

	var lines []string
	for _, line := range strings.Split(wrapped, "\n") {
		line = style.Render(strings.TrimRight(line, " "))
		if self {
			line = lipgloss.PlaceHorizontal(v.width, lipgloss.Right, line)
		}
		lines = append(lines, line)
	}
	return lines
}
