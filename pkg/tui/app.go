package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/City-Bureau/seerchat/pkg/chat"
	"github.com/City-Bureau/seerchat/pkg/directory"
	"github.com/City-Bureau/seerchat/pkg/locale"
	"github.com/City-Bureau/seerchat/pkg/outbox"
	"github.com/City-Bureau/seerchat/pkg/pane"
	"github.com/City-Bureau/seerchat/pkg/selection"
)

// listRefresh matches how often the web client refetches the conversation list
const listRefresh = 20 * time.Second

// Defaults in lines for the pane scroll distances
const (
	LineBottomTolerance = 2
	LineTopThreshold    = 1
)

// LineConfig fills the scroll distances of cfg with line defaults
func LineConfig(cfg pane.Config) pane.Config {
	if cfg.BottomTolerance <= 0 {
		cfg.BottomTolerance = LineBottomTolerance
	}
	if cfg.TopThreshold <= 0 {
		cfg.TopThreshold = LineTopThreshold
	}
	return cfg
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeChat
	modePlans
	modeGoal
)

// Conversation is the part of the pane the UI drives directly
type Conversation interface {
	Scrolled()
	Retry()
}

// Sender sends messages and tracks the credit balance
type Sender interface {
	Send(ctx context.Context, participant *chat.Participant, body string) (chat.ID, error)
	Credits() (int, bool)
	Refresh(ctx context.Context) error
}

// PlanSource lists the credit packages on sale
type PlanSource interface {
	Plans(ctx context.Context) ([]chat.Plan, error)
}

// StateMsg carries a pane snapshot into the program
type StateMsg pane.State

type listLoadedMsg struct {
	participants []chat.Participant
	selected     *chat.Participant
	err          error
}

type listTickMsg struct{}

type sentMsg struct {
	err error
}

type creditsMsg struct{}

type plansLoadedMsg struct {
	plans []chat.Plan
	err   error
}

// Deps are the collaborators the UI works with
type Deps struct {
	Conversation Conversation
	Viewport     *LineViewport
	Sender       Sender
	Directory    directory.Source
	Plans        PlanSource
	Goals        GoalBook
	Store        *selection.Store
	Localizer    *i18n.Localizer
	UserType     chat.UserType
	DeepLinkID   chat.ID
}

// Model is the bubbletea model of the chat client
type Model struct {
	deps Deps

	mode         mode
	width        int
	height       int
	participants []chat.Participant
	filtered     []chat.Participant
	cursor       int
	listLoading  bool
	listErr      error
	deepLinked   bool

	state   pane.State
	status  string
	sending bool

	plans        []chat.Plan
	plansLoading bool
	plansErr     error

	goal goalForm

	searchInput textinput.Model
	input       textinput.Model
	spinner     spinner.Model
	now         func() time.Time
}

// NewModel creates the UI model. It opens the chat directly when a
// conversation is already selected.
func NewModel(deps Deps) Model {
	si := textinput.New()
	si.Placeholder = locale.Text(deps.Localizer, "search-placeholder", nil)
	si.CharLimit = 100

	in := textinput.New()
	in.Placeholder = locale.Text(deps.Localizer, "input-placeholder", nil)
	in.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	m := Model{
		deps:        deps,
		width:       80,
		height:      24,
		listLoading: true,
		searchInput: si,
		input:       in,
		spinner:     sp,
		now:         time.Now,
	}
	if deps.Store != nil && deps.Store.Current().Counterpart != nil {
		m.mode = modeChat
		m.input.Focus()
	}
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadList(), m.refreshCredits(), textinput.Blink)
}

func (m Model) loadList() tea.Cmd {
	source := m.deps.Directory
	deepLinkID := chat.ID("")
	if !m.deepLinked {
		deepLinkID = m.deps.DeepLinkID
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		participants, selected, err := directory.Load(ctx, source, deepLinkID)
		return listLoadedMsg{participants: participants, selected: selected, err: err}
	}
}

func (m Model) refreshCredits() tea.Cmd {
	if m.deps.Sender == nil || m.deps.UserType != chat.Client {
		return nil
	}
	sender := m.deps.Sender
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sender.Refresh(ctx); err != nil {
			log.Printf("Could not load credits: %v", err)
		}
		return creditsMsg{}
	}
}

func scheduleList() tea.Cmd {
	return tea.Tick(listRefresh, func(time.Time) tea.Msg { return listTickMsg{} })
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case StateMsg:
		m.state = pane.State(msg)
		return m, nil

	case listLoadedMsg:
		return m.updateListLoaded(msg), scheduleList()

	case listTickMsg:
		return m, m.loadList()

	case sentMsg:
		m.sending = false
		m.status = m.sendStatus(msg.err)
		if errors.Is(msg.err, outbox.ErrNoCredits) {
			return m.openPlans()
		}
		return m, nil

	case creditsMsg:
		if m.mode != modePlans || m.deps.Sender == nil {
			return m, nil
		}
		if credits, known := m.deps.Sender.Credits(); known && credits > 0 {
			m.mode = modeChat
			m.status = ""
			return m, m.input.Focus()
		}
		return m, nil

	case plansLoadedMsg:
		m.plansLoading = false
		m.plans = msg.plans
		m.plansErr = msg.err
		if msg.err != nil {
			log.Printf("Loading plans failed: %v", msg.err)
		}
		return m, nil

	case goalLoadedMsg:
		return m.updateGoalLoaded(msg), nil

	case goalSavedMsg:
		return m.updateGoalSaved(msg), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.updateList(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeChat:
			return m.updateChat(msg)
		case modePlans:
			return m.updatePlans(msg)
		case modeGoal:
			return m.updateGoal(msg)
		}
	}
	return m, nil
}

func (m *Model) resize() {
	if m.deps.Viewport == nil {
		return
	}
	m.deps.Viewport.Resize(m.width, m.chatBodyHeight())
	m.input.Width = m.width - 4
	if m.deps.Conversation != nil {
		m.deps.Conversation.Scrolled()
	}
}

// header, status bar, input and help take a line each
func (m Model) chatBodyHeight() int {
	return m.height - 4
}

func (m Model) updateListLoaded(msg listLoadedMsg) Model {
	m.listLoading = false
	m.listErr = msg.err
	if msg.err != nil {
		log.Printf("Loading conversations failed: %v", msg.err)
		return m
	}
	m.participants = msg.participants
	m.applyFilter()
	if msg.selected != nil && !m.deepLinked {
		m.deepLinked = true
		m.open(*msg.selected)
	}
	return m
}

func (m *Model) applyFilter() {
	m.filtered = directory.Filter(m.participants, m.searchInput.Value())
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) open(participant chat.Participant) {
	if m.deps.Store != nil {
		m.deps.Store.SetCounterpart(&participant)
	}
	m.status = ""
	m.mode = modeChat
	m.searchInput.Blur()
	m.input.Focus()
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case "enter":
		if len(m.filtered) > 0 {
			m.open(m.filtered[m.cursor])
			return m, textinput.Blink
		}

	case "/":
		m.mode = modeSearch
		return m, m.searchInput.Focus()

	case "tab":
		if m.deps.Store != nil && m.deps.Store.Current().Counterpart != nil {
			m.mode = modeChat
			return m, m.input.Focus()
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searchInput.Blur()
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.input.Blur()
		m.mode = modeList
		return m, nil

	case "ctrl+r":
		if m.state.Err != nil && m.deps.Conversation != nil {
			m.deps.Conversation.Retry()
		}
		return m, nil

	case "up", "pgup", "down", "pgdown", "end":
		m.scroll(msg.String())
		return m, nil

	case "enter":
		return m.send()

	case "ctrl+p":
		return m.openPlans()

	case "ctrl+g":
		return m.openGoal()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) openPlans() (tea.Model, tea.Cmd) {
	if m.deps.Plans == nil || m.deps.UserType != chat.Client {
		return m, nil
	}
	m.mode = modePlans
	m.input.Blur()
	m.plansLoading = true
	source := m.deps.Plans
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		plans, err := source.Plans(ctx)
		return plansLoadedMsg{plans: plans, err: err}
	}
}

func (m Model) updatePlans(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		m.mode = modeChat
		return m, m.input.Focus()
	case "r":
		return m, m.refreshCredits()
	}
	return m, nil
}

func (m *Model) scroll(key string) {
	if m.deps.Viewport == nil {
		return
	}
	page := m.chatBodyHeight() - 1
	if page < 1 {
		page = 1
	}
	switch key {
	case "up":
		m.deps.Viewport.ScrollBy(-1)
	case "down":
		m.deps.Viewport.ScrollBy(1)
	case "pgup":
		m.deps.Viewport.ScrollBy(-page)
	case "pgdown":
		m.deps.Viewport.ScrollBy(page)
	case "end":
		m.deps.Viewport.ScrollTo(m.deps.Viewport.Metrics().ScrollHeight)
	}
	if m.deps.Conversation != nil {
		m.deps.Conversation.Scrolled()
	}
}

func (m Model) send() (tea.Model, tea.Cmd) {
	if m.sending || m.deps.Sender == nil {
		return m, nil
	}
	body := m.input.Value()
	if strings.TrimSpace(body) == "" {
		m.status = m.sendStatus(outbox.ErrEmptyMessage)
		return m, nil
	}
	participant := m.state.Participant
	if participant == nil && m.deps.Store != nil {
		participant = m.deps.Store.Current().Counterpart
	}

	m.sending = true
	m.status = ""
	m.input.Reset()
	sender := m.deps.Sender
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := sender.Send(ctx, participant, body)
		return sentMsg{err: err}
	}
}

func (m Model) sendStatus(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, outbox.ErrEmptyMessage):
		return locale.Text(m.deps.Localizer, "empty-message", nil)
	case errors.Is(err, outbox.ErrNoCredits):
		return locale.Text(m.deps.Localizer, "no-credits", nil)
	case errors.Is(err, outbox.ErrNoParticipant):
		return locale.Text(m.deps.Localizer, "no-conversation", nil)
	}
	log.Printf("Sending message failed: %v", err)
	return locale.Text(m.deps.Localizer, "send-failed", nil)
}

// View implements tea.Model
func (m Model) View() string {
	switch m.mode {
	case modeChat:
		return m.viewChat()
	case modePlans:
		return m.viewPlans()
	case modeGoal:
		return m.viewGoal()
	}
	return m.viewList()
}

func (m Model) viewPlans() string {
	var b strings.Builder
	b.WriteString(headerStyle.Width(m.width).Render(m.chatTitle()))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(titleStyle.Render(locale.Text(m.deps.Localizer, "plans-title", nil)))
	b.WriteString("\n")

	switch {
	case m.plansLoading:
		b.WriteString(m.spinner.View())
		b.WriteString("\n")
	case m.plansErr != nil:
		b.WriteString(errorStyle.Render(locale.Text(m.deps.Localizer, "plans-failed", nil)))
		b.WriteString("\n")
	case len(m.plans) == 0:
		b.WriteString(dimStyle.Render(locale.Text(m.deps.Localizer, "no-plans", nil)))
		b.WriteString("\n")
	}
	for _, plan := range m.plans {
		b.WriteString(normalStyle.Render(locale.Text(m.deps.Localizer, "plan-line", map[string]string{
			"Name":   plan.Name,
			"Credit": strconv.Itoa(plan.Credit),
			"Amount": plan.Amount,
		})))
		b.WriteString("\n")
		for _, feature := range plan.Features {
			b.WriteString(dimStyle.Render("    · " + feature))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(normalStyle.Render(locale.Text(m.deps.Localizer, "plans-hint", nil)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(locale.Text(m.deps.Localizer, "help-plans", nil)))
	return b.String()
}

func (m Model) viewList() string {
	var b strings.Builder
	title := locale.Text(m.deps.Localizer, "conversations", nil)
	if unread := directory.UnreadTotal(m.participants); unread > 0 {
		title += " " + unreadStyle.Render(fmt.Sprintf("(%d)", unread))
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if m.mode == modeSearch || m.searchInput.Value() != "" {
		b.WriteString(inputStyle.Render(m.searchInput.View()))
		b.WriteString("\n")
	}

	switch {
	case m.listLoading:
		b.WriteString(normalStyle.Render(m.spinner.View()))
		b.WriteString("\n")
	case m.listErr != nil && len(m.participants) == 0:
		b.WriteString(errorStyle.Render(locale.Text(m.deps.Localizer, "list-failed", nil)))
		b.WriteString("\n")
	case len(m.filtered) == 0:
		b.WriteString(dimStyle.Render(locale.Text(m.deps.Localizer, "no-counterparts", nil)))
		b.WriteString("\n")
	}

	for i, p := range m.filtered {
		line := p.DisplayName()
		if p.UnreadMessageCount > 0 {
			line += " " + strconv.Itoa(p.UnreadMessageCount)
		}
		if p.LastMessage != "" {
			line += "  " + truncate(p.LastMessage, m.width/2)
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Width(m.width).Render(line))
		} else {
			b.WriteString(normalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(locale.Text(m.deps.Localizer, "help-list", nil)))
	return b.String()
}

func (m Model) viewChat() string {
	var b strings.Builder
	b.WriteString(headerStyle.Width(m.width).Render(m.chatTitle()))
	b.WriteString("\n")

	bodyHeight := m.chatBodyHeight()
	body := m.chatBody()
	b.WriteString(lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(strings.Join(body, "\n")))
	b.WriteString("\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(inputStyle.Width(m.width).Render(m.input.View()))
	b.WriteString("\n")
	help := locale.Text(m.deps.Localizer, "help-chat", nil)
	switch {
	case m.deps.Goals != nil && m.deps.UserType == chat.Seer:
		help += " • " + locale.Text(m.deps.Localizer, "help-goal-key", nil)
	case m.deps.Plans != nil && m.deps.UserType == chat.Client:
		help += " • " + locale.Text(m.deps.Localizer, "help-plans-key", nil)
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m Model) chatTitle() string {
	title := locale.Text(m.deps.Localizer, "no-conversation", nil)
	if m.state.Participant != nil {
		title = m.state.Participant.DisplayName()
	}
	if m.deps.Sender != nil && m.deps.UserType == chat.Client {
		if credits, known := m.deps.Sender.Credits(); known {
			title += "  " + locale.Text(m.deps.Localizer, "credits-left", map[string]string{"Count": strconv.Itoa(credits)})
		}
	}
	return title
}

func (m Model) chatBody() []string {
	switch {
	case m.state.Participant == nil:
		return []string{dimStyle.Render(locale.Text(m.deps.Localizer, "no-conversation", nil))}
	case m.state.Err != nil:
		return []string{errorStyle.Render(locale.Text(m.deps.Localizer, "load-failed", nil))}
	case m.state.InitialLoading:
		return []string{m.spinner.View() + " " + locale.Text(m.deps.Localizer, "loading-messages", nil)}
	case m.deps.Viewport == nil:
		return nil
	}

	lines := m.deps.Viewport.Visible()
	metrics := m.deps.Viewport.Metrics()
	if metrics.ScrollTop == 0 && len(lines) > 0 {
		var banner string
		switch {
		case m.state.LoadingOlder:
			banner = m.spinner.View() + " " + locale.Text(m.deps.Localizer, "loading-older", nil)
		case m.state.Cursor.PreviousURL == "":
			banner = locale.Text(m.deps.Localizer, "history-start", nil)
		}
		if banner != "" {
			lines = append([]string{lipgloss.PlaceHorizontal(m.width, lipgloss.Center, dimStyle.Render(banner))}, lines...)
			if len(lines) > m.chatBodyHeight() {
				lines = lines[:m.chatBodyHeight()]
			}
		}
	}
	return lines
}

func (m Model) statusLine() string {
	switch {
	case m.status != "":
		return errorStyle.Render(m.status)
	case m.sending:
		return statusBarStyle.Render(m.spinner.View())
	case m.state.HasNewMessages:
		return newMessagesStyle.Render(locale.Text(m.deps.Localizer, "new-messages", nil) + " ↓")
	}
	return ""
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if width < 2 || len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
