package tui

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/City-Bureau/seerchat/pkg/chat"
	"github.com/City-Bureau/seerchat/pkg/locale"
)

// GoalBook reads and writes what a seer notes about a customer
type GoalBook interface {
	Goal(ctx context.Context, customerID chat.ID) (*chat.Goal, error)
	SaveGoal(ctx context.Context, goal chat.Goal) error
}

type goalLoadedMsg struct {
	customerID chat.ID
	goal       *chat.Goal
	err        error
}

type goalSavedMsg struct {
	customerID chat.ID
	err        error
}

const (
	fieldSex = iota
	fieldBirthDate
	fieldConcern
	fieldQuestion
	fieldCount
)

var goalLabels = [fieldCount]string{"goal-sex", "goal-birth-date", "goal-concern", "goal-question"}

type goalForm struct {
	customer chat.Participant
	goal     chat.Goal
	inputs   [fieldCount]textinput.Model
	focus    int
	loading  bool
	saving   bool
	status   string
	failed   bool
}

func newGoalForm(customer chat.Participant) goalForm {
	f := goalForm{
		customer: customer,
		goal:     chat.Goal{CustomerID: customer.ID, Name: customer.DisplayName(), Email: customer.Email},
		loading:  true,
	}
	for i := range f.inputs {
		in := textinput.New()
		in.CharLimit = 500
		f.inputs[i] = in
	}
	f.inputs[fieldBirthDate].Placeholder = chat.BirthDateLayout
	f.inputs[fieldBirthDate].CharLimit = len(chat.BirthDateLayout)
	f.inputs[fieldSex].Focus()
	return f
}

func (f *goalForm) fill(goal chat.Goal) {
	goal.CustomerID = f.customer.ID
	if goal.Name == "" {
		goal.Name = f.goal.Name
	}
	if goal.Email == "" {
		goal.Email = f.goal.Email
	}
	f.goal = goal
	f.inputs[fieldSex].SetValue(goal.Sex)
	f.inputs[fieldBirthDate].SetValue(goal.SoulMateBirthDate)
	f.inputs[fieldConcern].SetValue(goal.Concern)
	f.inputs[fieldQuestion].SetValue(goal.CustomerQuestion)
}

func (f goalForm) value() chat.Goal {
	goal := f.goal
	goal.Sex = strings.TrimSpace(f.inputs[fieldSex].Value())
	goal.SoulMateBirthDate = strings.TrimSpace(f.inputs[fieldBirthDate].Value())
	goal.Concern = strings.TrimSpace(f.inputs[fieldConcern].Value())
	goal.CustomerQuestion = strings.TrimSpace(f.inputs[fieldQuestion].Value())
	return goal
}

func (f *goalForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

func (m Model) openGoal() (tea.Model, tea.Cmd) {
	if m.deps.Goals == nil || m.deps.UserType != chat.Seer || m.state.Participant == nil {
		return m, nil
	}
	m.goal = newGoalForm(*m.state.Participant)
	m.input.Blur()
	m.mode = modeGoal

	goals := m.deps.Goals
	customerID := m.goal.customer.ID
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		goal, err := goals.Goal(ctx, customerID)
		return goalLoadedMsg{customerID: customerID, goal: goal, err: err}
	}
}

func (m Model) updateGoalLoaded(msg goalLoadedMsg) Model {
	if msg.customerID != m.goal.customer.ID {
		return m
	}
	m.goal.loading = false
	if msg.err != nil {
		log.Printf("Loading goal for %s failed: %v", msg.customerID, msg.err)
		m.goal.status = locale.Text(m.deps.Localizer, "goal-load-failed", nil)
		m.goal.failed = true
		return m
	}
	if msg.goal != nil {
		m.goal.fill(*msg.goal)
	}
	return m
}

func (m Model) updateGoalSaved(msg goalSavedMsg) Model {
	if msg.customerID != m.goal.customer.ID {
		return m
	}
	m.goal.saving = false
	if msg.err != nil {
		log.Printf("Saving goal for %s failed: %v", msg.customerID, msg.err)
		m.goal.status = locale.Text(m.deps.Localizer, "goal-save-failed", nil)
		m.goal.failed = true
		return m
	}
	m.goal.status = locale.Text(m.deps.Localizer, "goal-saved", nil)
	m.goal.failed = false
	return m
}

func (m Model) updateGoal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.mode = modeChat
		return m, m.input.Focus()

	case "tab", "down":
		return m, m.goal.move(1)

	case "shift+tab", "up":
		return m, m.goal.move(-1)

	case "enter":
		if m.goal.focus < fieldCount-1 {
			return m, m.goal.move(1)
		}
		return m.saveGoal()

	case "ctrl+s":
		return m.saveGoal()
	}

	var cmd tea.Cmd
	m.goal.inputs[m.goal.focus], cmd = m.goal.inputs[m.goal.focus].Update(msg)
	return m, cmd
}

func (m Model) saveGoal() (tea.Model, tea.Cmd) {
	if m.goal.loading || m.goal.saving {
		return m, nil
	}
	goal := m.goal.value()
	if err := goal.Validate(m.now()); err != nil {
		m.goal.failed = true
		if errors.Is(err, chat.ErrPartnerUnderage) {
			m.goal.status = locale.Text(m.deps.Localizer, "partner-underage", nil)
		} else {
			m.goal.status = locale.Text(m.deps.Localizer, "invalid-birth-date", nil)
		}
		return m, nil
	}

	m.goal.saving = true
	m.goal.status = ""
	goals := m.deps.Goals
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return goalSavedMsg{customerID: goal.CustomerID, err: goals.SaveGoal(ctx, goal)}
	}
}

func (m Model) viewGoal() string {
	var b strings.Builder
	title := locale.Text(m.deps.Localizer, "goal-title", nil) + " · " + m.goal.customer.DisplayName()
	b.WriteString(headerStyle.Width(m.width).Render(title))
	b.WriteString("\n\n")

	if m.goal.loading {
		b.WriteString(m.spinner.View())
		b.WriteString("\n")
	}
	for i := range m.goal.inputs {
		label := goalLabel(m.deps.Localizer, i)
		if i == m.goal.focus {
			b.WriteString(selectedStyle.Render(label))
		} else {
			b.WriteString(normalStyle.Render(label))
		}
		b.WriteString("\n")
		b.WriteString(inputStyle.Width(m.width).Render(m.goal.inputs[i].View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.goal.saving:
		b.WriteString(statusBarStyle.Render(m.spinner.View()))
	case m.goal.failed:
		b.WriteString(errorStyle.Render(m.goal.status))
	default:
		b.WriteString(dimStyle.Render(m.goal.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(locale.Text(m.deps.Localizer, "help-goal", nil)))
	return b.String()
}

func goalLabel(localizer *i18n.Localizer, field int) string {
	return locale.Text(localizer, goalLabels[field], nil)
}
