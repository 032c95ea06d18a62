package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/tui/components"
	"github.com/theirongolddev/pmx/internal/tui/theme"
)

type chatState struct {
	history []model.ChatMessage
	pending string // message awaiting a reply
	input   textinput.Model
	scroll  int // lines scrolled up from the bottom
}

func newChatState() chatState {
	ti := textinput.New()
	ti.Placeholder = "Ask about scope, risks, scheduling…"
	ti.CharLimit = 2000
	ti.Width = 60
	return chatState{input: ti}
}

func (a App) updateChat(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "i", "enter":
		cmd := a.chat.input.Focus()
		return a, cmd
	case "k", "up":
		a.chat.scroll++
	case "j", "down":
		a.chat.scroll = max(0, a.chat.scroll-1)
	case "c":
		a.chat.history = nil
		a.chat.scroll = 0
	}
	return a, nil
}

func (a App) updateChatInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.chat.input.Blur()
		return a, nil
	case "enter":
		text := strings.TrimSpace(a.chat.input.Value())
		if text == "" || a.busy != "" {
			return a, nil
		}
		a.chat.input.SetValue("")
		a.chat.pending = text
		a.busy = "Thinking…"
		return a, tea.Batch(a.spinner.Tick, chatCmd(a.llm, text, a.chat.history))
	}
	var cmd tea.Cmd
	a.chat.input, cmd = a.chat.input.Update(msg)
	return a, cmd
}

func (a App) renderChatTab(cw, h int) string {
	t := theme.Active
	inner := components.CardInnerWidth(cw)

	userLabel := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	modelLabel := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Bold(true)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(inner)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var lines []string
	add := func(label lipgloss.Style, who, body string) {
		lines = append(lines, label.Render(who))
		lines = append(lines, strings.Split(text.Render(body), "\n")...)
		lines = append(lines, "")
	}
	for _, m := range a.chat.history {
		if m.Role == "user" {
			add(userLabel, "You", m.Content)
		} else {
			add(modelLabel, "Assistant", m.Content)
		}
	}
	if a.chat.pending != "" {
		add(userLabel, "You", a.chat.pending)
		lines = append(lines, dim.Render(a.spinner.View()+" thinking…"))
	}
	if len(lines) == 0 {
		lines = append(lines, dim.Render("Ask the project assistant anything. Press i or Enter to type, Esc to leave the input."))
	}

	// Card border and title take 3 rows, the input card 3 more, hints 1.
	visible := max(3, h-7)
	end := max(0, len(lines)-a.chat.scroll)
	start := max(0, end-visible)
	body := strings.Join(lines[start:end], "\n")

	var b strings.Builder
	b.WriteString(components.ContentCard("Assistant", body, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("", a.chat.input.View(), cw))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).
		Render("i type · Enter send · Esc leave input · j/k scroll · c clear"))
	return b.String()
}
