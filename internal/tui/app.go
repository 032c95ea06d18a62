// Package tui provides the interactive Bubble Tea dashboard for pmx.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/clock"
	"github.com/theirongolddev/pmx/internal/config"
	"github.com/theirongolddev/pmx/internal/genai"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/plan"
	"github.com/theirongolddev/pmx/internal/store"
	"github.com/theirongolddev/pmx/internal/tui/components"
	"github.com/theirongolddev/pmx/internal/tui/theme"
	"github.com/theirongolddev/pmx/internal/workspace"
)

// ProjectsLoadedMsg carries the owner's project list.
type ProjectsLoadedMsg struct {
	Projects []model.Project
	Err      error
}

// ProjectOpenedMsg carries a project fetched for editing.
type ProjectOpenedMsg struct {
	Project model.Project
	Err     error
}

// SaveResultMsg reports one autosave outcome.
type SaveResultMsg workspace.SaveResult

// PlanGeneratedMsg carries a generated charter, risks, and breakdown.
type PlanGeneratedMsg struct {
	Plan plan.Generated
	Err  error
}

// ChatReplyMsg carries the assistant's answer.
type ChatReplyMsg struct {
	Reply string
	Err   error
}

// Options configures the dashboard.
type Options struct {
	Store  store.Store
	Config config.Config
	// LLM is nil when no API key is configured.
	LLM    *genai.Client
	Logger *slog.Logger
	Clock  clock.Clock
	// NeedSetup shows the first-run wizard before the dashboard.
	NeedSetup bool
	// ProjectID, when set, is opened at start.
	ProjectID string
	// ConfigPath is where preference changes are written. Empty means
	// config.ConfigPath().
	ConfigPath string
}

// App is the root Bubble Tea model.
type App struct {
	st      store.Store
	cfg     config.Config
	cfgPath string
	owner   string
	llm     *genai.Client
	log     *slog.Logger
	clock   clock.Clock

	// Data
	projects []model.Project
	stats    workspace.Stats
	loaded   bool
	loadErr  error
	openID   string

	// Open project; nil until one is opened or created.
	sess      *workspace.Session
	saveSub   chan workspace.SaveResult
	saveState components.SaveState
	lastSave  time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	note      string

	// Per-tab state
	prompt   promptState
	dash     dashState
	board    boardState
	cal      calState
	budget   budgetState
	plan     planState
	chat     chatState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Set while a generator call is in flight.
	spinner spinner.Model
	busy    string
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	saveBuffer       = 16
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	if opts.ConfigPath == "" {
		opts.ConfigPath = config.ConfigPath()
	}

	now := opts.Clock.Now()
	a := App{
		st:        opts.Store,
		cfg:       opts.Config,
		cfgPath:   opts.ConfigPath,
		owner:     config.GetOwner(opts.Config),
		llm:       opts.LLM,
		log:       opts.Logger,
		clock:     opts.Clock,
		openID:    opts.ProjectID,
		needSetup: opts.NeedSetup,
		saveSub:   make(chan workspace.SaveResult, saveBuffer),
		spinner:   sp,
		cal:       newCalState(now),
		chat:      newChatState(),
	}
	if a.needSetup {
		a.setupVals = SetupValuesFrom(a.cfg)
		a.setupForm = NewSetupForm(&a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		loadProjectsCmd(a.st, a.owner),
		waitForSave(a.saveSub),
	}
	if a.openID != "" {
		cmds = append(cmds, openProjectCmd(a.st, a.owner, a.openID))
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// Close flushes pending edits of the open project. Call it with the final
// model after the program exits.
func (a App) Close(ctx context.Context) error {
	if a.sess == nil {
		return nil
	}
	return a.sess.Close(ctx)
}

func (a *App) newSession() *workspace.Session {
	sub := a.saveSub
	return workspace.New(a.st, a.owner, workspace.Options{
		Delay:  config.AutosaveDelay(a.cfg),
		Clock:  a.clock,
		Logger: a.log,
		OnSave: func(r workspace.SaveResult) {
			select {
			case sub <- r:
			default:
			}
		},
	})
}

// openSession replaces the open project, flushing the previous one first.
func (a *App) openSession(p *model.Project) {
	if a.sess != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.sess.Close(ctx); err != nil {
			a.log.Error("flush before switching project", "err", err)
		}
		cancel()
	}
	a.sess = a.newSession()
	if p != nil {
		a.sess.Load(*p)
	}
	a.saveState = components.SaveIdle
	a.board = boardState{}
	a.budget = budgetState{}
	a.plan = planState{}
}

// mutated records that the open project changed and a save is pending.
func (a *App) mutated(changed bool) {
	if changed {
		a.saveState = components.SavePending
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.chat.input.Width = max(20, a.contentWidth()-8)
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.setupForm != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		return a.updateKey(msg)

	case ProjectsLoadedMsg:
		a.loaded = true
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.projects = msg.Projects
			a.stats = workspace.Summarize(msg.Projects)
			a.dash.clamp(len(a.projects))
		}
		return a, nil

	case ProjectOpenedMsg:
		if msg.Err != nil {
			a.note = "Open failed: " + msg.Err.Error()
			return a, nil
		}
		p := msg.Project
		a.openSession(&p)
		a.activeTab = components.TabBoard
		a.note = "Opened " + p.Name
		return a, nil

	case SaveResultMsg:
		if msg.Err != nil {
			a.saveState = components.SaveFailed
			a.note = "Save failed: " + msg.Err.Error()
			return a, waitForSave(a.saveSub)
		}
		a.lastSave = a.clock.Now()
		if a.sess != nil && !a.sess.Pending() {
			a.saveState = components.SaveDone
		}
		return a, tea.Batch(waitForSave(a.saveSub), loadProjectsCmd(a.st, a.owner))

	case PlanGeneratedMsg:
		a.busy = ""
		if msg.Err != nil {
			a.note = generatorErrorNote(msg.Err)
			return a, nil
		}
		if a.sess == nil {
			a.openSession(nil)
		}
		a.sess.ApplyPlan(msg.Plan)
		a.mutated(true)
		a.plan = planState{}
		a.note = fmt.Sprintf("Plan generated: %d phases, %d risks, %d starter tasks",
			len(msg.Plan.WBS), len(msg.Plan.Risks), len(msg.Plan.Tasks))
		return a, nil

	case ChatReplyMsg:
		a.busy = ""
		if msg.Err != nil {
			a.chat.pending = ""
			a.note = generatorErrorNote(msg.Err)
			return a, nil
		}
		a.chat.history = append(a.chat.history,
			model.ChatMessage{Role: "user", Content: a.chat.pending},
			model.ChatMessage{Role: "model", Content: msg.Reply})
		a.chat.pending = ""
		a.chat.scroll = 0
		return a, nil

	case spinner.TickMsg:
		if a.busy != "" {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == components.TabAssistant && a.chat.input.Focused() {
		var cmd tea.Cmd
		a.chat.input, cmd = a.chat.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.prompt.active() {
		return a.updatePrompt(msg)
	}
	if a.activeTab == components.TabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == components.TabAssistant && a.chat.input.Focused() {
		return a.updateChatInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	a.note = ""

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
			if idx == components.TabAssistant {
				cmd := a.chat.input.Focus()
				return a, cmd
			}
			return a, nil
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "ctrl+s":
		return a, a.saveNowCmd()
	}

	switch a.activeTab {
	case components.TabDashboard:
		return a.updateDashboard(key)
	case components.TabBoard:
		return a.updateBoard(key)
	case components.TabCalendar:
		return a.updateCalendar(key)
	case components.TabBudget:
		return a.updateBudget(key)
	case components.TabPlan:
		return a.updatePlan(key)
	case components.TabAssistant:
		return a.updateChat(key)
	case components.TabSettings:
		return a.updateSettings(key)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.activeTab == components.TabAssistant {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.chat.scroll++
		case tea.MouseButtonWheelDown:
			a.chat.scroll = max(0, a.chat.scroll-1)
		}
	}
	if a.prompt.active() || a.activeTab == components.TabAssistant {
		if msg.Button != tea.MouseButtonLeft {
			return a, nil
		}
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return a.updateKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	case tea.MouseButtonWheelDown:
		return a.updateKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.cfg = ApplySetup(a.cfg, a.setupVals)
		theme.SetActive(a.cfg.Appearance.Theme)
		if err := config.SaveTo(a.cfgPath, a.cfg); err != nil {
			a.note = "Could not save config: " + err.Error()
		} else {
			a.note = "Saved " + a.cfgPath
		}
		a.needSetup = false
		a.setupForm = nil
		if owner := config.GetOwner(a.cfg); owner != a.owner {
			a.owner = owner
			return a, loadProjectsCmd(a.st, a.owner)
		}
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

// requireProject reports whether a project is open, setting a hint if not.
func (a *App) requireProject() bool {
	if a.sess != nil {
		return true
	}
	a.note = "No project open. Press 1, pick one, Enter (or n for new)."
	return false
}

// saveNowCmd snapshots the session on the calling goroutine and returns a
// command that only flushes it, so the board and ledger are never read off
// the UI goroutine.
func (a App) saveNowCmd() tea.Cmd {
	if a.sess == nil {
		return nil
	}
	sess := a.sess
	sess.Touch()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// The outcome arrives through the session's OnSave channel.
		_ = sess.Flush(ctx)
		return nil
	}
}

func generatorErrorNote(err error) string {
	switch {
	case errors.Is(err, genai.ErrOverloaded):
		return err.Error()
	case errors.Is(err, genai.ErrNoAPIKey):
		return "Set GEMINI_API_KEY or llm.api_key to use the generator"
	}
	return "Generator error: " + err.Error()
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  pmx needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"1-7", "Jump to tab"},
			{"Tab S-Tab", "Next / previous tab"},
			{"j k", "Move selection"},
		}},
		{"Project", [][2]string{
			{"Enter n x", "Open / new / delete (Dashboard)"},
			{"h l H L", "Column / move task (Board)"},
			{"[ ] t", "Month / today (Calendar)"},
			{"a e x", "Add / edit / delete"},
			{"g", "Generate plan (Plan)"},
			{"^s", "Save now"},
		}},
		{"General", [][2]string{
			{"Esc", "Cancel input"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, kb := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", kb[0])),
				descStyle.Render(kb[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	projectName := ""
	if a.sess != nil {
		projectName = a.sess.Form().Name
		if projectName == "" {
			projectName = plan.UntitledProject
		}
	}
	note := a.note
	if a.busy != "" {
		note = a.spinner.View() + " " + a.busy
	}
	statusBar := components.RenderStatusBar(w, projectName, a.saveState, note)

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if a.prompt.active() {
		contentH -= 2
	}
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case components.TabDashboard:
		content = a.renderDashboardTab(cw)
	case components.TabBoard:
		content = a.renderBoardTab(cw)
	case components.TabCalendar:
		content = a.renderCalendarTab(cw)
	case components.TabBudget:
		content = a.renderBudgetTab(cw)
	case components.TabPlan:
		content = a.renderPlanTab(cw, contentH)
	case components.TabAssistant:
		content = a.renderChatTab(cw, contentH)
	case components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	parts := []string{header, content}
	if a.prompt.active() {
		parts = append(parts, a.renderPrompt(w))
	}
	parts = append(parts, statusBar)
	output := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func loadProjectsCmd(st store.Store, owner string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		projects, err := st.List(ctx, owner)
		return ProjectsLoadedMsg{Projects: projects, Err: err}
	}
}

func openProjectCmd(st store.Store, owner, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p, err := st.Get(ctx, owner, id)
		return ProjectOpenedMsg{Project: p, Err: err}
	}
}

// deleteProjectCmd deletes a project, then reloads the list.
func deleteProjectCmd(st store.Store, owner, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := st.Delete(ctx, owner, id); err != nil {
			return ProjectsLoadedMsg{Err: fmt.Errorf("delete %s: %w", id, err)}
		}
		projects, err := st.List(ctx, owner)
		return ProjectsLoadedMsg{Projects: projects, Err: err}
	}
}

// waitForSave blocks on the autosave channel; each result re-arms it.
func waitForSave(sub chan workspace.SaveResult) tea.Cmd {
	return func() tea.Msg {
		return SaveResultMsg(<-sub)
	}
}

func generatePlanCmd(llm *genai.Client, b genai.Brief) tea.Cmd {
	return func() tea.Msg {
		if llm == nil {
			return PlanGeneratedMsg{Err: genai.ErrNoAPIKey}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		g, err := llm.GenerateCharter(ctx, b)
		return PlanGeneratedMsg{Plan: g, Err: err}
	}
}

func chatCmd(llm *genai.Client, message string, history []model.ChatMessage) tea.Cmd {
	history = append([]model.ChatMessage(nil), history...)
	return func() tea.Msg {
		if llm == nil {
			return ChatReplyMsg{Err: genai.ErrNoAPIKey}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		reply, err := llm.Chat(ctx, message, history)
		return ChatReplyMsg{Reply: reply, Err: err}
	}
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX maps a click column in the tab bar to a tab index, or -1.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		// One separator column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
