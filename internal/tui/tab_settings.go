package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/cli"
	"github.com/theirongolddev/pmx/internal/config"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/tui/components"
	"github.com/theirongolddev/pmx/internal/tui/theme"
	"github.com/theirongolddev/pmx/internal/workspace"
)

// Project fields come first, then preferences stored in the config file.
const (
	settingsFieldName = iota
	settingsFieldBudget
	settingsFieldDuration
	settingsFieldType
	settingsFieldObjective
	settingsFieldConstraints
	settingsFieldTheme
	settingsFieldAPIKey
	settingsFieldAutosave
	settingsFieldCount // sentinel
)

func isProjectField(i int) bool { return i < settingsFieldTheme }

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" after a config write
	saveErr error // non-nil if last config write failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 1000
	ti.Width = 60
	return ti
}

func (a App) updateSettings(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter", "e":
		return a.settingsStartEdit()
	}
	return a, nil
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	if isProjectField(a.settings.cursor) && !a.requireProject() {
		return a, nil
	}
	a.settings.saved = false

	switch a.settings.cursor {
	case settingsFieldType:
		// Cycles through the fixed project types.
		f := a.sess.Form()
		f.Type = nextProjectType(f.Type)
		a.mutated(a.sess.SetForm(f))
		return a, nil
	case settingsFieldTheme:
		a.cfg.Appearance.Theme = theme.Next(a.cfg.Appearance.Theme)
		theme.SetActive(a.cfg.Appearance.Theme)
		a.settingsSaveConfig()
		return a, nil
	}

	ti := newSettingsInput()
	ti.Width = max(20, components.CardInnerWidth(a.contentWidth())-22)
	switch a.settings.cursor {
	case settingsFieldName:
		ti.Placeholder = "Project name"
		ti.SetValue(a.sess.Form().Name)
	case settingsFieldBudget:
		ti.Placeholder = "150,000"
		ti.SetValue(a.sess.Form().Budget)
	case settingsFieldDuration:
		ti.Placeholder = "12 (weeks)"
		if d := a.sess.Form().Duration; d > 0 {
			ti.SetValue(strconv.Itoa(int(d)))
		}
	case settingsFieldObjective:
		ti.Placeholder = "What the project must achieve"
		ti.SetValue(a.sess.Form().Objective)
	case settingsFieldConstraints:
		ti.Placeholder = "Deadlines, budget caps, regulatory limits"
		ti.SetValue(a.sess.Form().Constraints)
	case settingsFieldAPIKey:
		ti.Placeholder = "Gemini API key"
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
		ti.SetValue(a.cfg.LLM.APIKey)
	case settingsFieldAutosave:
		ti.Placeholder = "1500 (milliseconds)"
		ti.SetValue(strconv.Itoa(int(config.AutosaveDelay(a.cfg).Milliseconds())))
	}

	a.settings.editing = true
	a.settings.input = ti
	cmd := a.settings.input.Focus()
	return a, cmd
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a *App) settingsSave() {
	val := strings.TrimSpace(a.settings.input.Value())

	if isProjectField(a.settings.cursor) {
		if a.sess == nil {
			return
		}
		f := a.sess.Form()
		switch a.settings.cursor {
		case settingsFieldName:
			f.Name = val
		case settingsFieldBudget:
			f.Budget = val
		case settingsFieldDuration:
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				n = 0
			}
			f.Duration = model.Weeks(n)
		case settingsFieldObjective:
			f.Objective = val
		case settingsFieldConstraints:
			f.Constraints = val
		}
		a.mutated(a.sess.SetForm(f))
		return
	}

	switch a.settings.cursor {
	case settingsFieldAPIKey:
		a.cfg.LLM.APIKey = val
		a.note = "API key saved; restart pmx tui to use it"
	case settingsFieldAutosave:
		if ms, err := strconv.Atoi(val); err == nil && ms > 0 {
			a.cfg.General.AutosaveDelayMS = ms
		}
	}
	a.settingsSaveConfig()
}

func (a *App) settingsSaveConfig() {
	a.settings.saveErr = config.SaveTo(a.cfgPath, a.cfg)
	a.settings.saved = a.settings.saveErr == nil
}

func nextProjectType(cur string) string {
	for i, pt := range model.ProjectTypes {
		if pt == cur {
			return model.ProjectTypes[(i+1)%len(model.ProjectTypes)]
		}
	}
	return model.ProjectTypes[0]
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) > 12:
		return key[:6] + "..." + key[len(key)-4:]
	default:
		return "****"
	}
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover)
	innerW := components.CardInnerWidth(cw)

	var form workspace.Form
	if a.sess != nil {
		form = a.sess.Form()
	}
	none := "(no project open)"
	projectValue := func(v string) string {
		if a.sess == nil {
			return none
		}
		return orDash(v)
	}
	duration := ""
	if form.Duration > 0 {
		duration = cli.FormatWeeks(int(form.Duration))
	}

	type field struct {
		label string
		value string
	}
	fields := []field{
		{"Project name", projectValue(form.Name)},
		{"Budget", projectValue(form.Budget)},
		{"Duration", projectValue(duration)},
		{"Type", projectValue(form.Type)},
		{"Objective", projectValue(form.Objective)},
		{"Constraints", projectValue(form.Constraints)},
		{"Theme", a.cfg.Appearance.Theme},
		{"Gemini API key", maskKey(config.GetAPIKey(a.cfg))},
		{"Autosave delay", fmt.Sprintf("%dms", config.AutosaveDelay(a.cfg).Milliseconds())},
	}

	render := func(from, to int) string {
		var body strings.Builder
		for i := from; i < to; i++ {
			f := fields[i]
			if a.settings.editing && i == a.settings.cursor {
				body.WriteString(markerStyle.Render("▸ "))
				body.WriteString(accentStyle.Render(fmt.Sprintf("%-16s ", f.label)))
				body.WriteString(a.settings.input.View())
				body.WriteString("\n")
				continue
			}
			value := cli.Truncate(f.value, max(10, innerW-20))
			if i == a.settings.cursor {
				marker := markerStyle.Render("▸ ")
				label := selectedLabelStyle.Render(fmt.Sprintf("%-16s ", f.label+":"))
				v := selectedStyle.Render(value)
				body.WriteString(marker + label + v)
				if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(v); pad > 0 {
					body.WriteString(lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", pad)))
				}
			} else {
				body.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
				body.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", f.label+":")))
				body.WriteString(valueStyle.Render(value))
			}
			body.WriteString("\n")
		}
		return strings.TrimSuffix(body.String(), "\n")
	}

	prefs := render(settingsFieldTheme, settingsFieldCount)
	if a.settings.saveErr != nil {
		prefs += "\n\n" + lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render("Save failed: "+a.settings.saveErr.Error())
	} else if a.settings.saved {
		prefs += "\n\n" + greenStyle.Render("Saved to "+a.cfgPath)
	}

	var info strings.Builder
	info.WriteString(labelStyle.Render("Owner:        ") + valueStyle.Render(a.owner) + "\n")
	info.WriteString(labelStyle.Render("Store:        ") + valueStyle.Render(a.cfg.Store.Driver) + "\n")
	modelName := "(assistant disabled)"
	if a.llm != nil {
		modelName = a.llm.Model()
	}
	info.WriteString(labelStyle.Render("Model:        ") + valueStyle.Render(modelName) + "\n")
	info.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(a.cfgPath))

	var b strings.Builder
	b.WriteString(components.ContentCard("Project", render(settingsFieldName, settingsFieldTheme), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Preferences", prefs, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("About", info.String(), cw))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).
		Render("j/k navigate · Enter edit (cycles Type and Theme) · Esc cancel"))
	return b.String()
}
