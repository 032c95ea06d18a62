package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/pmx/internal/cli"
	"github.com/theirongolddev/pmx/internal/model"
	"github.com/theirongolddev/pmx/internal/tui/components"
	"github.com/theirongolddev/pmx/internal/tui/theme"
)

type boardState struct {
	col int // index into model.Columns
	row int
}

func (a *App) clampBoard() {
	a.board.col = min(max(a.board.col, 0), len(model.Columns)-1)
	n := len(a.sess.Board.Column(model.Columns[a.board.col]))
	a.board.row = min(a.board.row, n-1)
	a.board.row = max(a.board.row, 0)
}

// selectedTask returns the task under the cursor.
func (a App) selectedTask() (model.Task, model.ColumnID, bool) {
	col := model.Columns[a.board.col]
	tasks := a.sess.Board.Column(col)
	if a.board.row >= len(tasks) {
		return model.Task{}, col, false
	}
	return tasks[a.board.row], col, true
}

func (a App) updateBoard(key string) (tea.Model, tea.Cmd) {
	if !a.requireProject() {
		return a, nil
	}
	switch key {
	case "h", "left":
		a.board.col--
	case "l", "right":
		a.board.col++
	case "j", "down":
		a.board.row++
	case "k", "up":
		a.board.row--
	case "H", "L":
		dir := -1
		if key == "L" {
			dir = 1
		}
		if t, col, ok := a.selectedTask(); ok && a.sess.MoveTaskDir(t.ID, col, dir) {
			a.mutated(true)
			a.board.col += dir
			// Follow the task to its new column.
			for i, moved := range a.sess.Board.Column(model.Columns[min(max(a.board.col, 0), len(model.Columns)-1)]) {
				if moved.ID == t.ID {
					a.board.row = i
				}
			}
		}
	case "a":
		cmd := a.startPrompt(promptTask, "New task (to do)", "Order switch hardware @lee@example.com", "", "")
		return a, cmd
	case "x", "delete":
		if t, col, ok := a.selectedTask(); ok {
			a.mutated(a.sess.RemoveTask(t.ID, col))
		}
	}
	a.clampBoard()
	return a, nil
}

func (a App) renderBoardTab(cw int) string {
	t := theme.Active
	if a.sess == nil {
		return noProjectView(cw)
	}

	widths := components.LayoutRow(cw, len(model.Columns))
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	ownerStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Italic(true)

	cards := make([]string, len(model.Columns))
	for ci, col := range model.Columns {
		inner := components.CardInnerWidth(widths[ci])
		tasks := a.sess.Board.Column(col)

		var b strings.Builder
		if len(tasks) == 0 {
			b.WriteString(emptyStyle.Render("empty"))
		}
		for ri, task := range tasks {
			if ri > 0 {
				b.WriteString("\n")
			}
			style := rowStyle
			if ci == a.board.col && ri == a.board.row {
				style = selStyle
			}
			b.WriteString(style.Render(fmt.Sprintf("%-*s", inner, cli.Truncate(task.Title, inner))))
			if task.OwnerEmail != "" {
				b.WriteString("\n")
				b.WriteString(ownerStyle.Render(cli.Truncate("  @"+task.OwnerEmail, inner)))
			}
		}
		cards[ci] = components.ContentCard(fmt.Sprintf("%s (%d)", col.Label(), len(tasks)), b.String(), widths[ci])
	}

	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background).
		Render("h/l column · j/k task · H/L move · a add · x delete")
	return components.CardRow(cards) + "\n" + hint
}

func noProjectView(cw int) string {
	t := theme.Active
	msg := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
		Render("No project open.\n\nPress 1 for the dashboard, then Enter to open a project or n to create one.")
	return components.ContentCard("", msg, cw)
}
