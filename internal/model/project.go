package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Color tags an event may carry.
const (
	ColorAccent = "accent"
	ColorBlue   = "blue"
	ColorYellow = "yellow"
	ColorRed    = "red"
)

// ColorTags lists the accepted event colors.
var ColorTags = []string{ColorAccent, ColorBlue, ColorYellow, ColorRed}

// CalendarEvent is a single dated entry. Date is a YYYY-MM-DD key.
type CalendarEvent struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Date      string `json:"date" yaml:"date"`
	StartTime string `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	EndTime   string `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	Color     string `json:"color" yaml:"color"`
}

// BudgetItem is one planned/actual line in the ledger.
type BudgetItem struct {
	ID          string  `json:"id" yaml:"id"`
	Category    string  `json:"category" yaml:"category"`
	Description string  `json:"description" yaml:"description"`
	Planned     float64 `json:"planned" yaml:"planned"`
	Actual      float64 `json:"actual" yaml:"actual"`
}

// Weeks is a week count or offset. It decodes from a JSON number or a numeric
// string; anything else decodes to 0.
type Weeks int

// UnmarshalJSON is lenient about the shape generated and form payloads use.
func (w *Weeks) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var f float64
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*w = 0
			return nil
		}
		f = v
	} else if err := json.Unmarshal(data, &f); err != nil {
		*w = 0
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		f = 0
	}
	*w = Weeks(int(f))
	return nil
}

// Phase is a work-breakdown phase rendered as a timeline bar.
type Phase struct {
	ID            ID       `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	StartWeek     Weeks    `json:"startWeek" yaml:"start_week"`
	DurationWeeks Weeks    `json:"durationWeeks" yaml:"duration_weeks"`
	Items         []string `json:"items" yaml:"items"`
}

// Risk is one register entry. Impact and probability are Low, Medium or High.
type Risk struct {
	ID          ID     `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	Impact      string `json:"impact" yaml:"impact"`
	Probability string `json:"probability" yaml:"probability"`
	Response    string `json:"response" yaml:"response"`
	Owner       string `json:"owner" yaml:"owner"`
}

// Project types offered by the setup form.
var ProjectTypes = []string{"IT", "Infrastructure", "Construction", "Other"}

// ProjectFields is the saved blob. Budget keeps the text as typed, e.g. "150,000".
type ProjectFields struct {
	Name        string          `json:"project_name" yaml:"name"`
	Budget      string          `json:"budget" yaml:"budget"`
	Duration    Weeks           `json:"duration" yaml:"duration"`
	Type        string          `json:"project_type" yaml:"type"`
	Objective   string          `json:"objective" yaml:"objective"`
	Constraints string          `json:"constraints" yaml:"constraints"`
	Charter     string          `json:"charter" yaml:"charter"`
	WBS         []Phase         `json:"wbs" yaml:"wbs"`
	Risks       []Risk          `json:"risks" yaml:"risks"`
	Kanban      Board           `json:"kanban" yaml:"kanban"`
	Schedule    []CalendarEvent `json:"schedule" yaml:"schedule"`
	BudgetItems []BudgetItem    `json:"budget_items" yaml:"budget_items"`
	// WBSAdded lists the breakdown items already sent to the board.
	WBSAdded []string `json:"wbs_added" yaml:"wbs_added,omitempty"`
}

// Clone returns a deep copy so a snapshot handed to a save cannot alias
// the live session.
func (f ProjectFields) Clone() ProjectFields {
	out := f
	out.WBS = make([]Phase, len(f.WBS))
	for i, p := range f.WBS {
		p.Items = append([]string(nil), p.Items...)
		out.WBS[i] = p
	}
	out.Risks = append([]Risk{}, f.Risks...)
	out.Kanban = f.Kanban.Clone()
	out.Schedule = append([]CalendarEvent{}, f.Schedule...)
	out.BudgetItems = append([]BudgetItem{}, f.BudgetItems...)
	if f.WBSAdded != nil {
		out.WBSAdded = append([]string{}, f.WBSAdded...)
	}
	return out
}

// Project is a persisted record.
type Project struct {
	ID            string `json:"id" yaml:"id"`
	Owner         string `json:"user_id" yaml:"owner"`
	ProjectFields `yaml:",inline"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// Note is the per-owner scratchpad.
type Note struct {
	Owner     string    `json:"user_id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is one assistant conversation turn. Role is "user" or "model".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
