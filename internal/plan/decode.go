// Package plan turns generator output into typed project plans and supplies
// the static plans shown when nothing has been generated yet.
package plan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/theirongolddev/pmx/internal/model"
)

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
	charterTitle  = regexp.MustCompile(`(?m)^# (.*)`)
)

// StripFences removes a surrounding markdown code fence from a model reply.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Breakdown is the phases and starter tasks of a generated plan.
type Breakdown struct {
	WBS   []model.Phase `json:"wbs"`
	Tasks []model.Task  `json:"tasks"`
}

// DecodeRisks parses a risk list. Missing or null input yields an empty list.
func DecodeRisks(raw string) ([]model.Risk, error) {
	var risks []model.Risk
	s := StripFences(raw)
	if err := json.Unmarshal([]byte(s), &risks); err != nil {
		return nil, fmt.Errorf("decoding risks: %w", err)
	}
	if risks == nil {
		risks = []model.Risk{}
	}
	return risks, nil
}

// DecodeBreakdown parses the {"wbs": [...], "tasks": [...]} object. Missing
// arrays become empty. Values are not range-checked.
func DecodeBreakdown(raw string) (Breakdown, error) {
	var b Breakdown
	s := StripFences(raw)
	if err := json.Unmarshal([]byte(s), &b); err != nil {
		return Breakdown{}, fmt.Errorf("decoding breakdown: %w", err)
	}
	if b.WBS == nil {
		b.WBS = []model.Phase{}
	}
	for i := range b.WBS {
		if b.WBS[i].Items == nil {
			b.WBS[i].Items = []string{}
		}
	}
	if b.Tasks == nil {
		b.Tasks = []model.Task{}
	}
	return b, nil
}

// RisksOrFallback decodes raw, substituting the single fallback risk on failure.
func RisksOrFallback(raw string) ([]model.Risk, bool) {
	risks, err := DecodeRisks(raw)
	if err != nil {
		return FallbackRisks(), false
	}
	return risks, true
}

// BreakdownOrFallback decodes raw, substituting the fallback plan on failure.
func BreakdownOrFallback(raw string) (Breakdown, bool) {
	b, err := DecodeBreakdown(raw)
	if err != nil {
		return FallbackBreakdown(), false
	}
	return b, true
}

// TitleFromCharter returns the first "# " heading of a charter, or
// "Untitled Project".
func TitleFromCharter(charter string) string {
	if m := charterTitle.FindStringSubmatch(charter); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			return t
		}
	}
	return UntitledProject
}

// UntitledProject names a project saved with a blank name.
const UntitledProject = "Untitled Project"

// Generated is everything one charter generation produces.
type Generated struct {
	Charter string        `json:"charter"`
	Risks   []model.Risk  `json:"risks"`
	WBS     []model.Phase `json:"wbs"`
	Tasks   []model.Task  `json:"tasks"`
}
