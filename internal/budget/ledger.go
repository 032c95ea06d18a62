// Package budget holds planned/actual line items and derives totals from them.
// Derived values are recomputed on every read.
package budget

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/theirongolddev/pmx/internal/ident"
	"github.com/theirongolddev/pmx/internal/model"
)

// Categories in display order.
var Categories = []string{
	"Labor", "Materials", "Equipment", "Software", "Consulting",
	"Travel", "Training", "Contingency", "Other",
}

// Item status tags.
const (
	StatusOver     = "Over"
	StatusOnBudget = "On Budget"
	StatusUnder    = "Under"
)

// Ledger owns the item list.
type Ledger struct {
	items []model.BudgetItem
	ids   *ident.Generator
}

// CategoryTotal is one row of the per-category breakdown.
type CategoryTotal struct {
	Category string
	Planned  float64
	Actual   float64
	Count    int
}

// New returns a Ledger seeded with a copy of items.
func New(items []model.BudgetItem, ids *ident.Generator) *Ledger {
	if ids == nil {
		ids = ident.New(nil)
	}
	return &Ledger{items: slices.Clone(items), ids: ids}
}

// Snapshot returns a copy of the items in insertion order.
func (l *Ledger) Snapshot() []model.BudgetItem {
	out := make([]model.BudgetItem, len(l.items))
	copy(out, l.items)
	return out
}

// Reset replaces every item.
func (l *Ledger) Reset(items []model.BudgetItem) {
	l.items = slices.Clone(items)
}

// NormalizeCategory maps unknown names to Other. Matching ignores case.
func NormalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	for _, known := range Categories {
		if strings.EqualFold(known, c) {
			return known
		}
	}
	return "Other"
}

// ParseAmount reads a user-typed amount such as "1,250.50". Anything that
// does not parse, or is negative or not finite, is 0.
func ParseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampAmount(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// AddItem appends a line. An empty description after trimming is rejected.
func (l *Ledger) AddItem(category, description string, planned, actual float64) (model.BudgetItem, bool) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.BudgetItem{}, false
	}
	it := model.BudgetItem{
		ID:          l.ids.Next("bud"),
		Category:    NormalizeCategory(category),
		Description: description,
		Planned:     clampAmount(planned),
		Actual:      clampAmount(actual),
	}
	l.items = append(l.items, it)
	return it, true
}

// UpdateItem replaces the fields of the item with the same id. An unknown id
// or an empty description is a no-op.
func (l *Ledger) UpdateItem(it model.BudgetItem) bool {
	i := l.index(it.ID)
	it.Description = strings.TrimSpace(it.Description)
	if i < 0 || it.Description == "" {
		return false
	}
	it.Category = NormalizeCategory(it.Category)
	it.Planned = clampAmount(it.Planned)
	it.Actual = clampAmount(it.Actual)
	if l.items[i] == it {
		return false
	}
	l.items = slices.Clone(l.items)
	l.items[i] = it
	return true
}

// DeleteItem removes the item with id if present.
func (l *Ledger) DeleteItem(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(slices.Clone(l.items), i, i+1)
	return true
}

// Item returns the item with id.
func (l *Ledger) Item(id string) (model.BudgetItem, bool) {
	i := l.index(id)
	if i < 0 {
		return model.BudgetItem{}, false
	}
	return l.items[i], true
}

func (l *Ledger) index(id string) int {
	return slices.IndexFunc(l.items, func(it model.BudgetItem) bool { return it.ID == id })
}

// TotalPlanned sums planned amounts.
func (l *Ledger) TotalPlanned() float64 {
	var sum float64
	for _, it := range l.items {
		sum += it.Planned
	}
	return sum
}

// TotalActual sums actual amounts.
func (l *Ledger) TotalActual() float64 {
	var sum float64
	for _, it := range l.items {
		sum += it.Actual
	}
	return sum
}

// Remaining is totalBudget minus actual spend. totalBudget is not owned here.
func (l *Ledger) Remaining(totalBudget float64) float64 {
	return totalBudget - l.TotalActual()
}

// Variance is planned minus actual.
func (l *Ledger) Variance() float64 {
	return l.TotalPlanned() - l.TotalActual()
}

// ByCategory groups items by category in the fixed category order. Categories
// with no items are omitted.
func (l *Ledger) ByCategory() []CategoryTotal {
	sums := make(map[string]*CategoryTotal)
	for _, it := range l.items {
		ct, ok := sums[it.Category]
		if !ok {
			ct = &CategoryTotal{Category: it.Category}
			sums[it.Category] = ct
		}
		ct.Planned += it.Planned
		ct.Actual += it.Actual
		ct.Count++
	}
	var out []CategoryTotal
	for _, c := range Categories {
		if ct, ok := sums[c]; ok {
			out = append(out, *ct)
			delete(sums, c)
		}
	}
	// Items loaded from elsewhere may carry a category outside the fixed set.
	var extra []string
	for c := range sums {
		extra = append(extra, c)
	}
	slices.Sort(extra)
	for _, c := range extra {
		out = append(out, *sums[c])
	}
	return out
}

// PercentOfBudget is round(part/total*100) clamped to 100, and 0 when total is 0.
func PercentOfBudget(part, total float64) int {
	if total == 0 || math.IsNaN(total) {
		return 0
	}
	pct := math.Round(part / total * 100)
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// Status tags an item by planned minus actual.
func Status(it model.BudgetItem) string {
	diff := it.Planned - it.Actual
	switch {
	case diff < 0:
		return StatusOver
	case diff == 0:
		return StatusOnBudget
	default:
		return StatusUnder
	}
}
