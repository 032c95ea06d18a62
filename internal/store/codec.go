package store

import (
	"encoding/json"
	"fmt"

	"github.com/theirongolddev/pmx/internal/model"
)

// blobs holds the JSON-encoded sub-fields of a record.
type blobs struct {
	WBS         []byte
	Risks       []byte
	Kanban      []byte
	Schedule    []byte
	BudgetItems []byte
	WBSAdded    []byte
}

func encodeBlobs(f model.ProjectFields) (blobs, error) {
	var b blobs
	var err error
	if b.WBS, err = marshalList(f.WBS); err != nil {
		return b, fmt.Errorf("encoding wbs: %w", err)
	}
	if b.Risks, err = marshalList(f.Risks); err != nil {
		return b, fmt.Errorf("encoding risks: %w", err)
	}
	if b.Kanban, err = json.Marshal(f.Kanban.Clone()); err != nil {
		return b, fmt.Errorf("encoding kanban: %w", err)
	}
	if b.Schedule, err = marshalList(f.Schedule); err != nil {
		return b, fmt.Errorf("encoding schedule: %w", err)
	}
	if b.BudgetItems, err = marshalList(f.BudgetItems); err != nil {
		return b, fmt.Errorf("encoding budget_items: %w", err)
	}
	if b.WBSAdded, err = marshalList(f.WBSAdded); err != nil {
		return b, fmt.Errorf("encoding wbs_added: %w", err)
	}
	return b, nil
}

// marshalList encodes nil as [] so readers never see null.
func marshalList[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	return json.Marshal(v)
}

// decodeBlobs fills f from stored JSON. A column that fails to decode is
// left empty rather than failing the whole record.
func decodeBlobs(b blobs, f *model.ProjectFields) {
	f.WBS = decodeList[model.Phase](b.WBS)
	f.Risks = decodeList[model.Risk](b.Risks)
	f.Schedule = decodeList[model.CalendarEvent](b.Schedule)
	f.BudgetItems = decodeList[model.BudgetItem](b.BudgetItems)
	f.WBSAdded = decodeList[string](b.WBSAdded)
	var k model.Board
	if len(b.Kanban) > 0 {
		_ = json.Unmarshal(b.Kanban, &k)
	}
	f.Kanban = k.Clone()
}

func decodeList[T any](data []byte) []T {
	var out []T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			out = nil
		}
	}
	if out == nil {
		out = []T{}
	}
	return out
}
