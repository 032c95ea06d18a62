// Package export writes and reads whole projects as YAML documents.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/theirongolddev/pmx/internal/model"
	"gopkg.in/yaml.v3"
)

// Version is the document format version written by Write.
const Version = 1

// Document is the on-disk shape.
type Document struct {
	Version    int           `yaml:"version"`
	ExportedAt time.Time     `yaml:"exported_at"`
	Project    model.Project `yaml:"project"`
}

// Write encodes p as a YAML document.
func Write(w io.Writer, p model.Project, now time.Time) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	doc := Document{Version: Version, ExportedAt: now.UTC(), Project: p}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	return enc.Close()
}

// Read decodes a document and returns its project fields with the board
// normalized so each task id appears in one column only.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, errors.New("empty document")
		}
		return doc, fmt.Errorf("decoding project: %w", err)
	}
	if doc.Version == 0 || doc.Version > Version {
		return doc, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	doc.Project.Kanban = dedupeBoard(doc.Project.Kanban)
	doc.Project.ProjectFields = doc.Project.ProjectFields.Clone()
	return doc, nil
}

// dedupeBoard keeps the first occurrence of each task id, scanning columns
// left to right.
func dedupeBoard(b model.Board) model.Board {
	seen := make(map[model.TaskID]bool)
	var out model.Board
	for _, c := range model.Columns {
		dst := out.Column(c)
		for _, t := range *b.Column(c) {
			if t.ID != "" && seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			*dst = append(*dst, t)
		}
	}
	return out
}
