// Package ident generates ids for board tasks, events, and ledger items.
package ident

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/theirongolddev/pmx/internal/clock"
)

// Generator produces ids of the form "<prefix>-<unix ms>-<suffix>". The suffix
// is taken from a random UUID so two ids minted in the same millisecond differ.
type Generator struct {
	clock clock.Clock
	rand  func() string
}

// New returns a Generator reading time from c. A nil clock means the system clock.
func New(c clock.Clock) *Generator {
	if c == nil {
		c = clock.System{}
	}
	return &Generator{clock: c, rand: randomSuffix}
}

// Next returns a fresh id with the given prefix.
func (g *Generator) Next(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, g.clock.Now().UnixMilli(), g.rand())
}

func randomSuffix() string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	return s[:9]
}

// ProjectID returns a time-ordered UUIDv7 string for a new project record.
func ProjectID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating project id: %w", err)
	}
	return id.String(), nil
}
