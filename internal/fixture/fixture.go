// Package fixture loads canned risk table snapshots served by the responder.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/aigoflow/risk-reporter/internal/models"
)

// Row is one snapshot row of a projection
type Row struct {
	Conditions []models.RiskCondition `json:"conditions"`
	Limits     []models.RiskLimit     `json:"limits"`
}

// Table maps projection names to their rows
type Table struct {
	Projections map[string][]Row `json:"projections"`
}

func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if t.Projections == nil {
		t.Projections = make(map[string][]Row)
	}
	return &t, nil
}

// Rows returns the rows of projection and whether it exists.
func (t *Table) Rows(projection string) ([]Row, bool) {
	rows, ok := t.Projections[projection]
	return rows, ok
}

func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Projections))
	for name := range t.Projections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
