package discovery

import (
	"jet/internal/domain"
	"jet/internal/naming"
)

// Extract selects the test routines of units, grouped by unit in the given order
// and in declaration order within a unit.
func Extract(units []*domain.Unit) []domain.TestCase {
	var cases []domain.TestCase
	for _, unit := range units {
		ref := unit.Ref()
		for _, m := range unit.Members {
			if !naming.IsTest(m.Name) {
				continue
			}

			name := naming.TestName(m.Name)
			doc := m.Doc
			if doc == "" {
				doc = name
			}
			cases = append(cases, domain.NewTestCase(name, m.Name, doc, m.Line, ref, m.Handle, unit.Host))
		}
	}
	return cases
}
