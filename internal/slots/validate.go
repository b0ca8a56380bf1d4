package slots

import "errors"

// ErrEmptyGroup marks a requirement group declared with no alternatives.
// This is a programming error in a skill declaration, never user input.
var ErrEmptyGroup = errors.New("requirement group has no alternatives")

// Group is one requirement: it is satisfied when any one of its alternative
// fields is present in the body.
type Group struct {
	// Prompt is the question the assistant asks when the group is unsatisfied.
	Prompt string `json:"prompt"`
	AnyOf  []Field `json:"any_of"`
}

// Satisfied reports whether any alternative is present in the body.
func (g Group) Satisfied(b Body) bool {
	for _, f := range g.AnyOf {
		if b.Has(f) {
			return true
		}
	}
	return false
}

// Declaration is a skill's ordered list of requirement groups.
type Declaration struct {
	Groups []Group
}

// FindMissing returns the first unsatisfied group in declared order, or nil
// when the body satisfies every group. Only one group is surfaced per call so
// the user is asked about a single concern per turn.
func FindMissing(d Declaration, b Body) (*Group, error) {
	for i := range d.Groups {
		g := d.Groups[i]
		if len(g.AnyOf) == 0 {
			return nil, ErrEmptyGroup
		}
		if !g.Satisfied(b) {
			return &g, nil
		}
	}
	return nil, nil
}
