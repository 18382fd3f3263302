// Package graph builds the dependency and control-flow graphs of a source unit.
package graph

// Edge is a directed edge between two named nodes.
type Edge struct {
	From string
	To   string
}

// orderedSet is an insertion-ordered set of names.
type orderedSet struct {
	items []string
	index map[string]bool
}

func newOrderedSet() orderedSet {
	return orderedSet{index: make(map[string]bool)}
}

// add reports whether name was newly inserted.
func (s *orderedSet) add(name string) bool {
	if s.index[name] {
		return false
	}
	s.index[name] = true
	s.items = append(s.items, name)
	return true
}

func (s *orderedSet) has(name string) bool {
	return s.index[name]
}

func (s *orderedSet) list() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

func (s *orderedSet) len() int {
	return len(s.items)
}
