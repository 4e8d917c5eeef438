package helpers

import (
	"slices"
)

// Compare orders helpers by ascending priority. Helpers without a priority
// sort after all others; equal priorities compare equal.
func Compare(a, b ID) int {
	da, db := MustLookup(a), MustLookup(b)
	switch {
	case da.Priority == db.Priority:
		return 0
	case !da.HasPriority():
		return 1
	case !db.HasPriority():
		return -1
	case da.Priority < db.Priority:
		return -1
	default:
		return 1
	}
}

// Sort orders ids for emission. The sort is stable, so equal priorities keep
// their registration order.
func Sort(ids []ID) {
	slices.SortStableFunc(ids, Compare)
}

// MissingDependencies returns the dependencies of ids that are not in ids
// themselves, in first-seen order.
func MissingDependencies(ids []ID) []ID {
	var missing []ID
	for _, id := range ids {
		for _, dep := range MustLookup(id).Deps {
			if !slices.Contains(ids, dep) && !slices.Contains(missing, dep) {
				missing = append(missing, dep)
			}
		}
	}
	return missing
}

// Set is an insertion-ordered set of helper ids.
type Set struct {
	ids  []ID
	seen [numIDs]bool
}

func NewSet(ids ...ID) *Set {
	s := &Set{}
	s.AddAll(ids)
	return s
}

// Add reports whether id was newly inserted.
func (s *Set) Add(id ID) bool {
	if !id.IsValid() || s.seen[id] {
		return false
	}
	s.seen[id] = true
	s.ids = append(s.ids, id)
	return true
}

func (s *Set) AddAll(ids []ID) {
	for _, id := range ids {
		s.Add(id)
	}
}

func (s *Set) Remove(id ID) bool {
	if !id.IsValid() || !s.seen[id] {
		return false
	}
	s.seen[id] = false
	s.ids = slices.DeleteFunc(s.ids, func(x ID) bool { return x == id })
	return true
}

func (s *Set) Has(id ID) bool {
	return id.IsValid() && s.seen[id]
}

func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns ids in registration order. The slice must not be modified.
func (s *Set) IDs() []ID {
	return s.ids
}

// Sorted returns a copy in emission order.
func (s *Set) Sorted() []ID {
	out := slices.Clone(s.ids)
	Sort(out)
	return out
}
