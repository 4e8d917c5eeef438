package emitnode

import (
	"slices"

	"downlevel/internal/ast"
	"downlevel/internal/helpers"
)

// AddHelper records a helper request on n. Duplicates are ignored.
func (t *Table) AddHelper(n ast.Node, id helpers.ID) {
	m := t.GetOrCreate(n)
	if !slices.Contains(m.Helpers, id) {
		m.Helpers = append(m.Helpers, id)
	}
}

func (t *Table) AddHelpers(n ast.Node, ids []helpers.ID) {
	if len(ids) == 0 {
		return
	}
	m := t.GetOrCreate(n)
	for _, id := range ids {
		if !slices.Contains(m.Helpers, id) {
			m.Helpers = append(m.Helpers, id)
		}
	}
}

// RemoveHelper deletes the first occurrence of id, keeping the order of the rest.
func (t *Table) RemoveHelper(n ast.Node, id helpers.ID) bool {
	m := t.metas[n]
	if m == nil {
		return false
	}
	i := slices.Index(m.Helpers, id)
	if i < 0 {
		return false
	}
	m.Helpers = slices.Delete(m.Helpers, i, i+1)
	return true
}

func (t *Table) Helpers(n ast.Node) []helpers.ID {
	if m := t.metas[n]; m != nil {
		return m.Helpers
	}
	return nil
}

// MoveHelpers relocates helpers matching keep from src to dst. src is
// compacted in place.
func (t *Table) MoveHelpers(src, dst ast.Node, keep func(helpers.ID) bool) {
	m := t.metas[src]
	if m == nil || len(m.Helpers) == 0 {
		return
	}
	var moved []helpers.ID
	w := 0
	for _, id := range m.Helpers {
		if keep(id) {
			moved = append(moved, id)
			continue
		}
		m.Helpers[w] = id
		w++
	}
	if len(moved) == 0 {
		return
	}
	clear(m.Helpers[w:])
	m.Helpers = m.Helpers[:w]
	t.AddHelpers(dst, moved)
}
