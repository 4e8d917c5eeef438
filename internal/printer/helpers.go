package printer

import (
	"fmt"
	"strconv"
	"sync"

	"downlevel/internal/ast"
	"downlevel/internal/emitnode"
	"downlevel/internal/helpers"
)

// HelperMode selects how global helpers reach the output.
type HelperMode uint8

const (
	// HelpersInline writes helper definitions at the top of the output.
	HelpersInline HelperMode = iota
	// HelpersNone omits definitions; the runtime is expected to provide them.
	HelpersNone
)

func (m HelperMode) String() string {
	if m == HelpersNone {
		return "none"
	}
	return "inline"
}

// ParseHelperMode accepts "inline" and "none". The empty string means inline.
func ParseHelperMode(s string) (HelperMode, error) {
	switch s {
	case "", "inline":
		return HelpersInline, nil
	case "none":
		return HelpersNone, nil
	}
	return HelpersInline, fmt.Errorf("unknown helper mode %q (want inline or none)", s)
}

// HelperTracker remembers which global helpers were already written into a
// compilation unit. Outputs that are concatenated share one tracker so each
// helper is defined once. It is safe for concurrent use.
type HelperTracker struct {
	mu      sync.Mutex
	emitted *helpers.Set
}

func NewHelperTracker() *HelperTracker {
	return &HelperTracker{emitted: helpers.NewSet()}
}

// Claim reports whether id has not been emitted yet and marks it emitted.
func (t *HelperTracker) Claim(id helpers.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.emitted.Add(id)
}

func (t *HelperTracker) Emitted(id helpers.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.emitted.Has(id)
}

// IDs returns the emitted helpers in emission order.
func (t *HelperTracker) IDs() []helpers.ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]helpers.ID, t.emitted.Len())
	copy(out, t.emitted.IDs())
	return out
}

// CollectHelpers gathers the global helpers attached to the file node and
// to every node below stmts, closes the set over dependencies and returns
// it in emission order. A dependency is always registered before the
// helpers that need it.
func CollectHelpers(b *ast.Builder, table *emitnode.Table, file ast.FileID, stmts []ast.StmtID) []helpers.ID {
	set := helpers.NewSet()
	var add func(id helpers.ID)
	add = func(id helpers.ID) {
		d := helpers.Lookup(id)
		if d == nil || d.Scope != helpers.Global || set.Has(id) {
			return
		}
		for _, dep := range d.Deps {
			add(dep)
		}
		set.Add(id)
	}
	addAll := func(ids []helpers.ID) {
		for _, id := range ids {
			add(id)
		}
	}
	addAll(table.Helpers(ast.FileNode(file)))
	for _, st := range stmts {
		b.Walk(ast.StmtNode(st), func(n ast.Node) bool {
			addAll(table.Helpers(n))
			return true
		})
	}
	return set.Sorted()
}

// uniqueNamer hands out file-unique spellings for placeholder names and
// FileLevelUniqueName identifiers. The same base always maps to the same
// spelling within one file.
type uniqueNamer struct {
	used     map[string]struct{}
	assigned map[string]string
}

func newUniqueNamer(used map[string]struct{}) *uniqueNamer {
	if used == nil {
		used = make(map[string]struct{})
	}
	return &uniqueNamer{used: used, assigned: make(map[string]string)}
}

func (u *uniqueNamer) name(base string) string {
	if s, ok := u.assigned[base]; ok {
		return s
	}
	s := base
	for i := 1; ; i++ {
		if _, taken := u.used[s]; !taken {
			break
		}
		s = base + "_" + strconv.Itoa(i)
	}
	u.used[s] = struct{}{}
	u.assigned[base] = s
	return s
}
