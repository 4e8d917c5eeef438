package helpers

import (
	"fmt"
	"strings"
)

// Scope tells the printer how to place a helper.
type Scope uint8

const (
	// Global helpers are emitted once per compilation unit at the top of the output.
	Global Scope = iota
	// Scoped helpers are emitted inside the function that requested them, every time.
	Scoped
)

func (s Scope) String() string {
	if s == Scoped {
		return "scoped"
	}
	return "global"
}

// NoPriority sorts after every defined priority.
const NoPriority = -1

// Descriptor is the immutable catalog entry of a helper.
type Descriptor struct {
	ID ID
	// Name is the stable catalog name, e.g. "downlevel:assign".
	Name string
	// ImportName is the binding the helper declares. Empty for scoped helpers.
	ImportName string
	// Text is the helper source. ${name} marks a placeholder replaced by a
	// file-unique name at emission.
	Text        string
	UniqueNames []string
	Scope       Scope
	Priority    int
	Deps        []ID
}

func (d *Descriptor) HasPriority() bool {
	return d.Priority != NoPriority
}

// Render substitutes placeholders with uniqueName and returns the helper source.
// A nil uniqueName keeps placeholder names as written.
func (d *Descriptor) Render(uniqueName func(string) string) (string, error) {
	text := d.Text
	var sb strings.Builder
	sb.Grow(len(text))
	for {
		i := strings.Index(text, "${")
		if i < 0 {
			sb.WriteString(text)
			return sb.String(), nil
		}
		j := strings.IndexByte(text[i:], '}')
		if j < 0 {
			return "", fmt.Errorf("helper %s: unterminated placeholder at offset %d", d.Name, len(d.Text)-len(text)+i)
		}
		name := text[i+2 : i+j]
		sb.WriteString(text[:i])
		if uniqueName != nil {
			sb.WriteString(uniqueName(name))
		} else {
			sb.WriteString(name)
		}
		text = text[i+j+1:]
	}
}

// Lookup returns the descriptor for id or nil.
func Lookup(id ID) *Descriptor {
	if !id.IsValid() {
		return nil
	}
	return &catalog[id]
}

// MustLookup is Lookup for ids known to be valid.
func MustLookup(id ID) *Descriptor {
	d := Lookup(id)
	if d == nil {
		panic(fmt.Sprintf("helpers: unknown helper id %d", id))
	}
	return d
}

// ByName resolves a catalog name or an import name.
func ByName(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// All returns every catalog id in declaration order.
func All() []ID {
	out := make([]ID, 0, numIDs-1)
	for id := Invalid + 1; id < numIDs; id++ {
		out = append(out, id)
	}
	return out
}

var byName = func() map[string]ID {
	m := make(map[string]ID, 2*int(numIDs))
	for id := Invalid + 1; id < numIDs; id++ {
		d := &catalog[id]
		if d.ID != id {
			panic(fmt.Sprintf("helpers: catalog slot %d holds %s", id, d.Name))
		}
		m[d.Name] = id
		if d.ImportName != "" {
			m[d.ImportName] = id
		}
	}
	return m
}()
