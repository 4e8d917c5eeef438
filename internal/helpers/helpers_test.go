package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsConsistent(t *testing.T) {
	for _, id := range All() {
		d := Lookup(id)
		require.NotNil(t, d, "id %d", id)
		assert.Equal(t, id, d.ID)
		got, ok := ByName(d.Name)
		assert.True(t, ok, d.Name)
		assert.Equal(t, id, got)
		if d.Scope == Global {
			assert.NotEmpty(t, d.ImportName, d.Name)
			assert.True(t, strings.HasPrefix(d.Text, "var "+d.ImportName+" ="), d.Name)
			assert.NotContains(t, d.Text, "this && this.", d.Name)
		}
		for _, dep := range d.Deps {
			assert.True(t, dep.IsValid(), "%s depends on invalid id", d.Name)
		}
	}
	assert.Nil(t, Lookup(Invalid))
	assert.Nil(t, Lookup(numIDs))
}

func TestPriorities(t *testing.T) {
	want := map[ID]int{
		Extends:            0,
		MakeTemplateObject: 0,
		Assign:             1,
		Decorate:           2,
		Metadata:           3,
		Param:              4,
		Awaiter:            5,
		Generator:          6,
	}
	for _, id := range All() {
		p, ok := want[id]
		if !ok {
			p = NoPriority
		}
		assert.Equal(t, p, MustLookup(id).Priority, id.String())
	}
}

func TestSortIsStableAndPutsUndefinedLast(t *testing.T) {
	ids := []ID{Values, Generator, Read, Assign, MakeTemplateObject, Extends, Decorate}
	Sort(ids)
	assert.Equal(t, []ID{MakeTemplateObject, Extends, Assign, Decorate, Generator, Values, Read}, ids)
}

func TestDependencyOrderIndependentOfRequestOrder(t *testing.T) {
	// Read has no priority, so ordering comes from registration: the factory
	// always registers the dependency before the dependent.
	s := NewSet(Read, Spread)
	s.AddAll([]ID{Read, Spread})
	assert.Equal(t, []ID{Read, Spread}, s.Sorted())

	s = NewSet(Await, AsyncGenerator, Assign)
	sorted := s.Sorted()
	assert.Equal(t, []ID{Assign, Await, AsyncGenerator}, sorted)
}

func TestSetDedupAndRemove(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add(Assign))
	assert.False(t, s.Add(Assign))
	assert.False(t, s.Add(Invalid))
	s.AddAll([]ID{Values, Read, Values})
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []ID{Assign, Values, Read}, s.IDs())

	assert.True(t, s.Remove(Values))
	assert.False(t, s.Remove(Values))
	assert.False(t, s.Has(Values))
	assert.Equal(t, []ID{Assign, Read}, s.IDs())
	assert.True(t, s.Add(Values))
	assert.Equal(t, []ID{Assign, Read, Values}, s.IDs())
}

func TestMissingDependencies(t *testing.T) {
	assert.Empty(t, MissingDependencies([]ID{Read, Spread}))
	assert.Equal(t, []ID{Read}, MissingDependencies([]ID{Spread}))
	assert.Equal(t, []ID{Await}, MissingDependencies([]ID{AsyncGenerator, AsyncDelegator}))
}

func TestRenderPlaceholders(t *testing.T) {
	d := MustLookup(AsyncSuper)
	assert.Equal(t, Scoped, d.Scope)

	out, err := d.Render(func(name string) string { return name + "_1" })
	require.NoError(t, err)
	assert.Equal(t, "const _superIndex_1 = name => super[name];", out)

	out, err = d.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "const _superIndex = name => super[name];", out)

	bad := Descriptor{Name: "broken", Text: "var x = ${oops;"}
	_, err = bad.Render(nil)
	assert.Error(t, err)
}

func TestByNameAcceptsImportNames(t *testing.T) {
	id, ok := ByName("__spread")
	require.True(t, ok)
	assert.Equal(t, Spread, id)
	_, ok = ByName("__nope")
	assert.False(t, ok)
}
