package transform

import "strconv"

// NameGenerator hands out temporary names that are unique within one file:
// _a .. _z without _i and _n, then _0, _1, ...
// Names already used in the file are skipped.
type NameGenerator struct {
	reserved map[string]struct{}
	count    int
}

func NewNameGenerator(reserved map[string]struct{}) *NameGenerator {
	if reserved == nil {
		reserved = make(map[string]struct{})
	}
	return &NameGenerator{reserved: reserved}
}

// Reserve marks name as taken.
func (g *NameGenerator) Reserve(name string) {
	g.reserved[name] = struct{}{}
}

func (g *NameGenerator) Next() string {
	for {
		name := tempName(g.count)
		g.count++
		if name == "" {
			continue
		}
		if _, taken := g.reserved[name]; taken {
			continue
		}
		g.reserved[name] = struct{}{}
		return name
	}
}

func tempName(n int) string {
	if n < 26 {
		c := byte('a' + n)
		// _i and _n stay free for loop counters.
		if c == 'i' || c == 'n' {
			return ""
		}
		return "_" + string(c)
	}
	return "_" + strconv.Itoa(n-26)
}
