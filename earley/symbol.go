// Copyright 2021-2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package earley

import (
	"sort"
)

// A grammar symbol
type symbol struct {
	name    string
	rules   []*rule
	id      int
	prefix0 *prefix
}

// A grammar rule; id is its position in declaration order.
type rule struct {
	name       string
	target     *symbol
	items      []*symbol
	id         int
	fullPrefix *prefix
}

// A prefix to one or more rules for the same symbol.
type prefix struct {
	target     *symbol
	length     int // Length of the prefix; 0 to length of longest rule
	rules      []*rule
	id         int
	extensions []*prefix // Prefixes that are longer by one symbol
}

// Terminal symbols are not produced by any rules
func (s *symbol) isTerminal() bool {
	return len(s.rules) == 0
}

// Compare the item lists of two rules lexicographically.
func compareItems(u, v []*symbol) int {
	for n := 0; ; n++ {
		switch {
		case n >= len(u) && n >= len(v):
			return 0
		case n >= len(v):
			return 1
		case n >= len(u):
			return -1
		case u[n].id != v[n].id:
			if u[n].id < v[n].id {
				return -1
			}
			return 1
		}
	}
}

// Sort a symbol's rules lexicographically, so rules with common prefixes are together.
// Rules with equal items keep their declaration order.
func (s *symbol) sortRules() {
	sort.SliceStable(s.rules, func(i, j int) bool {
		return compareItems(s.rules[i].items, s.rules[j].items) < 0
	})
}

// Find two rules for the symbol with the same items, if any.
// The rules must already be sorted.
func (s *symbol) identicalRules() (*rule, *rule) {
	for n := 1; n < len(s.rules); n++ {
		if compareItems(s.rules[n-1].items, s.rules[n].items) == 0 {
			return s.rules[n-1], s.rules[n]
		}
	}
	return nil, nil
}

// The rule completely represented by a prefix, if any
func (p *prefix) completedRule() *rule {
	if len(p.rules[0].items) == p.length {
		return p.rules[0]
	}
	return nil
}
