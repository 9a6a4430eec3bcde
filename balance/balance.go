// Package balance implements the bookkeeping for the parser's single
// left-to-right pass that rewrites delimiter characters in source text
// into @<n><ch> identifiers at preprocess time (spec §3,
// "Balanced-delimiter identifier" and §4.2.1): a counter that goes up
// on a prefix and down on a matching suffix, one per declared pair.
// The grammar loader uses this package's Pair type to declare pairs,
// but assigns its own labels (grammar's labelStacks) when embedding
// delimiter pairing into format regexes.
package balance

import "fmt"

// Pair is a declared balanced-delimiter pair: a single prefix
// character and its matching suffix character.
type Pair struct {
	Prefix byte
	Suffix byte
}

// Counter tracks the nesting depth for one declared Pair during a
// single left-to-right scan.
type Counter struct {
	pair  Pair
	depth int
}

// NewCounter starts a fresh, zeroed counter for pair.
func NewCounter(pair Pair) *Counter {
	return &Counter{pair: pair}
}

// Open records a prefix occurrence and returns the identifier to use
// for this nesting level, then advances the counter.
func (c *Counter) Open() string {
	id := fmt.Sprintf("%d", c.depth)
	c.depth++
	return id
}

// Close decrements the counter and returns the identifier of the
// nesting level being closed (the one opened immediately before it)
// with ok=true, or ok=false if the counter is already at zero (an
// unmatched suffix).
func (c *Counter) Close() (string, bool) {
	if c.depth == 0 {
		return "", false
	}
	c.depth--
	return fmt.Sprintf("%d", c.depth), true
}

// Balanced reports whether the counter is back at zero, i.e. every
// prefix seen so far has been closed.
func (c *Counter) Balanced() bool {
	return c.depth == 0
}

// Set is a small registry of counters, one per declared Pair, indexed
// by the Pair's Prefix and Suffix bytes independently so a scan can
// look a counter up by whichever character it just saw.
type Set struct {
	byPrefix map[byte]*Counter
	bySuffix map[byte]*Counter
	pairs    []Pair
}

// NewSet builds a fresh Set of zeroed counters, one per pair.
func NewSet(pairs []Pair) *Set {
	s := &Set{
		byPrefix: make(map[byte]*Counter, len(pairs)),
		bySuffix: make(map[byte]*Counter, len(pairs)),
		pairs:    pairs,
	}
	for _, p := range pairs {
		c := NewCounter(p)
		s.byPrefix[p.Prefix] = c
		s.bySuffix[p.Suffix] = c
	}
	return s
}

// Pairs returns the declared pairs in declaration order.
func (s *Set) Pairs() []Pair { return s.pairs }

// ForPrefix returns the counter for a declared prefix character, if
// any.
func (s *Set) ForPrefix(ch byte) (*Counter, bool) {
	c, ok := s.byPrefix[ch]
	return c, ok
}

// ForSuffix returns the counter for a declared suffix character, if
// any.
func (s *Set) ForSuffix(ch byte) (*Counter, bool) {
	c, ok := s.bySuffix[ch]
	return c, ok
}

// AllBalanced reports whether every counter in the set is back at
// zero.
func (s *Set) AllBalanced() bool {
	for _, p := range s.pairs {
		if !s.byPrefix[p.Prefix].Balanced() {
			return false
		}
	}
	return true
}
