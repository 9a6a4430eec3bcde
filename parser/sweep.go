package parser

import (
	"regexp"
	"strings"

	"github.com/arj0019/eccgen/balance"
)

// delimTokenRe finds an @<n><ch> identifier emitted by the balanced-
// delimiter rewrite: a run of digits followed by the single delimiter
// character.
var delimTokenRe = regexp.MustCompile(`@(\d+)(.)`)

// sweepStaleDelimiters implements spec.md §4.2.2's "stale-delimiter
// sweep": a suffix token @k<s> that has no matching @k<p> prefix token
// still present in text is deleted. This handles the case where an
// earlier match consumed the text containing the opener but left its
// closer behind in the unmatched remainder.
func sweepStaleDelimiters(text string, pairs []balance.Pair) string {
	if len(pairs) == 0 || !strings.Contains(text, "@") {
		return text
	}

	prefixOf := make(map[byte]byte, len(pairs))
	isSuffix := make(map[byte]bool, len(pairs))
	for _, p := range pairs {
		prefixOf[p.Suffix] = p.Prefix
		isSuffix[p.Suffix] = true
	}

	locs := delimTokenRe.FindAllStringSubmatchIndex(text, -1)
	if locs == nil {
		return text
	}

	type token struct {
		n          string
		ch         byte
		start, end int
	}
	tokens := make([]token, 0, len(locs))
	present := make(map[string]bool, len(locs))
	for _, loc := range locs {
		n := text[loc[2]:loc[3]]
		ch := text[loc[4]]
		tokens = append(tokens, token{n: n, ch: ch, start: loc[0], end: loc[1]})
		present[n+string(ch)] = true
	}

	var out strings.Builder
	last := 0
	for _, t := range tokens {
		if isSuffix[t.ch] {
			p := prefixOf[t.ch]
			if !present[t.n+string(p)] {
				out.WriteString(text[last:t.start])
				last = t.end
				continue
			}
		}
	}
	out.WriteString(text[last:])
	return out.String()
}
