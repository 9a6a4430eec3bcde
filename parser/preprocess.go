package parser

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/arj0019/eccgen/balance"
	"github.com/arj0019/eccgen/ecerror"
	"github.com/arj0019/eccgen/grammar"
)

// preprocess applies spec.md §4.2.1 in order: deletions, then
// substitutions, then the balanced-delimiter rewrite.
func preprocess(g *grammar.Grammar, source string) (string, error) {
	text := source
	for _, d := range g.Deletions {
		out, err := replaceAll(d.Pattern, text, "")
		if err != nil {
			return "", &ecerror.SourceError{Cause: ecerror.ErrMalformedDirective, Remaining: text}
		}
		text = out
	}
	for _, s := range g.Substitutions {
		out, err := replaceAll(s.Pattern, text, s.Replacement)
		if err != nil {
			return "", &ecerror.SourceError{Cause: ecerror.ErrMalformedDirective, Remaining: text}
		}
		text = out
	}
	return rewriteBalances(text, g.Balances)
}

// replaceAll performs a literal (non-template) replace-all: every
// match of rx in text is replaced by replacement verbatim, left to
// right, matching spec.md's "each a replace(regex, replacement)"
// description of deletions/substitutions.
func replaceAll(rx *regexp2.Regexp, text, replacement string) (string, error) {
	var out strings.Builder
	last := 0
	m, err := rx.FindStringMatch(text)
	if err != nil {
		return "", err
	}
	for m != nil {
		out.WriteString(text[last:m.Index])
		out.WriteString(replacement)
		last = m.Index + m.Length
		m, err = rx.FindNextMatch(m)
		if err != nil {
			return "", err
		}
	}
	out.WriteString(text[last:])
	return out.String(), nil
}

// rewriteBalances performs the single left-to-right balanced-delimiter
// rewrite of spec.md §3/§4.2.1: every declared prefix/suffix character
// becomes an @<n><ch> identifier, n assigned by a per-pair stack
// counter so that two delimiters share n iff they are matched.
func rewriteBalances(text string, pairs []balance.Pair) (string, error) {
	if len(pairs) == 0 {
		return text, nil
	}
	set := balance.NewSet(pairs)
	var out strings.Builder

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if c, ok := set.ForPrefix(ch); ok {
			id := c.Open()
			fmt.Fprintf(&out, "@%s%c", id, ch)
			continue
		}
		if c, ok := set.ForSuffix(ch); ok {
			id, ok2 := c.Close()
			if !ok2 {
				return "", &ecerror.SourceError{Cause: ecerror.ErrUnbalancedDelimiters, Remaining: text[i:]}
			}
			fmt.Fprintf(&out, "@%s%c", id, ch)
			continue
		}
		out.WriteByte(ch)
	}

	if !set.AllBalanced() {
		return "", &ecerror.SourceError{Cause: ecerror.ErrUnbalancedDelimiters, Remaining: ""}
	}
	return out.String(), nil
}
