package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arj0019/eccgen/balance"
	"github.com/arj0019/eccgen/ecerror"
)

// labelStacks assigns globally-unique named-capture-group labels
// ("d0", "d1", ...) to delimiter openers within one format alternative
// and resolves a closer back to the label of the opener it pairs
// with, by LIFO order within its own pair type.
//
// This is distinct from balance.Set, which the parser uses at
// preprocess time to rewrite source text into @<n><ch> tokens: there,
// matched delimiters of the SAME pair share a depth number that
// resets per pair, which is enough because the token already carries
// the character. Here the assigned label becomes a Go regexp named
// group, which must be unique across the whole pattern even when
// multiple pair types are declared, so a single shared counter hands
// out every label.
type labelStacks struct {
	stacks map[byte][]string
	next   int
}

func newLabelStacks() *labelStacks {
	return &labelStacks{stacks: make(map[byte][]string)}
}

func (l *labelStacks) open(ch byte) string {
	label := fmt.Sprintf("%d", l.next)
	l.next++
	l.stacks[ch] = append(l.stacks[ch], label)
	return label
}

func (l *labelStacks) close(prefixCh byte) (string, bool) {
	stack := l.stacks[prefixCh]
	if len(stack) == 0 {
		return "", false
	}
	label := stack[len(stack)-1]
	l.stacks[prefixCh] = stack[:len(stack)-1]
	return label, true
}

func (l *labelStacks) balanced() bool {
	for _, stack := range l.stacks {
		if len(stack) != 0 {
			return false
		}
	}
	return true
}

var regexMeta = regexp.MustCompile(`[.+*?()|[\]{}^$\\]`)

// escapeRegex escapes a single byte for literal use inside a regexp
// pattern.
func escapeRegex(ch byte) string {
	s := string(ch)
	if regexMeta.MatchString(s) {
		return "\\" + s
	}
	return s
}

// embedDelimiters performs the single left-to-right scan of spec
// §4.1's "Format post-processing (balanced-delimiter embedding)":
// every backslash-escaped occurrence of a declared prefix character
// (the way a grammar author writes a literal delimiter to match in
// source text, as opposed to the same character used bare as regex
// group syntax) is replaced by a named capture group that will only
// match a @<n> token emitted by the parser's preprocessing rewrite,
// and every matching escaped suffix is replaced by a back-reference to
// that same group. This embeds delimiter pairing directly into the
// alternative's regex, so the parser only matches balanced
// sub-phrases, while leaving the alternative's own unescaped grouping
// parens untouched.
func embedDelimiters(alt string, pairs []balance.Pair) (string, error) {
	if len(pairs) == 0 {
		return alt, nil
	}

	byPrefix := make(map[byte]balance.Pair, len(pairs))
	bySuffix := make(map[byte]balance.Pair, len(pairs))
	for _, p := range pairs {
		byPrefix[p.Prefix] = p
		bySuffix[p.Suffix] = p
	}

	ls := newLabelStacks()
	var out strings.Builder

	for i := 0; i < len(alt); i++ {
		ch := alt[i]
		if ch != '\\' || i+1 >= len(alt) {
			out.WriteByte(ch)
			continue
		}
		next := alt[i+1]
		if _, ok := byPrefix[next]; ok {
			label := ls.open(next)
			fmt.Fprintf(&out, "(?P<d%s>@[0-9]+)%s", label, escapeRegex(next))
			i++
			continue
		}
		if p, ok := bySuffix[next]; ok {
			label, ok := ls.close(p.Prefix)
			if !ok {
				return "", &ecerror.GrammarError{
					Cause:     ecerror.ErrUnbalancedDelimiters,
					Directive: ".fmt",
					Alt:       -1,
				}
			}
			fmt.Fprintf(&out, "(?P=d%s)%s", label, escapeRegex(next))
			i++
			continue
		}
		out.WriteByte(ch)
		out.WriteByte(next)
		i++
	}

	if !ls.balanced() {
		return "", &ecerror.GrammarError{
			Cause:     ecerror.ErrUnbalancedDelimiters,
			Directive: ".fmt",
			Alt:       -1,
		}
	}

	return out.String(), nil
}
