package parser

import (
	"context"
	"regexp"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/arj0019/eccgen/ecerror"
	"github.com/arj0019/eccgen/grammar"
)

// delimMarkerRe strips just the "@<n>" counter marker from a captured
// span, leaving the delimiter character itself, for the
// non-empty-after-stripping check of spec.md §4.2.2.
var delimMarkerRe = regexp.MustCompile(`@\d+`)

func stripDelimTokens(s string) string {
	return delimMarkerRe.ReplaceAllString(s, "")
}

// match implements spec.md §4.2.2's recursive-descent matching loop
// over text, restricted to targets (either the grammar's declared
// roots, or a single symbol's rule for a recursive sub-parse of one
// capture's text).
func match(ctx context.Context, g *grammar.Grammar, text string, targets []*grammar.FormatRule, log *zap.SugaredLogger) ([]*Value, error) {
	var acc []*Value

	for text != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		matched := false
	symbols:
		for _, rule := range targets {
			for altIdx, alt := range rule.Alts {
				swept := sweepStaleDelimiters(text, g.Balances)
				if log != nil && swept != text {
					log.Debugw("stale delimiter swept", "symbol", rule.Symbol)
				}
				text = swept

				m, err := alt.Rx.FindStringMatch(text)
				if err != nil || m == nil || m.Index != 0 {
					if log != nil {
						log.Debugw("alternative did not match", "symbol", rule.Symbol, "alt", altIdx)
					}
					continue
				}

				node, ok := buildNode(ctx, g, rule.Symbol, alt, m, log)
				if !ok {
					// internal failure (e.g. a recursive sub-parse of
					// a named capture failed): try the next
					// alternative, per spec.md §4.2.2.
					continue
				}

				if log != nil {
					log.Debugw("alternative matched", "symbol", rule.Symbol, "alt", altIdx, "length", m.Length)
				}
				acc = append(acc, node)
				text = text[m.Index+m.Length:]
				matched = true
				break symbols
			}
		}

		if !matched {
			return nil, &ecerror.SourceError{Cause: ecerror.ErrNoMatch, Remaining: text}
		}
	}

	return acc, nil
}

// buildNode constructs the {sym: subtree} Value for one successful
// alternative match, recursing into named captures per spec.md
// §4.2.2. It returns ok=false on the "internal failure" path (a
// recursive sub-parse of a non-empty capture failed), signaling the
// caller to try the next alternative.
func buildNode(ctx context.Context, g *grammar.Grammar, sym string, alt *grammar.FormatAlt, m *regexp2.Match, log *zap.SugaredLogger) (*Value, bool) {
	if len(alt.Capture) == 0 {
		return mapValue(map[string]*Value{sym: textValue(m.String())}), true
	}

	attrs := make(map[string]*Value, len(alt.Capture))
	for _, name := range alt.Capture {
		group := m.GroupByName(name)
		if group == nil {
			continue
		}
		content := group.String()
		if stripDelimTokens(content) == "" {
			continue
		}

		rule, ok := g.Format(name)
		if !ok {
			// No nonterminal shares this capture's name: treat its
			// text as a leaf rather than failing the alternative, so
			// a plain content capture (e.g. "tok", "inner") need not
			// also be declared as its own format rule.
			attrs[name] = textValue(content)
			continue
		}

		sub, err := match(ctx, g, content, []*grammar.FormatRule{rule}, log)
		if err != nil {
			return nil, false
		}
		attrs[name] = listValue(sub)
	}

	return mapValue(map[string]*Value{sym: mapValue(attrs)}), true
}
