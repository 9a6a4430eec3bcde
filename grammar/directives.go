package grammar

import (
	"regexp"
	"strings"
)

// directiveKind enumerates the recognized .kw directives (spec §6.1).
type directiveKind string

const (
	kindDel directiveKind = "del"
	kindSub directiveKind = "sub"
	kindBal directiveKind = "bal"
	kindOrg directiveKind = "org"
	kindFmt directiveKind = "fmt"
	kindMap directiveKind = "map"
)

// rawDirective is one extracted directive: its kind and its body text,
// already normalized (whitespace-collapsed and tab/newline-stripped).
type rawDirective struct {
	kind directiveKind
	body string
}

var (
	// wsRun matches runs of two or more whitespace characters, which
	// the loader collapses to a single tab before scanning (spec
	// §4.1, §6.1). A lone single space is left untouched, since single
	// spaces are significant inside an instruction token such as
	// "mov tgt,src".
	wsRun = regexp.MustCompile(`[ \t\r\n\f\v]{2,}`)

	// directiveStart finds the next .kw token introducing a directive.
	directiveStart = regexp.MustCompile(`\.(del|sub|bal|org|fmt|map)[ \t]+`)
)

// normalize applies the whitespace-collapsing pass described in spec
// §4.1's Input section and §6.1: runs of two-or-more whitespace become
// a single tab, which (along with any literal newline) is then
// stripped out of each directive's extracted body.
func normalize(text string) string {
	return wsRun.ReplaceAllString(text, "\t")
}

// stripBody removes the tabs and newlines left over from normalize,
// preserving the single spaces that were never part of a 2+ run.
func stripBody(body string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return -1
		default:
			return r
		}
	}, body)
}

// scanDirectives extracts, in declaration order, every directive in a
// normalized grammar text. Each directive's body extends to the start
// of the next .kw directive or to the end of the text (spec §4.1's
// Input section, §6.1).
func scanDirectives(text string) []rawDirective {
	norm := normalize(text)

	locs := directiveStart.FindAllStringSubmatchIndex(norm, -1)
	if len(locs) == 0 {
		return nil
	}

	var out []rawDirective
	for i, loc := range locs {
		kindStart, kindEnd := loc[2], loc[3]
		bodyStart := loc[1]
		bodyEnd := len(norm)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		out = append(out, rawDirective{
			kind: directiveKind(norm[kindStart:kindEnd]),
			body: strings.TrimSpace(stripBody(norm[bodyStart:bodyEnd])),
		})
	}
	return out
}
