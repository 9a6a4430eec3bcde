package grammar

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/arj0019/eccgen/balance"
	"github.com/arj0019/eccgen/ecerror"
)

func newGrammarErr(cause error, directive, sym string, alt int) error {
	return &ecerror.GrammarError{Cause: cause, Directive: directive, Symbol: sym, Alt: alt}
}

func loadDel(g *Grammar, body string) error {
	rx, err := regexp2.Compile(body, regexp2.Singleline)
	if err != nil {
		return newGrammarErr(ecerror.ErrMalformedDirective, ".del", "", -1)
	}
	g.Deletions = append(g.Deletions, Deletion{Pattern: rx, Source: body})
	return nil
}

func loadSub(g *Grammar, body string) error {
	parts := strings.SplitN(body, ";", 2)
	if len(parts) != 2 {
		return newGrammarErr(ecerror.ErrMalformedDirective, ".sub", "", -1)
	}
	rx, err := regexp2.Compile(parts[0], regexp2.Singleline)
	if err != nil {
		return newGrammarErr(ecerror.ErrMalformedDirective, ".sub", "", -1)
	}
	g.Substitutions = append(g.Substitutions, Substitution{
		Pattern:     rx,
		Source:      parts[0],
		Replacement: parts[1],
	})
	return nil
}

func loadBal(g *Grammar, body string) error {
	if len(body) != 2 {
		return newGrammarErr(ecerror.ErrMalformedDirective, ".bal", "", -1)
	}
	g.Balances = append(g.Balances, balance.Pair{Prefix: body[0], Suffix: body[1]})
	return nil
}

func loadOrg(g *Grammar, body string) {
	sym := strings.TrimSpace(body)
	if sym == "" {
		return
	}
	g.Origins = append(g.Origins, sym)
}

var ruleHeadRe = regexp.MustCompile(`^([A-Za-z_]\w*)\s*::=\s*(.*)$`)

func loadFmt(g *Grammar, body string) error {
	m := ruleHeadRe.FindStringSubmatch(body)
	if m == nil {
		return newGrammarErr(ecerror.ErrMalformedDirective, ".fmt", "", -1)
	}
	sym, rest := m[1], m[2]

	rule := &FormatRule{Symbol: sym}
	for _, alt := range splitTopLevel(rest, '|') {
		rule.Alts = append(rule.Alts, &FormatAlt{Raw: strings.TrimSpace(alt)})
	}

	if _, exists := g.formatIndex[sym]; exists {
		return newGrammarErr(ecerror.ErrMalformedDirective, ".fmt", sym, -1)
	}
	g.Formats = append(g.Formats, rule)
	g.formatIndex[sym] = rule
	return nil
}

func loadMap(g *Grammar, body string) error {
	m := ruleHeadRe.FindStringSubmatch(body)
	if m == nil {
		return newGrammarErr(ecerror.ErrMalformedDirective, ".map", "", -1)
	}
	sym, rest := m[1], m[2]

	rule := &MapRule{Symbol: sym}
	for altIdx, altText := range splitTopLevel(rest, '|') {
		var alt MapAlt
		for _, instrText := range splitTopLevel(altText, ';') {
			instr, err := parseInstruction(instrText)
			if err != nil {
				return newGrammarErr(err, ".map", sym, altIdx)
			}
			alt.Instructions = append(alt.Instructions, instr)
		}
		rule.Alts = append(rule.Alts, &alt)
	}

	if _, exists := g.mapIndex[sym]; exists {
		return newGrammarErr(ecerror.ErrMalformedDirective, ".map", sym, -1)
	}
	g.Maps = append(g.Maps, rule)
	g.mapIndex[sym] = rule
	return nil
}

// checkLeftRecursion rejects a directly left-recursive format
// alternative, per spec §9's "Recursive descent without cycle risk"
// design note: such a rule can re-enter itself at the same cursor
// position forever. Only the simple, statically-detectable case is
// rejected: an alternative whose pattern begins with a named capture
// group for its own symbol. Whether that group can match the empty
// string is not checked; every such alternative is rejected.
func checkLeftRecursion(g *Grammar) error {
	selfRef := regexp.MustCompile(`^\(\?P<(\w+)>`)
	for _, rule := range g.Formats {
		for i, alt := range rule.Alts {
			m := selfRef.FindStringSubmatch(alt.Raw)
			if m != nil && m[1] == rule.Symbol {
				return newGrammarErr(ecerror.ErrMalformedDirective, ".fmt", rule.Symbol, i)
			}
		}
	}
	return nil
}
