// Package grammar implements the GrammarLoader (spec §4.1): it parses
// a grammar description's directives into an immutable Grammar record
// of deletion/substitution/balance rules plus parallel format and map
// tables, with balanced-delimiter pairing embedded into each format
// alternative's regex.
package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/arj0019/eccgen/balance"
	"github.com/arj0019/eccgen/ecerror"
)

// Deletion is a regex whose matches are stripped from a subject text.
type Deletion struct {
	Pattern *regexp2.Regexp
	Source  string
}

// Substitution is a regex-to-text rewrite.
type Substitution struct {
	Pattern     *regexp2.Regexp
	Source      string
	Replacement string
}

// FormatAlt is one alternative of a .fmt rule: a regex (with
// balanced-delimiter pairing embedded, spec §4.1) when this grammar is
// used to parse source text, or a template string (with &name/!name/
// $name placeholders) when this grammar is used to generate target
// text (spec §4.4). Raw holds the post-embedding text either way;
// which interpretation applies depends on which pipeline stage reads
// it.
type FormatAlt struct {
	Raw     string
	Rx      *regexp2.Regexp
	Capture []string // named capture groups, excluding the synthetic d<n> delimiter groups
}

// FormatRule is one .fmt declaration: a symbol and its ordered
// alternatives.
type FormatRule struct {
	Symbol string
	Alts   []*FormatAlt
}

// OperandKind tags how an instruction's opcode or operand token
// resolves (spec §3, "Instruction template").
type OperandKind uint8

const (
	// KindName is a plain identifier: for an opcode, a literal opcode
	// name used verbatim. An unprefixed operand token also loads as
	// KindName.
	KindName OperandKind = iota
	// KindDeref is an &name token: recursively translate (or
	// generate) the sub-value bound to capture/operand "name".
	KindDeref
	// KindExplicit is a #name token: use the matched text of capture
	// "name" itself, tagged as an explicit literal.
	KindExplicit
	// KindSymbol is a *name token: use the matched text of capture
	// "name", tagged as a named symbol.
	KindSymbol
)

// OperandToken is one opcode/tgt/src field of an instruction template.
type OperandToken struct {
	Kind OperandKind
	Name string
}

// Instruction is one instruction of a .map alternative's instruction
// list (spec §3, §6.1's "Instruction token grammar").
type Instruction struct {
	Opcode OperandToken
	Tgt    *OperandToken
	Src    *OperandToken
}

// MapAlt is the IR-construction recipe parallel to one FormatAlt: one
// or more instructions, applied in order.
type MapAlt struct {
	Instructions []Instruction
}

// MapRule is one .map declaration: a symbol and its ordered
// alternatives, parallel by index to the same symbol's FormatRule.
type MapRule struct {
	Symbol string
	Alts   []*MapAlt
}

// Grammar is the immutable record produced by Load. It is read-only
// after construction and safe for concurrent use (spec §5).
type Grammar struct {
	Deletions     []Deletion
	Substitutions []Substitution
	Balances      []balance.Pair
	Formats       []*FormatRule
	Maps          []*MapRule
	Origins       []string // empty means "all formats are eligible roots" (spec §9, resolved Open Question)

	formatIndex map[string]*FormatRule
	mapIndex    map[string]*MapRule
}

// Format looks up a symbol's format rule.
func (g *Grammar) Format(sym string) (*FormatRule, bool) {
	r, ok := g.formatIndex[sym]
	return r, ok
}

// Map looks up a symbol's map rule.
func (g *Grammar) Map(sym string) (*MapRule, bool) {
	r, ok := g.mapIndex[sym]
	return r, ok
}

// IsRoot reports whether sym is an eligible starting symbol: any
// explicitly-declared .org symbol, or (when none are declared) any
// symbol with a format rule at all.
func (g *Grammar) IsRoot(sym string) bool {
	if len(g.Origins) == 0 {
		_, ok := g.formatIndex[sym]
		return ok
	}
	for _, o := range g.Origins {
		if o == sym {
			return true
		}
	}
	return false
}

// Targets returns the format rules eligible as parse targets, in
// declaration order: the .org symbols if any were declared, else
// every format rule (spec §9's resolved Open Question).
func (g *Grammar) Targets() []*FormatRule {
	if len(g.Origins) == 0 {
		return g.Formats
	}
	var out []*FormatRule
	for _, o := range g.Origins {
		if r, ok := g.formatIndex[o]; ok {
			out = append(out, r)
		}
	}
	return out
}

var opRe = regexp.MustCompile(`^([&*#]?[A-Za-z_]\w*)$`)

func parseOperandToken(tok string) (OperandToken, error) {
	if !opRe.MatchString(tok) {
		return OperandToken{}, ecerror.ErrMalformedDirective
	}
	switch tok[0] {
	case '&':
		return OperandToken{Kind: KindDeref, Name: tok[1:]}, nil
	case '#':
		return OperandToken{Kind: KindExplicit, Name: tok[1:]}, nil
	case '*':
		return OperandToken{Kind: KindSymbol, Name: tok[1:]}, nil
	default:
		return OperandToken{Kind: KindName, Name: tok}, nil
	}
}

var instrRe = regexp.MustCompile(`^([&*#]?\w+)(?:\s+([&*#]?\w+))?(?:,([&*#]?\w+))?$`)

func parseInstruction(text string) (Instruction, error) {
	m := instrRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Instruction{}, ecerror.ErrMalformedDirective
	}

	opcode, err := parseOperandToken(m[1])
	if err != nil {
		return Instruction{}, err
	}
	instr := Instruction{Opcode: opcode}

	if m[2] != "" {
		tgt, err := parseOperandToken(m[2])
		if err != nil {
			return Instruction{}, err
		}
		instr.Tgt = &tgt
	}
	if m[3] != "" {
		src, err := parseOperandToken(m[3])
		if err != nil {
			return Instruction{}, err
		}
		instr.Src = &src
	}
	return instr, nil
}

// Load parses a grammar description's text into an immutable Grammar
// record (spec §4.1).
func Load(text string) (*Grammar, error) {
	g := &Grammar{
		formatIndex: make(map[string]*FormatRule),
		mapIndex:    make(map[string]*MapRule),
	}

	for _, d := range scanDirectives(text) {
		var err error
		switch d.kind {
		case kindDel:
			err = loadDel(g, d.body)
		case kindSub:
			err = loadSub(g, d.body)
		case kindBal:
			err = loadBal(g, d.body)
		case kindOrg:
			loadOrg(g, d.body)
		case kindFmt:
			err = loadFmt(g, d.body)
		case kindMap:
			err = loadMap(g, d.body)
		}
		if err != nil {
			return nil, err
		}
	}

	// Now that every .bal pair is known, embed delimiter pairing into
	// every format alternative's regex and compile it (spec §4.1's
	// "Format post-processing").
	for _, rule := range g.Formats {
		for i, alt := range rule.Alts {
			embedded, err := embedDelimiters(alt.Raw, g.Balances)
			if err != nil {
				return nil, &ecerror.GrammarError{
					Cause:     ecerror.ErrUnbalancedDelimiters,
					Directive: ".fmt",
					Symbol:    rule.Symbol,
					Alt:       i,
				}
			}
			alt.Raw = embedded
			rx, err := regexp2.Compile(embedded, regexp2.Singleline)
			if err != nil {
				return nil, &ecerror.GrammarError{
					Cause:     ecerror.ErrMalformedDirective,
					Directive: ".fmt",
					Symbol:    rule.Symbol,
					Alt:       i,
				}
			}
			alt.Rx = rx
			alt.Capture = namedCaptures(rx)
		}
	}

	if err := checkArity(g); err != nil {
		return nil, err
	}
	if err := checkLeftRecursion(g); err != nil {
		return nil, err
	}

	return g, nil
}

// namedCaptures returns a regex's named capture groups, excluding the
// whole-match group and unnamed groups (both report as "" or their
// numeric index) and the synthetic "d<n>" delimiter-pairing groups
// embedDelimiters inserts.
func namedCaptures(rx *regexp2.Regexp) []string {
	var out []string
	for _, name := range rx.GetGroupNames() {
		if name == "" {
			continue
		}
		if _, err := strconv.Atoi(name); err == nil {
			continue
		}
		if _, err := parseDelimGroupName(name); err == nil {
			continue
		}
		out = append(out, name)
	}
	return out
}

// IsDelimGroupName reports whether name is one of the synthetic
// "d<n>" delimiter-pairing groups embedDelimiters inserts, as opposed
// to a grammar author's own named capture.
func IsDelimGroupName(name string) bool {
	_, err := parseDelimGroupName(name)
	return err == nil
}

func parseDelimGroupName(name string) (int, error) {
	if !strings.HasPrefix(name, "d") {
		return 0, ecerror.ErrMalformedDirective
	}
	n := 0
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return 0, ecerror.ErrMalformedDirective
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

func checkArity(g *Grammar) error {
	for _, m := range g.Maps {
		f, ok := g.formatIndex[m.Symbol]
		if !ok || len(f.Alts) != len(m.Alts) {
			return &ecerror.GrammarError{
				Cause:     ecerror.ErrArityMismatch,
				Directive: ".map",
				Symbol:    m.Symbol,
				Alt:       -1,
			}
		}
	}
	return nil
}
