// Package generator implements the Generator (spec §4.4): a recursive
// walk of an IR tree, driven by a target grammar's maps, that renders
// target text with symbolic-address resolution, per-fragment escape
// decoding, and deletion/substitution post-processing of the whole
// output.
package generator

import (
	"context"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/arj0019/eccgen/ecerror"
	"github.com/arj0019/eccgen/grammar"
	"github.com/arj0019/eccgen/ir"
)

// scope is the per-invocation symbol table (spec §4.4, "State"). It is
// shadow-scoped per recursive generation frame: a child sees its
// parent's bindings, but anything it declares stays local to it.
type scope struct {
	parent   *scope
	bindings map[string]string
}

func newScope() *scope {
	return &scope{bindings: make(map[string]string)}
}

func (s *scope) child() *scope {
	return &scope{parent: s, bindings: make(map[string]string)}
}

func (s *scope) lookup(name string) (string, bool) {
	for c := s; c != nil; c = c.parent {
		if addr, ok := c.bindings[name]; ok {
			return addr, true
		}
	}
	return "", false
}

func (s *scope) declare(name, addr string) {
	s.bindings[name] = addr
}

// cursor is the shared address-allocation counter for one Generate
// call (spec §3's "Lifecycles": addresses begin at -2 and advance by
// +2 per newly declared symbol).
//
// spec.md §4.4 describes allocation two ways in the same paragraph:
// "assign it offset (and offset += 2)" for a named symbol, but
// "offset += 2; key by ..." for an anonymous slot -- read literally
// these disagree on whether the increment happens before or after the
// value is used. §8 scenario 3's worked numbers (y declared first
// gets address 0, x declared second gets 2) only follow from
// increment-then-read, so that is what both paths use here; see
// DESIGN.md.
type cursor struct {
	offset int
}

func newCursor() *cursor { return &cursor{offset: -2} }

func (c *cursor) next() string {
	c.offset += 2
	return strconv.Itoa(c.offset)
}

// Generate renders v into target text using the target grammar g
// (spec §4.4, §5's context-threaded entry point).
func Generate(ctx context.Context, g *grammar.Grammar, v ir.Value, log *zap.SugaredLogger) (string, error) {
	body, err := generate(ctx, g, v, newScope(), newCursor(), log)
	if err != nil {
		return "", err
	}
	return postProcess(g, body), nil
}

func generate(ctx context.Context, g *grammar.Grammar, v ir.Value, sc *scope, cur *cursor, log *zap.SugaredLogger) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch val := v.(type) {
	case ir.Seq:
		var b strings.Builder
		for _, item := range val {
			out, err := generate(ctx, g, item, sc, cur, log)
			if err != nil {
				return "", err
			}
			b.WriteString(out)
		}
		return b.String(), nil
	case ir.Atom:
		return generateAtom(val, sc)
	case *ir.Instr:
		return generateInstr(ctx, g, val, sc, cur, log)
	default:
		return "", &ecerror.GenerationError{Cause: ecerror.ErrUnmapped}
	}
}

// generateAtom renders a bare atom reached with no enclosing
// instruction to drive map/template resolution -- spec.md §8
// scenario 1's "minimal echo": the source side's `.map S ::= #tok`
// has no tgt/src, so translation collapses straight to an atom with
// nothing left to key a map lookup on. A plain or explicit atom is
// its own rendered text; a symbol atom still must resolve through the
// live symbol table, since an unresolved address is never meaningful
// standalone output. See DESIGN.md.
func generateAtom(a ir.Atom, sc *scope) (string, error) {
	if a.Kind == ir.Symbol {
		addr, ok := sc.lookup(a.Text)
		if !ok {
			return "", &ecerror.GenerationError{Cause: ecerror.ErrUndeclaredSymbol, Opcode: a.Text}
		}
		return addr, nil
	}
	return a.Text, nil
}

// opKind tags how an operand (IR-side) or an operand token
// (grammar-side) is shaped, so the two can be compared for the
// signature match of spec §4.4 step 2-3.
type opKind uint8

const (
	opAbsent opKind = iota
	opNested
	opExplicit
	opSymbolRef
	opPlain
)

func irOperandKind(op ir.Operand) opKind {
	if !op.Present {
		return opAbsent
	}
	switch a := op.Value.(type) {
	case ir.Atom:
		switch a.Kind {
		case ir.Literal:
			return opExplicit
		case ir.Symbol:
			return opSymbolRef
		default:
			return opPlain
		}
	default:
		return opNested
	}
}

func tokenOperandKind(tok *grammar.OperandToken) opKind {
	if tok == nil {
		return opAbsent
	}
	switch tok.Kind {
	case grammar.KindDeref:
		return opNested
	case grammar.KindExplicit:
		return opExplicit
	case grammar.KindSymbol:
		return opSymbolRef
	default:
		return opPlain
	}
}

// selectMapAlt finds the target map alternative whose instruction
// signature equals node's (spec §4.4 steps 2-3). A map alternative may
// hold more than one instruction when it is reached from the
// translate direction; the generator walks one IR node at a time; the
// first instruction in the alternative is what describes the shape of
// that one node.
func selectMapAlt(mapRule *grammar.MapRule, node *ir.Instr) (*grammar.MapAlt, bool) {
	tgtKind := irOperandKind(node.Tgt)
	srcKind := irOperandKind(node.Src)
	for _, alt := range mapRule.Alts {
		if len(alt.Instructions) == 0 {
			continue
		}
		instr := alt.Instructions[0]
		if tokenOperandKind(instr.Tgt) == tgtKind && tokenOperandKind(instr.Src) == srcKind {
			return alt, true
		}
	}
	return nil, false
}

func opcodeName(v ir.Value) (string, bool) {
	a, ok := v.(ir.Atom)
	if !ok {
		return "", false
	}
	return a.Text, true
}

func generateInstr(ctx context.Context, g *grammar.Grammar, node *ir.Instr, sc *scope, cur *cursor, log *zap.SugaredLogger) (string, error) {
	opcode, ok := opcodeName(node.Opcode)
	if !ok {
		return "", &ecerror.GenerationError{Cause: ecerror.ErrUnmapped}
	}

	rule, ok := g.Format(opcode)
	if !ok {
		return "", &ecerror.GenerationError{Cause: ecerror.ErrUnmapped, Opcode: opcode}
	}
	mapRule, ok := g.Map(opcode)
	if !ok {
		return "", &ecerror.GenerationError{Cause: ecerror.ErrUnmapped, Opcode: opcode}
	}

	alt, ok := selectMapAlt(mapRule, node)
	if !ok {
		return "", &ecerror.GenerationError{Cause: ecerror.ErrUnmapped, Opcode: opcode}
	}
	varIdx := altIndex(mapRule, alt)
	if varIdx < 0 || varIdx >= len(rule.Alts) {
		return "", &ecerror.GenerationError{Cause: ecerror.ErrUnmapped, Opcode: opcode}
	}

	if log != nil {
		log.Debugw("generate: matched map alternative", "opcode", opcode, "variant", varIdx)
	}

	tmpl := rule.Alts[varIdx].Raw
	instr := alt.Instructions[0]

	tmpl, err := substituteOperand(ctx, g, tmpl, instr.Tgt, node.Tgt, sc, cur, log)
	if err != nil {
		return "", err
	}
	tmpl, err = substituteOperand(ctx, g, tmpl, instr.Src, node.Src, sc, cur, log)
	if err != nil {
		return "", err
	}

	return interpretEscapes(tmpl), nil
}

func altIndex(mapRule *grammar.MapRule, alt *grammar.MapAlt) int {
	for i, a := range mapRule.Alts {
		if a == alt {
			return i
		}
	}
	return -1
}

// substituteOperand applies spec §4.4 step 4 for one operand: the
// placeholder name embedded in the template is the instruction
// token's own operand name (e.g. "val" for a `&val`/`*val` token),
// not a fixed "tgt"/"src" label -- a grammar author is free to name
// an operand anything.
func substituteOperand(ctx context.Context, g *grammar.Grammar, tmpl string, tok *grammar.OperandToken, op ir.Operand, sc *scope, cur *cursor, log *zap.SugaredLogger) (string, error) {
	if tok == nil || !op.Present {
		return tmpl, nil
	}

	deref := "&" + tok.Name
	decl := "!" + tok.Name
	raw := "$" + tok.Name

	switch tok.Kind {
	case grammar.KindDeref:
		rendered, err := generate(ctx, g, op.Value, sc.child(), cur, log)
		if err != nil {
			return "", err
		}
		tmpl = strings.ReplaceAll(tmpl, deref, rendered)
		if strings.Contains(tmpl, decl) {
			addr := cur.next()
			tmpl = strings.ReplaceAll(tmpl, decl, addr)
		}
		return tmpl, nil

	case grammar.KindExplicit:
		atom, ok := op.Value.(ir.Atom)
		if !ok {
			return "", &ecerror.GenerationError{Cause: ecerror.ErrUnmapped}
		}
		tmpl = strings.ReplaceAll(tmpl, raw, atom.Text)
		return tmpl, nil

	case grammar.KindSymbol:
		atom, ok := op.Value.(ir.Atom)
		if !ok {
			return "", &ecerror.GenerationError{Cause: ecerror.ErrUnmapped}
		}
		name := atom.Text

		switch {
		case strings.Contains(tmpl, decl):
			addr, ok := sc.lookup(name)
			if !ok {
				addr = cur.next()
				sc.declare(name, addr)
			}
			tmpl = strings.ReplaceAll(tmpl, decl, addr)
		case strings.Contains(tmpl, deref):
			addr, ok := sc.lookup(name)
			if !ok {
				return "", &ecerror.GenerationError{Cause: ecerror.ErrUndeclaredSymbol, Opcode: name}
			}
			tmpl = strings.ReplaceAll(tmpl, deref, addr)
		}
		tmpl = strings.ReplaceAll(tmpl, raw, name)
		return tmpl, nil

	default: // KindName: an unprefixed tgt/src token; its atom is
		// substituted as raw text.
		atom, ok := op.Value.(ir.Atom)
		if ok {
			tmpl = strings.ReplaceAll(tmpl, raw, atom.Text)
		}
		return tmpl, nil
	}
}

// interpretEscapes decodes backslash-escapes in one rendered fragment
// (spec §4.4 step 5). It runs per fragment -- once for each instruction
// node's own template, as it is rendered -- rather than once over the
// whole concatenated output, so an already-interpreted nested fragment
// is never re-scanned for escapes by an ancestor template.
func interpretEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case '\\':
			b.WriteByte('\\')
			i++
		case 'x':
			if i+3 < len(s) {
				if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
					b.WriteByte(byte(v))
					i += 3
					continue
				}
			}
			b.WriteByte(s[i])
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// postProcess applies the target grammar's deletions then
// substitutions to the concatenated output (spec §4.4,
// "Post-processing").
func postProcess(g *grammar.Grammar, out string) string {
	for _, d := range g.Deletions {
		if rewritten, err := replaceAll(d.Pattern, out, ""); err == nil {
			out = rewritten
		}
	}
	for _, s := range g.Substitutions {
		if rewritten, err := replaceAll(s.Pattern, out, s.Replacement); err == nil {
			out = rewritten
		}
	}
	return out
}

// replaceAll performs a literal replace-all of every match of rx in
// text with replacement, left to right (mirrors parser.replaceAll;
// duplicated here since the two packages' replace-all helpers are
// unexported and the logic is a handful of lines).
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
