package parser

import (
	"github.com/arj0019/eccgen/ecerror"
	"github.com/arj0019/eccgen/grammar"
	"github.com/arj0019/eccgen/ir"
)

// Translate implements spec.md §4.2.4: AST → IR. v is expected to be
// the already-reduced result of a top-level match/Reduce pass — a
// single {sym: attrs} node, or a sequence of them.
func Translate(g *grammar.Grammar, v *Value) (ir.Value, error) {
	nodes := topLevelNodes(v)
	results := make([]ir.Value, 0, len(nodes))
	for _, n := range nodes {
		sym, attrs, ok := asSymNode(n)
		if !ok {
			return nil, &ecerror.TranslationError{Cause: ecerror.ErrNoVariant}
		}
		iv, err := translateNode(g, sym, attrs)
		if err != nil {
			return nil, err
		}
		results = append(results, iv)
	}
	return ir.Single(results), nil
}

func topLevelNodes(v *Value) []*Value {
	if v.Kind == KindList {
		return v.List
	}
	return []*Value{v}
}

// asSymNode unwraps a {sym: attrs} node's single key/value pair.
func asSymNode(v *Value) (string, *Value, bool) {
	if v.Kind != KindMap || len(v.Map) != 1 {
		return "", nil, false
	}
	for k, sub := range v.Map {
		return k, sub, true
	}
	return "", nil, false
}

func translateNode(g *grammar.Grammar, sym string, attrs *Value) (ir.Value, error) {
	rule, ok := g.Format(sym)
	if !ok {
		return nil, &ecerror.TranslationError{Cause: ecerror.ErrNoVariant, Symbol: sym}
	}
	mapRule, ok := g.Map(sym)
	if !ok {
		return nil, &ecerror.TranslationError{Cause: ecerror.ErrNoVariant, Symbol: sym}
	}

	varIdx, ok := selectVariant(rule, attrs)
	if !ok || varIdx >= len(mapRule.Alts) {
		return nil, &ecerror.TranslationError{Cause: ecerror.ErrNoVariant, Symbol: sym}
	}

	var captures map[string]*Value
	if attrs.Kind == KindMap {
		captures = attrs.Map
	}
	return applyMapAlt(g, mapRule.Alts[varIdx], captures)
}

// selectVariant identifies which format alternative was matched, per
// spec.md §4.2.4: compare attrs' capture-name set against each
// alternative's declared captures, or (when attrs is plain text)
// re-match each alternative's regex against it and take the first
// that matches.
func selectVariant(rule *grammar.FormatRule, attrs *Value) (int, bool) {
	switch attrs.Kind {
	case KindMap:
		for i, alt := range rule.Alts {
			if captureSetEquals(attrs.Map, alt.Capture) {
				return i, true
			}
		}
	case KindText:
		for i, alt := range rule.Alts {
			ok, err := alt.Rx.MatchString(attrs.Text)
			if err == nil && ok {
				return i, true
			}
		}
	}
	return 0, false
}

func captureSetEquals(attrs map[string]*Value, names []string) bool {
	if len(attrs) != len(names) {
		return false
	}
	for _, n := range names {
		if _, ok := attrs[n]; !ok {
			return false
		}
	}
	return true
}

func applyMapAlt(g *grammar.Grammar, alt *grammar.MapAlt, captures map[string]*Value) (ir.Value, error) {
	results := make([]ir.Value, 0, len(alt.Instructions))
	for _, instr := range alt.Instructions {
		iv, err := applyInstruction(g, instr, captures)
		if err != nil {
			return nil, err
		}
		results = append(results, iv)
	}
	return ir.Single(results), nil
}

func applyInstruction(g *grammar.Grammar, instr grammar.Instruction, captures map[string]*Value) (ir.Value, error) {
	opcode, err := resolveToken(g, instr.Opcode, captures)
	if err != nil {
		return nil, err
	}

	if instr.Tgt == nil && instr.Src == nil {
		return opcode, nil
	}

	out := &ir.Instr{Opcode: opcode}
	if instr.Tgt != nil {
		v, err := resolveToken(g, *instr.Tgt, captures)
		if err != nil {
			return nil, err
		}
		out.Tgt = ir.Operand{Present: true, Value: v}
	}
	if instr.Src != nil {
		v, err := resolveToken(g, *instr.Src, captures)
		if err != nil {
			return nil, err
		}
		out.Src = ir.Operand{Present: true, Value: v}
	}
	return out, nil
}

// resolveToken resolves one opcode/tgt/src token per spec.md §3's
// prefix rules: a plain name is a literal opcode (only valid in
// opcode position, but harmless to allow positionally for an operand
// too); &name recursively translates the captured subtree; #name is
// an explicit literal; *name is a symbol reference. Both positions
// share this resolution since the four kinds behave identically
// wherever they appear.
func resolveToken(g *grammar.Grammar, tok grammar.OperandToken, captures map[string]*Value) (ir.Value, error) {
	switch tok.Kind {
	case grammar.KindName:
		return ir.Atom{Kind: ir.Plain, Text: tok.Name}, nil
	case grammar.KindDeref:
		sub, ok := captures[tok.Name]
		if !ok {
			return nil, &ecerror.TranslationError{Cause: ecerror.ErrNoVariant, Symbol: tok.Name}
		}
		return Translate(g, sub)
	case grammar.KindExplicit:
		text, ok := captureText(captures, tok.Name)
		if !ok {
			return nil, &ecerror.TranslationError{Cause: ecerror.ErrNoVariant, Symbol: tok.Name}
		}
		return ir.Atom{Kind: ir.Literal, Text: text}, nil
	case grammar.KindSymbol:
		text, ok := captureText(captures, tok.Name)
		if !ok {
			return nil, &ecerror.TranslationError{Cause: ecerror.ErrNoVariant, Symbol: tok.Name}
		}
		return ir.Atom{Kind: ir.Symbol, Text: text}, nil
	default:
		return nil, &ecerror.TranslationError{Cause: ecerror.ErrNoVariant, Symbol: tok.Name}
	}
}

func captureText(captures map[string]*Value, name string) (string, bool) {
	v, ok := captures[name]
	if !ok || v.Kind != KindText {
		return "", false
	}
	return v.Text, true
}
