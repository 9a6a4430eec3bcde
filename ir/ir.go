// Package ir defines the intermediate representation values that flow
// between the parser and the generator.
//
// An IR value is one of three tagged variants, matching the atom /
// instruction-node / sequence sketch of the grammar format: an Atom
// (a plain string, an explicit literal, or a symbol reference), an
// Instr (an opcode plus optional tgt/src operands, each itself a
// Value), or a Seq (an ordered list of Values). Untyped maps are
// avoided in favor of these concrete variants so that opcode tagging
// (literal vs symbol vs name) is a compile-time distinction instead of
// a leading-character sniff repeated at every call site.
package ir

import "fmt"

// Kind tags how an Atom's text should be interpreted.
type Kind uint8

const (
	// Plain is an ordinary opcode name or untagged text.
	Plain Kind = iota
	// Literal is explicit text introduced by a '#' prefix in the grammar.
	Literal
	// Symbol is a named-address reference introduced by a '*' prefix.
	Symbol
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Symbol:
		return "symbol"
	default:
		return "plain"
	}
}

// Value is implemented by Atom, *Instr, and Seq.
type Value interface {
	isValue()
	String() string
}

// Atom is a leaf IR value: a string tagged with how it was introduced.
type Atom struct {
	Kind Kind
	Text string
}

func (Atom) isValue() {}

func (a Atom) String() string {
	switch a.Kind {
	case Literal:
		return "#" + a.Text
	case Symbol:
		return "*" + a.Text
	default:
		return a.Text
	}
}

// NewAtom builds an Atom from matched text, inferring its Kind from a
// leading '#' or '*' the way the grammar format tags opcodes and
// operands (spec §3, "IR node").
func NewAtom(text string) Atom {
	if len(text) == 0 {
		return Atom{Kind: Plain, Text: text}
	}
	switch text[0] {
	case '#':
		return Atom{Kind: Literal, Text: text[1:]}
	case '*':
		return Atom{Kind: Symbol, Text: text[1:]}
	default:
		return Atom{Kind: Plain, Text: text}
	}
}

// Operand is an operand slot in an Instr: either present (with a
// Value attached, which may itself be a nested Instr/Seq for a
// dereferenced '&' operand, or an Atom for a '#'/'*' operand) or
// absent.
type Operand struct {
	Present bool
	Value   Value
}

// Instr is an instruction node: an opcode plus an optional target and
// source operand.
type Instr struct {
	Opcode Value
	Tgt    Operand
	Src    Operand
}

func (*Instr) isValue() {}

func (n *Instr) String() string {
	return fmt.Sprintf("%s{tgt:%v,src:%v}", n.Opcode, n.Tgt, n.Src)
}

func (o Operand) String() string {
	if !o.Present {
		return "-"
	}
	return o.Value.String()
}

// Seq is an ordered sequence of IR values.
type Seq []Value

func (Seq) isValue() {}

func (s Seq) String() string {
	out := "["
	for i, v := range s {
		if i > 0 {
			out += " "
		}
		out += v.String()
	}
	return out + "]"
}

// Single collapses a one-element Seq down to its sole element, the
// way translation collapses a length-1 instruction list to a single
// IR node (spec §4.2.4, "Translation returns a single IR node when
// the result has length 1").
func Single(vs []Value) Value {
	if len(vs) == 1 {
		return vs[0]
	}
	return Seq(vs)
}
