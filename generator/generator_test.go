package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/arj0019/eccgen/ecerror"
	"github.com/arj0019/eccgen/grammar"
	"github.com/arj0019/eccgen/ir"
	"github.com/arj0019/eccgen/parser"
)

func mustLoad(t *testing.T, text string) *grammar.Grammar {
	t.Helper()
	g, err := grammar.Load(text)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return g
}

// TestGenerateMinimalEcho exercises spec.md §8 scenario 1's generation
// half directly: a bare literal atom (no enclosing instruction) is
// rendered as its own text.
func TestGenerateMinimalEcho(t *testing.T) {
	g := mustLoad(t, `.fmt S ::= $tgt .map S ::= S,#tgt`)
	got, err := Generate(context.Background(), g, ir.Atom{Kind: ir.Literal, Text: "hello"}, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hello" {
		t.Fatalf("Generate() = %q, want %q", got, "hello")
	}
}

// TestGenerateSymbolUseBeforeDeclarationFails exercises spec.md §8
// scenario 3's first half: a mov targeting x (freshly declared, so it
// succeeds) but sourcing from y, which was never declared, fails.
func TestGenerateSymbolUseBeforeDeclarationFails(t *testing.T) {
	g := mustLoad(t, `.fmt mov ::= !tgt := &src .map mov ::= mov *tgt,*src`)
	node := &ir.Instr{
		Opcode: ir.Atom{Kind: ir.Plain, Text: "mov"},
		Tgt:    ir.Operand{Present: true, Value: ir.Atom{Kind: ir.Symbol, Text: "x"}},
		Src:    ir.Operand{Present: true, Value: ir.Atom{Kind: ir.Symbol, Text: "y"}},
	}
	_, err := Generate(context.Background(), g, node, nil)
	if err == nil {
		t.Fatalf("expected an undeclared-symbol error")
	}
	if !errors.Is(err, ecerror.ErrUndeclaredSymbol) {
		t.Fatalf("Generate() error = %v, want ErrUndeclaredSymbol", err)
	}
}

// TestGenerateAddressAllocationOrder exercises spec.md §8 scenario 3's
// second half: declaring y then using it from a mov targeting x
// allocates y=0, x=2 (addresses start at -2 and the first allocation
// advances the cursor before reading it; see DESIGN.md), and the mov
// line renders "2 := 0".
func TestGenerateAddressAllocationOrder(t *testing.T) {
	g := mustLoad(t, `.fmt set ::= !tgt .fmt mov ::= !tgt := &src .map set ::= set *tgt .map mov ::= mov *tgt,*src`)
	seq := ir.Seq{
		&ir.Instr{
			Opcode: ir.Atom{Kind: ir.Plain, Text: "set"},
			Tgt:    ir.Operand{Present: true, Value: ir.Atom{Kind: ir.Symbol, Text: "y"}},
		},
		&ir.Instr{
			Opcode: ir.Atom{Kind: ir.Plain, Text: "mov"},
			Tgt:    ir.Operand{Present: true, Value: ir.Atom{Kind: ir.Symbol, Text: "x"}},
			Src:    ir.Operand{Present: true, Value: ir.Atom{Kind: ir.Symbol, Text: "y"}},
		},
	}
	got, err := Generate(context.Background(), g, seq, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := "02 := 0"
	if got != want {
		t.Fatalf("Generate() = %q, want %q", got, want)
	}
}

// TestGenerateDeclaredOperandDeref exercises the nested-IR ("&") operand
// path: an instruction's src is itself a nested instruction rather than
// a plain atom, so the generator must recurse to render it and may
// allocate an anonymous slot for a "!" placeholder alongside it.
func TestGenerateDeclaredOperandDeref(t *testing.T) {
	g := mustLoad(t, `.fmt lit ::= $val .fmt box ::= [&val] .map lit ::= lit #val .map box ::= box &val`)
	inner := &ir.Instr{
		Opcode: ir.Atom{Kind: ir.Plain, Text: "lit"},
		Tgt:    ir.Operand{Present: true, Value: ir.Atom{Kind: ir.Literal, Text: "val"}},
	}
	outer := &ir.Instr{
		Opcode: ir.Atom{Kind: ir.Plain, Text: "box"},
		Tgt:    ir.Operand{Present: true, Value: inner},
	}
	got, err := Generate(context.Background(), g, outer, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := "[val]"
	if got != want {
		t.Fatalf("Generate() = %q, want %q", got, want)
	}
}

// TestRoundTripIdentity exercises spec.md §8 scenario 6: the same
// grammar used as both source and target reproduces the original text
// for the minimal-echo grammar, since translating collapses to a bare
// atom and generating a bare atom re-emits it verbatim.
func TestRoundTripIdentity(t *testing.T) {
	text := `.fmt S ::= (?P<tok>\w+) .map S ::= #tok`
	g := mustLoad(t, text)

	iv, err := parser.Parse(context.Background(), g, "hello", nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, err := Generate(context.Background(), g, iv, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hello" {
		t.Fatalf("round trip = %q, want original %q", got, "hello")
	}
}
