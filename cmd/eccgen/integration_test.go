package main

import (
	"context"
	"errors"
	"testing"

	"github.com/arj0019/eccgen/ecerror"
	"github.com/arj0019/eccgen/generator"
	"github.com/arj0019/eccgen/grammar"
	"github.com/arj0019/eccgen/ir"
	"github.com/arj0019/eccgen/optimizer"
	"github.com/arj0019/eccgen/parser"
)

// TestEndToEndScenarios runs spec.md §8's six concrete scenarios
// through the same library entry points the translate/check/trace
// subcommands call (grammar.Load, parser.Parse/ParseAST,
// optimizer.Optimize, generator.Generate), rather than through cobra
// itself — cobra only wires flags onto these calls, it does not
// change their behavior.
func TestEndToEndScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("minimal echo", func(t *testing.T) {
		src, err := grammar.Load(`.fmt S ::= (?P<tok>\w+) .map S ::= #tok`)
		if err != nil {
			t.Fatalf("Load(source) error = %v", err)
		}
		tgt, err := grammar.Load(`.fmt S ::= $tgt .map S ::= S,#tgt`)
		if err != nil {
			t.Fatalf("Load(target) error = %v", err)
		}

		iv, err := parser.Parse(ctx, src, "hello", nil)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		want := ir.Atom{Kind: ir.Literal, Text: "hello"}
		if iv.String() != want.String() {
			t.Fatalf("IR = %v, want %v", iv, want)
		}

		iv = optimizer.Optimize(iv)
		out, err := generator.Generate(ctx, tgt, iv, nil)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if out != "hello" {
			t.Fatalf("Generate() = %q, want %q", out, "hello")
		}
	})

	t.Run("balanced parentheses", func(t *testing.T) {
		g, err := grammar.Load(`.bal () .fmt E ::= \((?P<inner>.*?)\) .map E ::= *inner`)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		iv, err := parser.Parse(ctx, g, "(a(b)c)", nil)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		want := ir.Atom{Kind: ir.Symbol, Text: "a@1(b@1)c"}
		if iv.String() != want.String() {
			t.Fatalf("IR = %v, want %v (inner must bind to the balanced interior of the outermost pair)", iv, want)
		}
	})

	t.Run("symbol declaration and use", func(t *testing.T) {
		g, err := grammar.Load(`.fmt set ::= !tgt .fmt mov ::= !tgt := &src .map set ::= set *tgt .map mov ::= mov *tgt,*src`)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		useBeforeDecl := &ir.Instr{
			Opcode: ir.Atom{Kind: ir.Plain, Text: "mov"},
			Tgt:    ir.Operand{Present: true, Value: ir.Atom{Kind: ir.Symbol, Text: "x"}},
			Src:    ir.Operand{Present: true, Value: ir.Atom{Kind: ir.Symbol, Text: "y"}},
		}
		if _, err := generator.Generate(ctx, g, useBeforeDecl, nil); !errors.Is(err, ecerror.ErrUndeclaredSymbol) {
			t.Fatalf("Generate() error = %v, want ErrUndeclaredSymbol", err)
		}

		declThenUse := ir.Seq{
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
		out, err := generator.Generate(ctx, g, declThenUse, nil)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if want := "02 := 0"; out != want {
			t.Fatalf("Generate() = %q, want %q (y=0, x=2, mov renders \"2 := 0\")", out, want)
		}
	})

	t.Run("delimiter collapse", func(t *testing.T) {
		g, err := grammar.Load(`.bal {} .fmt B ::= \{(?P<B>.*?)\} | (?P<w>\w+)`)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		ast, err := parser.ParseAST(ctx, g, "{{a}}", nil)
		if err != nil {
			t.Fatalf("ParseAST() error = %v", err)
		}
		if ast.Kind != parser.KindMap || len(ast.Map) != 1 {
			t.Fatalf("AST = %+v, want a single-key map", ast)
		}
		inner, ok := ast.Map["B"]
		if !ok || inner.Kind != parser.KindMap || len(inner.Map) != 1 {
			t.Fatalf("AST = %+v, want two nodes deep", ast)
		}
	})

	t.Run("deletion then substitution", func(t *testing.T) {
		g, err := grammar.Load(`.del ;\s* .sub a;b .fmt S ::= (?P<w>\w+)`)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		// Deletion runs first and collapses the "; "-separated run of
		// a's into one contiguous span before substitution ever sees
		// the text, so the three a's become one substituted span
		// ("bbb") rather than three independent "b" nodes; see
		// parser/preprocess_test.go.
		ast, err := parser.ParseAST(ctx, g, "a; a; a", nil)
		if err != nil {
			t.Fatalf("ParseAST() error = %v", err)
		}
		if ast.Kind != parser.KindMap {
			t.Fatalf("AST = %+v, want a map node keyed by S", ast)
		}
		s, ok := ast.Map["S"]
		if !ok || s.Kind != parser.KindMap {
			t.Fatalf("AST = %+v, want {S: {w: ...}}", ast)
		}
		w, ok := s.Map["w"]
		if !ok || w.Text != "bbb" {
			t.Fatalf("AST = %+v, want w == \"bbb\"", ast)
		}
	})

	t.Run("round-trip identity", func(t *testing.T) {
		text := `.fmt S ::= (?P<tok>\w+) .map S ::= #tok`
		g, err := grammar.Load(text)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		iv, err := parser.Parse(ctx, g, "hello", nil)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		out, err := generator.Generate(ctx, g, iv, nil)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if out != "hello" {
			t.Fatalf("round trip = %q, want original %q", out, "hello")
		}
	})
}
