package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/arj0019/eccgen/ecerror"
)

func TestLoadMinimalEcho(t *testing.T) {
	g, err := Load(`.fmt S ::= (?P<tok>\w+) .map S ::= #tok`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rule, ok := g.Format("S")
	if !ok || len(rule.Alts) != 1 {
		t.Fatalf("format S missing or wrong arity: %+v", rule)
	}

	mr, ok := g.Map("S")
	if !ok || len(mr.Alts) != 1 {
		t.Fatalf("map S missing or wrong arity: %+v", mr)
	}
	instr := mr.Alts[0].Instructions[0]
	if instr.Opcode.Kind != KindExplicit || instr.Opcode.Name != "tok" {
		t.Fatalf("opcode = %+v, want explicit tok", instr.Opcode)
	}
	if instr.Tgt != nil || instr.Src != nil {
		t.Fatalf("expected no operands, got tgt=%v src=%v", instr.Tgt, instr.Src)
	}
}

func TestLoadBalancedDelimiters(t *testing.T) {
	g, err := Load(`.bal () .fmt E ::= \((?P<inner>.*?)\)`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rule, _ := g.Format("E")
	alt := rule.Alts[0]

	if !strings.Contains(alt.Raw, "(?P<d0>@[0-9]+)") {
		t.Fatalf("expected prefix group d0 embedded, got %q", alt.Raw)
	}
	if !strings.Contains(alt.Raw, "(?P=d0)") {
		t.Fatalf("expected backreference to d0 embedded, got %q", alt.Raw)
	}

	var hasInner bool
	for _, c := range alt.Capture {
		if c == "inner" {
			hasInner = true
		}
		if c == "d0" {
			t.Fatalf("synthetic delimiter group d0 leaked into Capture: %v", alt.Capture)
		}
	}
	if !hasInner {
		t.Fatalf("expected capture group 'inner' to survive, got %v", alt.Capture)
	}
}

func TestLoadUnbalancedDelimitersFails(t *testing.T) {
	_, err := Load(`.bal () .fmt E ::= \(\((?P<inner>.*?)\)`)
	if err == nil {
		t.Fatalf("expected an unbalanced-delimiter error")
	}
	var ge *ecerror.GrammarError
	if !errors.As(err, &ge) {
		t.Fatalf("error = %v, want *ecerror.GrammarError", err)
	}
	if !errors.Is(err, ecerror.ErrUnbalancedDelimiters) {
		t.Fatalf("error = %v, want ErrUnbalancedDelimiters", err)
	}
}

func TestArityMismatchFails(t *testing.T) {
	_, err := Load(`.fmt S ::= (?P<a>\w+) | (?P<b>\w+) .map S ::= #a`)
	if err == nil {
		t.Fatalf("expected an arity-mismatch error")
	}
	if !errors.Is(err, ecerror.ErrArityMismatch) {
		t.Fatalf("error = %v, want ErrArityMismatch", err)
	}
}

func TestOriginsEmptyMeansAllFormatsAreRoots(t *testing.T) {
	g, err := Load(`.fmt A ::= (?P<a>a) .fmt B ::= (?P<b>b)`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(g.Origins) != 0 {
		t.Fatalf("expected no .org declarations, got %v", g.Origins)
	}
	targets := g.Targets()
	if len(targets) != 2 {
		t.Fatalf("expected both formats eligible as roots, got %d", len(targets))
	}
	if !g.IsRoot("A") || !g.IsRoot("B") {
		t.Fatalf("expected both A and B to be roots")
	}
}

func TestOriginsRestrictRoots(t *testing.T) {
	g, err := Load(`.org B .fmt A ::= (?P<a>a) .fmt B ::= (?P<b>b)`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if g.IsRoot("A") {
		t.Fatalf("A should not be a root once .org declares B")
	}
	if !g.IsRoot("B") {
		t.Fatalf("B should be a root")
	}
	targets := g.Targets()
	if len(targets) != 1 || targets[0].Symbol != "B" {
		t.Fatalf("expected only B as a target, got %+v", targets)
	}
}

func TestLoadDeletionAndSubstitution(t *testing.T) {
	g, err := Load(`.del ;+ .sub a;b .fmt S ::= (?P<w>\w+)`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(g.Deletions) != 1 || len(g.Substitutions) != 1 {
		t.Fatalf("expected 1 deletion and 1 substitution, got %d/%d", len(g.Deletions), len(g.Substitutions))
	}
	if g.Substitutions[0].Source != "a" || g.Substitutions[0].Replacement != "b" {
		t.Fatalf("substitution = %+v, want a->b", g.Substitutions[0])
	}
}

func TestDirectSelfReferenceRejected(t *testing.T) {
	_, err := Load(`.fmt S ::= (?P<S>.*)x`)
	if err == nil {
		t.Fatalf("expected direct left recursion to be rejected")
	}
}

func TestMapInstructionOperandKinds(t *testing.T) {
	g, err := Load(`.fmt mov ::= (?P<tgt>\w+):=(?P<src>\w+) .map mov ::= mov &tgt,&src`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	mr, _ := g.Map("mov")
	instr := mr.Alts[0].Instructions[0]
	if instr.Opcode.Kind != KindName || instr.Opcode.Name != "mov" {
		t.Fatalf("opcode = %+v, want literal name mov", instr.Opcode)
	}
	if instr.Tgt == nil || instr.Tgt.Kind != KindDeref || instr.Tgt.Name != "tgt" {
		t.Fatalf("tgt = %+v, want deref tgt", instr.Tgt)
	}
	if instr.Src == nil || instr.Src.Kind != KindDeref || instr.Src.Name != "src" {
		t.Fatalf("src = %+v, want deref src", instr.Src)
	}
}
