// Package parser implements the Parser stage (spec.md §4.2): source
// preprocessing, recursive-descent matching against a source grammar,
// tree reduction, and AST→IR translation.
package parser

import (
	"context"

	"go.uber.org/zap"

	"github.com/arj0019/eccgen/grammar"
	"github.com/arj0019/eccgen/ir"
)

// ParseAST runs the preprocess/match/reduce portion of spec.md §4.2,
// stopping short of translation to IR. It exists for callers that need
// the reduced AST itself (e.g. the CLI's trace subcommand); Parse
// calls it and then translates the result.
func ParseAST(ctx context.Context, g *grammar.Grammar, source string, log *zap.SugaredLogger) (*Value, error) {
	text, err := preprocess(g, source)
	if err != nil {
		return nil, err
	}
	if log != nil {
		log.Debugw("preprocessed source", "length", len(text))
	}

	nodes, err := match(ctx, g, text, g.Targets(), log)
	if err != nil {
		return nil, err
	}

	reduced := Reduce(listValue(nodes))
	if log != nil {
		log.Debugw("reduced AST", "kind", reduced.Kind)
	}
	return reduced, nil
}

// Parse runs the full parser pipeline over source text under a
// grammar's rules, per spec.md §4.2: preprocess, recursive-descent
// match, reduce, translate. log may be nil; when set it receives
// debug-level traces of each alternative attempted (spec SPEC_FULL.md
// §4.2's "structured logging").
func Parse(ctx context.Context, g *grammar.Grammar, source string, log *zap.SugaredLogger) (ir.Value, error) {
	reduced, err := ParseAST(ctx, g, source, log)
	if err != nil {
		return nil, err
	}
	return Translate(g, reduced)
}
