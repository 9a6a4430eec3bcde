// Package optimizer is the reserved Optimizer stage (spec.md §4.3): an
// identity transformation over the IR, kept as a separate package so a
// future non-identity pass has somewhere to live without disturbing
// the parser/generator boundary.
package optimizer

import "github.com/arj0019/eccgen/ir"

// Optimize returns ir unchanged. Any future optimization pass must
// preserve structural equivalence with its input when no rewrite
// applies; this identity implementation trivially satisfies that by
// doing nothing.
func Optimize(v ir.Value) ir.Value {
	return v
}
