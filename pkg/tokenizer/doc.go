// Package tokenizer analyzes text into morphemes using a compiled
// dictionary: it builds a lattice of dictionary matches and synthesized
// out-of-vocabulary candidates over the input, finds the minimum-cost path
// through it, and expands the path to the requested split granularity.
package tokenizer

import (
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("wakachi.tokenizer")
}
