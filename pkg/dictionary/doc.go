// Package dictionary implements the compiled binary dictionary: the lexicon
// FST with its entry tables, the part-of-speech table, the connection cost
// matrix and the character category table. A loaded Store is immutable and
// safe for concurrent lookups.
package dictionary

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'wakachi.dict'
func tracer() tracing.Trace {
	return tracing.Select("wakachi.dict")
}
