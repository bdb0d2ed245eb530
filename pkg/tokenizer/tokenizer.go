package tokenizer

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ymatsuda/wakachi/pkg/dictionary"
)

// Mode selects the split granularity of analysis results.
type Mode int

const (
	// ModeA yields the finest units the dictionary defines.
	ModeA Mode = iota
	// ModeB yields middle units, one split level below compounds.
	ModeB
	// ModeC yields compound words as the dictionary registered them.
	ModeC
)

func (m Mode) String() string {
	switch m {
	case ModeA:
		return "A"
	case ModeB:
		return "B"
	case ModeC:
		return "C"
	}
	return "?"
}

// ParseMode resolves a mode name ("A", "B" or "C", case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch s {
	case "A", "a":
		return ModeA, nil
	case "B", "b":
		return ModeB, nil
	case "C", "c":
		return ModeC, nil
	}
	return ModeC, fmt.Errorf("tokenizer: unknown split mode %q", s)
}

// ErrNoDictionary is returned by New when no dictionary store is supplied.
var ErrNoDictionary = errors.New("tokenizer: no dictionary")

// DefaultCacheSize is the number of analyzed inputs kept by the result
// cache when no explicit size is configured.
const DefaultCacheSize = 1024

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithNormalizer installs text normalizers that run before analysis, in the
// order given. Repeated options accumulate.
func WithNormalizer(ns ...Normalizer) Option {
	return func(t *Tokenizer) { t.normalizers = append(t.normalizers, ns...) }
}

// WithCacheSize sets the analysis cache capacity. Zero disables caching.
func WithCacheSize(size int) Option {
	return func(t *Tokenizer) { t.cacheSize = size }
}

// Tokenizer runs morphological analysis against one dictionary store. It is
// immutable after construction and safe for concurrent use.
type Tokenizer struct {
	store       *dictionary.Store
	normalizers []Normalizer
	oov         *oovProvider
	cacheSize   int
	cache       *lru.Cache[cacheKey, *MorphemeList]
}

type cacheKey struct {
	text string
	mode Mode
}

// New builds a tokenizer over store. If the store carries user dictionary
// entries with unresolved costs, they are estimated here, before the
// tokenizer is published to any other goroutine.
func New(store *dictionary.Store, opts ...Option) (*Tokenizer, error) {
	if store == nil {
		return nil, ErrNoDictionary
	}
	t := &Tokenizer{
		store:     store,
		oov:       &oovProvider{chars: store.CharTable()},
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.cacheSize > 0 {
		cache, err := lru.New[cacheKey, *MorphemeList](t.cacheSize)
		if err != nil {
			return nil, err
		}
		t.cache = cache
	}
	if store.HasUnresolvedCosts() {
		store.ResolveUserCosts(func(surface string) (int, int) {
			ms := t.analyze(surface, ModeC)
			return ms.InternalCost(), ms.Len()
		})
	}
	return t, nil
}

// Tokenize analyzes text and returns its morphemes at the granularity of
// mode. The empty input yields an empty list.
func (t *Tokenizer) Tokenize(text string, mode Mode) *MorphemeList {
	if text == "" {
		return &MorphemeList{store: t.store}
	}
	key := cacheKey{text: text, mode: mode}
	if t.cache != nil {
		if ms, ok := t.cache.Get(key); ok {
			return ms
		}
	}
	ms := t.analyze(text, mode)
	if t.cache != nil {
		t.cache.Add(key, ms)
	}
	return ms
}

func (t *Tokenizer) analyze(text string, mode Mode) *MorphemeList {
	builder := newInputBuilder(text)
	for _, n := range t.normalizers {
		n.Rewrite(builder)
	}
	in := builder.build(t.store.CharTable())

	la := t.buildLattice(in)
	ms := &MorphemeList{
		input: in,
		store: t.store,
		path:  la.bestPath(),
		cost:  la.pathCost(),
	}
	ms.path = ms.splitPath(ms.path, mode)
	tracer().Debugf("tokenize %q mode %s: %d morphemes, cost %d",
		text, mode, ms.Len(), ms.cost)
	return ms
}

// buildLattice inserts dictionary matches and OOV candidates at every word
// boundary reachable from the start of the input.
func (t *Tokenizer) buildLattice(in *inputText) *lattice {
	la := newLattice(t.store.Grammar(), in.len())
	for off := 0; off < in.len(); off++ {
		if !in.canBow(off) || !la.hasPreviousNode(off) {
			continue
		}
		hasWords := false
		for _, m := range t.store.Lookup(in.bytes, off) {
			if m.End < in.len() && !in.canBow(m.End) {
				continue
			}
			cost := t.store.Cost(m.WordID)
			if cost == dictionary.CostNeedsEstimation {
				// entries awaiting cost estimation must not influence the
				// very analysis that estimates them
				continue
			}
			la.insert(node{
				begin:   off,
				end:     m.End,
				leftID:  t.store.LeftID(m.WordID),
				rightID: t.store.RightID(m.WordID),
				cost:    cost,
				wordID:  m.WordID,
			})
			hasWords = true
		}
		inserted := 0
		if !in.categoriesAt(off).Has(dictionary.CatNoOOVBow) {
			inserted = t.oov.provide(la, in, off, hasWords)
		}
		if !hasWords && inserted == 0 {
			if t.oov.provideFallback(la, in, off) == 0 {
				panic("lattice: no candidate at boundary")
			}
		}
	}
	la.connectEOS()
	return la
}

