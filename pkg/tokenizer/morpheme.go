package tokenizer

import (
	"github.com/ymatsuda/wakachi/pkg/dictionary"
)

// MorphemeList is the result of one analysis. It shares the analyzed input
// and dictionary store across its morphemes, so accessors stay cheap.
type MorphemeList struct {
	input *inputText
	store *dictionary.Store
	path  []node
	cost  int32
}

// Len returns the number of morphemes.
func (l *MorphemeList) Len() int { return len(l.path) }

// Get returns the i-th morpheme.
func (l *MorphemeList) Get(i int) Morpheme {
	return Morpheme{list: l, node: l.path[i]}
}

// InternalCost is the total cost of the chosen lattice path, connection
// costs to both sentinels included. Split expansion does not change it.
func (l *MorphemeList) InternalCost() int { return int(l.cost) }

// Surfaces returns the surface of every morpheme, in order.
func (l *MorphemeList) Surfaces() []string {
	out := make([]string, len(l.path))
	for i := range l.path {
		out[i] = l.Get(i).Surface()
	}
	return out
}

// Morpheme is one analyzed unit. Its byte offsets refer to the text the
// caller passed to Tokenize, not to any normalized form.
type Morpheme struct {
	list *MorphemeList
	node node
}

func (m Morpheme) wordInfo() dictionary.WordInfo {
	if m.node.info != nil {
		return *m.node.info
	}
	return m.list.store.WordInfo(m.node.wordID)
}

// Surface returns the matched slice of the original text.
func (m Morpheme) Surface() string {
	return m.list.input.originalSlice(m.node.begin, m.node.end)
}

// Start returns the byte offset of the morpheme in the original text.
func (m Morpheme) Start() int { return m.list.input.originalOffset(m.node.begin) }

// End returns the byte offset just past the morpheme in the original text.
func (m Morpheme) End() int { return m.list.input.originalOffset(m.node.end) }

// PartOfSpeech returns the POS tuple of the morpheme.
func (m Morpheme) PartOfSpeech() dictionary.POS {
	return m.list.store.Grammar().PartOfSpeech(m.PartOfSpeechID())
}

// PartOfSpeechID returns the id of the POS tuple in the merged POS table.
func (m Morpheme) PartOfSpeechID() int { return int(m.wordInfo().POSID) }

// DictionaryForm returns the uninflected form registered for the entry.
func (m Morpheme) DictionaryForm() string { return m.wordInfo().DictionaryForm }

// NormalizedForm returns the normalized spelling registered for the entry.
func (m Morpheme) NormalizedForm() string { return m.wordInfo().NormalizedForm }

// ReadingForm returns the reading registered for the entry.
func (m Morpheme) ReadingForm() string { return m.wordInfo().ReadingForm }

// IsOOV reports whether the morpheme was synthesized rather than found in a
// dictionary.
func (m Morpheme) IsOOV() bool { return m.node.oov }

// WordID returns the qualified dictionary word id, or -1 for synthesized
// morphemes.
func (m Morpheme) WordID() int32 { return m.node.wordID }

// DictionaryID returns which merged dictionary the morpheme came from: 0 for
// the system dictionary, 1 and up for user dictionaries, -1 when synthesized.
func (m Morpheme) DictionaryID() int {
	if m.node.oov {
		return -1
	}
	return dictionary.DictID(m.node.wordID)
}

// Split re-expands this morpheme at another granularity. Splitting a unit
// that has no recorded split at that granularity yields the unit itself.
func (m Morpheme) Split(mode Mode) *MorphemeList {
	path := m.list.splitPath([]node{m.node}, mode)
	return &MorphemeList{
		input: m.list.input,
		store: m.list.store,
		path:  path,
		cost:  m.list.cost,
	}
}

// splitPath expands compound path nodes to the requested granularity. Mode C
// keeps the path as searched; modes A and B substitute each node's recorded
// split, recursively for mode A.
func (l *MorphemeList) splitPath(path []node, mode Mode) []node {
	if mode == ModeC {
		return path
	}
	out := make([]node, 0, len(path))
	for _, n := range path {
		out = l.expand(out, n, mode)
	}
	return out
}

func (l *MorphemeList) expand(out []node, n node, mode Mode) []node {
	if n.oov {
		return append(out, n)
	}
	wi := l.store.WordInfo(n.wordID)
	split := wi.BUnitSplit
	if mode == ModeA {
		split = wi.AUnitSplit
	}
	if len(split) < 2 {
		return append(out, n)
	}
	offset := n.begin
	for _, wid := range split {
		swi := l.store.WordInfo(wid)
		sub := node{
			begin:     offset,
			end:       offset + swi.HeadwordLength,
			leftID:    l.store.LeftID(wid),
			rightID:   l.store.RightID(wid),
			cost:      l.store.Cost(wid),
			wordID:    wid,
			connected: true,
		}
		offset = sub.end
		if mode == ModeA {
			out = l.expand(out, sub, mode)
		} else {
			out = append(out, sub)
		}
	}
	return out
}
