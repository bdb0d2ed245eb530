package dictionary

import (
	"fmt"
	"unicode/utf8"

	"github.com/blevesearch/vellum"
)

// Match is one common-prefix lookup hit: a word id and the byte offset just
// past its surface in the queried text.
type Match struct {
	WordID int32
	End    int
}

// Lexicon is the compiled lexicon of a single dictionary: an FST keyed by
// surface bytes whose values point into a word-id table (homographs share a
// surface), plus flat parameter and word-info tables.
type Lexicon struct {
	fst           *vellum.FST
	wordIDs       []byte
	params        []int16
	infos         wordInfoList
	maxSurfaceLen int
}

const paramStride = 3 // leftID, rightID, cost

// Size returns the number of entries.
func (l *Lexicon) Size() int { return len(l.params) / paramStride }

// LeftID returns the left connection id of an entry.
func (l *Lexicon) LeftID(wordID int32) int16 { return l.params[paramStride*wordID] }

// RightID returns the right connection id of an entry.
func (l *Lexicon) RightID(wordID int32) int16 { return l.params[paramStride*wordID+1] }

// Cost returns the occurrence cost of an entry.
func (l *Lexicon) Cost(wordID int32) int16 { return l.params[paramStride*wordID+2] }

func (l *Lexicon) setCost(wordID int32, cost int16) { l.params[paramStride*wordID+2] = cost }

// WordInfo decodes the lexical payload of an entry.
func (l *Lexicon) WordInfo(wordID int32) WordInfo { return l.infos.get(wordID) }

// Lookup performs a common-prefix search: every entry whose surface is a
// prefix of text[offset:], shortest surface first, homographs in compiled
// order. Prefix lengths are probed at character boundaries only, bounded by
// the longest surface in the lexicon.
func (l *Lexicon) Lookup(text []byte, offset int) []Match {
	if l.fst == nil {
		return nil
	}
	var matches []Match
	limit := offset + l.maxSurfaceLen
	if limit > len(text) {
		limit = len(text)
	}
	for end := offset; end < limit; {
		_, size := utf8.DecodeRune(text[end:])
		end += size
		val, ok, err := l.fst.Get(text[offset:end])
		if err != nil || !ok {
			continue
		}
		for _, id := range l.wordIDsAt(val) {
			matches = append(matches, Match{WordID: id, End: end})
		}
	}
	return matches
}

// ExactMatch returns the ids of all entries whose surface equals surface.
func (l *Lexicon) ExactMatch(surface string) []int32 {
	if l.fst == nil {
		return nil
	}
	val, ok, err := l.fst.Get([]byte(surface))
	if err != nil || !ok {
		return nil
	}
	return l.wordIDsAt(val)
}

func (l *Lexicon) wordIDsAt(offset uint64) []int32 {
	r := newReader(l.wordIDs)
	r.pos = int(offset)
	n, err := r.u8()
	if err != nil {
		return nil
	}
	ids := make([]int32, 0, n)
	for i := 0; i < int(n); i++ {
		id, err := r.u32()
		if err != nil {
			return nil
		}
		ids = append(ids, int32(id))
	}
	return ids
}

// validateParams rejects entries whose connection ids cannot index a
// leftSize x rightSize matrix, so a corrupt image fails at load instead of
// mid-analysis. Rows with a negative left id are reachable only through
// split references and never connect in the lattice.
func (l *Lexicon) validateParams(leftSize, rightSize int) error {
	for i := 0; i < l.Size(); i++ {
		left := l.params[paramStride*i]
		if left < 0 {
			continue
		}
		right := l.params[paramStride*i+1]
		if int(left) >= leftSize || right < 0 || int(right) >= rightSize {
			return fmt.Errorf("%w: entry %d connection ids (%d, %d) outside %dx%d matrix",
				ErrBadHeader, i, left, right, leftSize, rightSize)
		}
	}
	return nil
}

func (l *Lexicon) close() error {
	if l.fst != nil {
		return l.fst.Close()
	}
	return nil
}

func readLexicon(r *reader) (*Lexicon, error) {
	maxLen, err := r.u32()
	if err != nil {
		return nil, err
	}
	l := &Lexicon{maxSurfaceLen: int(maxLen)}

	trieLen, err := r.u32()
	if err != nil {
		return nil, err
	}
	trieBytes, err := r.bytes(int(trieLen))
	if err != nil {
		return nil, fmt.Errorf("lexicon trie: %w", err)
	}
	if trieLen > 0 {
		if l.fst, err = vellum.Load(trieBytes); err != nil {
			return nil, fmt.Errorf("%w: lexicon trie: %v", ErrBadHeader, err)
		}
	}

	idTableLen, err := r.u32()
	if err != nil {
		return nil, err
	}
	if l.wordIDs, err = r.bytes(int(idTableLen)); err != nil {
		return nil, fmt.Errorf("word id table: %w", err)
	}

	entryCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	raw, err := r.bytes(2 * paramStride * int(entryCount))
	if err != nil {
		return nil, fmt.Errorf("word parameters: %w", err)
	}
	// Copied out of the image: user dictionary cost resolution may rewrite
	// sentinel costs after load, and the mapping is read-only.
	l.params = make([]int16, paramStride*entryCount)
	for i := range l.params {
		l.params[i] = int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
	}

	infoLen, err := r.u32()
	if err != nil {
		return nil, err
	}
	l.infos.offsets = make([]uint32, entryCount)
	for i := range l.infos.offsets {
		if l.infos.offsets[i], err = r.u32(); err != nil {
			return nil, err
		}
	}
	if l.infos.blob, err = r.bytes(int(infoLen)); err != nil {
		return nil, fmt.Errorf("word info blob: %w", err)
	}
	for i, off := range l.infos.offsets {
		if int(off) >= len(l.infos.blob) {
			return nil, fmt.Errorf("%w: word info offset %d out of range for entry %d",
				ErrTruncated, off, i)
		}
	}
	return l, nil
}
