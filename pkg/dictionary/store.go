package dictionary

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	mmap "github.com/blevesearch/mmap-go"
)

// MaxDictionaries bounds the number of lexicons a Store can merge: one
// system dictionary plus up to fifteen user dictionaries.
const MaxDictionaries = 16

const (
	dictIDShift = 28
	wordIDMask  = (1 << dictIDShift) - 1
)

// CostNeedsEstimation is the sentinel occurrence cost of a user dictionary
// entry whose cost should be derived from the system dictionary after load.
const CostNeedsEstimation int16 = math.MinInt16

// WordID qualifies an entry index with the id of the dictionary it lives in.
func WordID(dictID int, wordIndex int32) int32 {
	return int32(dictID)<<dictIDShift | wordIndex
}

// DictID extracts the dictionary id from a qualified word id.
func DictID(wid int32) int { return int(wid >> dictIDShift) }

// WordIndex extracts the per-dictionary entry index from a qualified word id.
func WordIndex(wid int32) int32 { return wid & wordIDMask }

// Store is a loaded dictionary image plus optional user dictionary overlays.
// It is immutable after construction and safe for unlimited concurrent
// lookups.
type Store struct {
	header     Header
	grammar    *Grammar
	chars      *CharTable
	lexicons   []*Lexicon
	posOffsets []int
	sysPOSSize int
	maps       []mmap.MMap
	files      []*os.File

	costOnce sync.Once
}

// Open loads a compiled system dictionary and merges any user dictionaries
// into its lookup namespace. All errors abort construction; no partial Store
// is returned.
func Open(path string, userPaths ...string) (*Store, error) {
	if len(userPaths)+1 > MaxDictionaries {
		return nil, fmt.Errorf("dictionary: too many user dictionaries (%d, max %d)",
			len(userPaths), MaxDictionaries-1)
	}
	s := &Store{}
	if err := s.loadSystem(path); err != nil {
		s.Close()
		return nil, err
	}
	for _, up := range userPaths {
		if err := s.loadUser(up); err != nil {
			s.Close()
			return nil, err
		}
	}
	tracer().Infof("dictionary loaded: %d entries, %d POS tuples, %d user dicts",
		s.lexicons[0].Size(), s.grammar.PartOfSpeechSize(), len(userPaths))
	return s, nil
}

func (s *Store) mapFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("dictionary: mmap %s: %w", path, err)
	}
	s.files = append(s.files, f)
	s.maps = append(s.maps, m)
	return m, nil
}

func (s *Store) loadSystem(path string) error {
	data, err := s.mapFile(path)
	if err != nil {
		return err
	}
	r := newReader(data)
	if s.header, err = readHeader(r); err != nil {
		return err
	}
	if s.grammar, err = readGrammar(r); err != nil {
		return err
	}
	if s.chars, err = readCharTable(r); err != nil {
		return err
	}
	lex, err := readLexicon(r)
	if err != nil {
		return err
	}
	if err := lex.validateParams(s.grammar.LeftSize(), s.grammar.RightSize()); err != nil {
		return err
	}
	s.lexicons = []*Lexicon{lex}
	s.posOffsets = []int{0}
	s.sysPOSSize = s.grammar.PartOfSpeechSize()
	return nil
}

func (s *Store) loadUser(path string) error {
	data, err := s.mapFile(path)
	if err != nil {
		return err
	}
	r := newReader(data)
	if _, err = readHeader(r); err != nil {
		return err
	}
	g, err := readGrammar(r)
	if err != nil {
		return err
	}
	if _, err = readCharTable(r); err != nil { // user images carry an empty table
		return err
	}
	lex, err := readLexicon(r)
	if err != nil {
		return err
	}
	// user entries connect through the system matrix
	if err := lex.validateParams(s.grammar.LeftSize(), s.grammar.RightSize()); err != nil {
		return err
	}
	s.posOffsets = append(s.posOffsets, s.grammar.appendPOSList(g))
	s.lexicons = append(s.lexicons, lex)
	return nil
}

// Header returns the system image header.
func (s *Store) Header() Header { return s.header }

// Grammar returns the merged POS table and the system connection matrix.
func (s *Store) Grammar() *Grammar { return s.grammar }

// CharTable returns the character category table.
func (s *Store) CharTable() *CharTable { return s.chars }

// Lookup runs a common-prefix search over every merged lexicon. User
// dictionaries are consulted before the system dictionary so their entries
// precede system homographs in candidate order.
func (s *Store) Lookup(text []byte, offset int) []Match {
	if len(s.lexicons) == 1 {
		return s.lexicons[0].Lookup(text, offset)
	}
	var matches []Match
	for d := 1; d < len(s.lexicons); d++ {
		for _, m := range s.lexicons[d].Lookup(text, offset) {
			matches = append(matches, Match{WordID: WordID(d, m.WordID), End: m.End})
		}
	}
	matches = append(matches, s.lexicons[0].Lookup(text, offset)...)
	return matches
}

// LeftID returns the left connection id of a qualified word id.
func (s *Store) LeftID(wid int32) int16 {
	return s.lexicons[DictID(wid)].LeftID(WordIndex(wid))
}

// RightID returns the right connection id of a qualified word id.
func (s *Store) RightID(wid int32) int16 {
	return s.lexicons[DictID(wid)].RightID(WordIndex(wid))
}

// Cost returns the occurrence cost of a qualified word id.
func (s *Store) Cost(wid int32) int16 {
	return s.lexicons[DictID(wid)].Cost(WordIndex(wid))
}

// WordInfo returns the payload of a qualified word id with POS ids and split
// references remapped into the merged namespace.
func (s *Store) WordInfo(wid int32) WordInfo {
	d := DictID(wid)
	wi := s.lexicons[d].WordInfo(WordIndex(wid))
	if d > 0 && int(wi.POSID) >= s.sysPOSSize {
		wi.POSID = wi.POSID - int16(s.sysPOSSize) + int16(s.posOffsets[d])
	}
	wi.AUnitSplit = s.remapSplit(wi.AUnitSplit, d)
	wi.BUnitSplit = s.remapSplit(wi.BUnitSplit, d)
	wi.WordStructure = s.remapSplit(wi.WordStructure, d)
	return wi
}

// remapSplit rewrites split references built as "this dictionary" into the
// dictionary id the lexicon was merged under.
func (s *Store) remapSplit(split []int32, dictID int) []int32 {
	if dictID == 0 || len(split) == 0 {
		return split
	}
	out := make([]int32, len(split))
	for i, v := range split {
		if DictID(v) > 0 {
			out[i] = WordID(dictID, WordIndex(v))
		} else {
			out[i] = v
		}
	}
	return out
}

// EntryCount returns the number of entries in one merged lexicon.
func (s *Store) EntryCount(dictID int) int { return s.lexicons[dictID].Size() }

// FindWordID locates a system dictionary entry by surface, POS tuple and
// reading form. Linear over the homographs of the surface.
func (s *Store) FindWordID(surface string, pos POS, reading string) (int32, bool) {
	posID := s.grammar.PartOfSpeechID(pos)
	if posID < 0 {
		return 0, false
	}
	for _, id := range s.lexicons[0].ExactMatch(surface) {
		wi := s.lexicons[0].WordInfo(id)
		if int(wi.POSID) == posID && wi.ReadingForm == reading {
			return id, true
		}
	}
	return 0, false
}

// HasUnresolvedCosts reports whether any user dictionary entry still carries
// the estimation sentinel.
func (s *Store) HasUnresolvedCosts() bool {
	for d := 1; d < len(s.lexicons); d++ {
		lex := s.lexicons[d]
		for i := int32(0); i < int32(lex.Size()); i++ {
			if lex.Cost(i) == CostNeedsEstimation {
				return true
			}
		}
	}
	return false
}

// ResolveUserCosts rewrites sentinel user entry costs using estimate, which
// returns the internal path cost and morpheme count of analyzing a surface
// with this store. It runs at most once, before any concurrent analysis
// begins; the tokenizer invokes it during construction.
func (s *Store) ResolveUserCosts(estimate func(surface string) (cost int, morphemes int)) {
	s.costOnce.Do(func() {
		const costPerMorpheme = -20
		for d := 1; d < len(s.lexicons); d++ {
			lex := s.lexicons[d]
			for i := int32(0); i < int32(lex.Size()); i++ {
				if lex.Cost(i) != CostNeedsEstimation {
					continue
				}
				cost, n := estimate(lex.WordInfo(i).Surface)
				cost += costPerMorpheme * n
				if cost > math.MaxInt16 {
					cost = math.MaxInt16
				}
				if cost < math.MinInt16+1 {
					cost = math.MinInt16 + 1
				}
				lex.setCost(i, int16(cost))
			}
		}
	})
}

// Close unmaps the image files. Lookups must not be in flight.
func (s *Store) Close() error {
	var firstErr error
	for _, lex := range s.lexicons {
		if err := lex.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, m := range s.maps {
		if err := m.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.lexicons, s.maps, s.files = nil, nil, nil
	return firstErr
}
