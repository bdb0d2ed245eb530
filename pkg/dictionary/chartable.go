package dictionary

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// CategoryType is a bit set of character categories. A code point can belong
// to several categories at once.
type CategoryType uint32

const (
	CatDefault CategoryType = 1 << iota
	CatSpace
	CatKanji
	CatSymbol
	CatNumeric
	CatAlpha
	CatHiragana
	CatKatakana
	CatKanjiNumeric
	CatGreek
	CatCyrillic
	CatUser1
	CatUser2
	CatUser3
	CatUser4
	CatNoOOVBow
)

var categoryNames = map[string]CategoryType{
	"DEFAULT":      CatDefault,
	"SPACE":        CatSpace,
	"KANJI":        CatKanji,
	"SYMBOL":       CatSymbol,
	"NUMERIC":      CatNumeric,
	"ALPHA":        CatAlpha,
	"HIRAGANA":     CatHiragana,
	"KATAKANA":     CatKatakana,
	"KANJINUMERIC": CatKanjiNumeric,
	"GREEK":        CatGreek,
	"CYRILLIC":     CatCyrillic,
	"USER1":        CatUser1,
	"USER2":        CatUser2,
	"USER3":        CatUser3,
	"USER4":        CatUser4,
	"NOOOVBOW":     CatNoOOVBow,
}

// CategoryTypeByName resolves a category name from a character definition
// file. The second result is false for unknown names.
func CategoryTypeByName(name string) (CategoryType, bool) {
	c, ok := categoryNames[name]
	return c, ok
}

// Has reports whether c contains every category in want.
func (c CategoryType) Has(want CategoryType) bool { return c&want == want }

// Intersects reports whether c shares at least one category with other.
func (c CategoryType) Intersects(other CategoryType) bool { return c&other != 0 }

// CodePointRange assigns categories to [Lo, Hi). Compiled tables hold
// disjoint ranges sorted by Lo.
type CodePointRange struct {
	Lo, Hi     uint32
	Categories CategoryType
}

// CategoryBehavior controls out-of-vocabulary candidate generation for one
// category: whether to invoke it even when real words matched, whether a run
// of same-category characters may group into one candidate, and up to how
// many code points per-length candidates are emitted.
type CategoryBehavior struct {
	Invoke bool
	Group  bool
	Length uint16
}

// OOVPrototype is the connection/cost/POS template a synthesized candidate
// of a category is stamped from.
type OOVPrototype struct {
	Category CategoryType
	LeftID   int16
	RightID  int16
	Cost     int16
	POSID    int16
}

// CharTable maps code points to category sets and carries the OOV behavior
// and prototypes per category. Read-only after load.
type CharTable struct {
	ranges     []CodePointRange
	behaviors  map[CategoryType]CategoryBehavior
	prototypes map[CategoryType][]OOVPrototype
}

// NewCharTable builds a table from disjoint, Lo-sorted ranges. The compiler
// is responsible for flattening overlapping definitions first.
func NewCharTable(ranges []CodePointRange, behaviors map[CategoryType]CategoryBehavior,
	prototypes map[CategoryType][]OOVPrototype) *CharTable {
	return &CharTable{ranges: ranges, behaviors: behaviors, prototypes: prototypes}
}

// CategoryTypes returns the category set of a code point. Code points not
// covered by any range fall back to the default category, so classification
// never fails.
func (t *CharTable) CategoryTypes(cp rune) CategoryType {
	u := uint32(cp)
	i := sort.Search(len(t.ranges), func(i int) bool { return t.ranges[i].Hi > u })
	if i < len(t.ranges) && t.ranges[i].Lo <= u && u < t.ranges[i].Hi {
		return t.ranges[i].Categories
	}
	return CatDefault
}

// Behavior returns the OOV behavior of a single category.
func (t *CharTable) Behavior(cat CategoryType) (CategoryBehavior, bool) {
	b, ok := t.behaviors[cat]
	return b, ok
}

// Prototypes returns the OOV prototypes of a single category.
func (t *CharTable) Prototypes(cat CategoryType) []OOVPrototype {
	return t.prototypes[cat]
}

// AppendCharTable serializes t onto buf.
func AppendCharTable(buf []byte, t *CharTable) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.ranges)))
	for _, rg := range t.ranges {
		buf = binary.LittleEndian.AppendUint32(buf, rg.Lo)
		buf = binary.LittleEndian.AppendUint32(buf, rg.Hi)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(rg.Categories))
	}
	cats := make([]CategoryType, 0, len(t.behaviors))
	for cat := range t.behaviors {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(cats)))
	for _, cat := range cats {
		b := t.behaviors[cat]
		buf = binary.LittleEndian.AppendUint32(buf, uint32(cat))
		if b.Invoke {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		if b.Group {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		buf = binary.LittleEndian.AppendUint16(buf, b.Length)
	}
	var count uint32
	for _, protos := range t.prototypes {
		count += uint32(len(protos))
	}
	buf = binary.LittleEndian.AppendUint32(buf, count)
	for _, cat := range cats {
		for _, p := range t.prototypes[cat] {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(cat))
			buf = binary.LittleEndian.AppendUint16(buf, uint16(p.LeftID))
			buf = binary.LittleEndian.AppendUint16(buf, uint16(p.RightID))
			buf = binary.LittleEndian.AppendUint16(buf, uint16(p.Cost))
			buf = binary.LittleEndian.AppendUint16(buf, uint16(p.POSID))
		}
	}
	return buf
}

func readCharTable(r *reader) (*CharTable, error) {
	rangeCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	t := &CharTable{
		ranges:     make([]CodePointRange, rangeCount),
		behaviors:  make(map[CategoryType]CategoryBehavior),
		prototypes: make(map[CategoryType][]OOVPrototype),
	}
	for i := range t.ranges {
		if t.ranges[i].Lo, err = r.u32(); err != nil {
			return nil, err
		}
		if t.ranges[i].Hi, err = r.u32(); err != nil {
			return nil, err
		}
		cats, err := r.u32()
		if err != nil {
			return nil, err
		}
		t.ranges[i].Categories = CategoryType(cats)
	}
	behaviorCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < behaviorCount; i++ {
		cat, err := r.u32()
		if err != nil {
			return nil, err
		}
		invoke, err := r.u8()
		if err != nil {
			return nil, err
		}
		group, err := r.u8()
		if err != nil {
			return nil, err
		}
		length, err := r.u16()
		if err != nil {
			return nil, err
		}
		t.behaviors[CategoryType(cat)] = CategoryBehavior{
			Invoke: invoke != 0,
			Group:  group != 0,
			Length: length,
		}
	}
	protoCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < protoCount; i++ {
		cat, err := r.u32()
		if err != nil {
			return nil, err
		}
		var p OOVPrototype
		p.Category = CategoryType(cat)
		if p.LeftID, err = r.i16(); err != nil {
			return nil, err
		}
		if p.RightID, err = r.i16(); err != nil {
			return nil, err
		}
		if p.Cost, err = r.i16(); err != nil {
			return nil, err
		}
		if p.POSID, err = r.i16(); err != nil {
			return nil, err
		}
		t.prototypes[p.Category] = append(t.prototypes[p.Category], p)
	}
	if err := validateRanges(t.ranges); err != nil {
		return nil, err
	}
	return t, nil
}

func validateRanges(ranges []CodePointRange) error {
	for i, rg := range ranges {
		if rg.Lo >= rg.Hi {
			return fmt.Errorf("%w: empty code point range %#x..%#x", ErrBadHeader, rg.Lo, rg.Hi)
		}
		if i > 0 && ranges[i-1].Hi > rg.Lo {
			return fmt.Errorf("%w: overlapping code point ranges at %#x", ErrBadHeader, rg.Lo)
		}
	}
	return nil
}
