package build

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ymatsuda/wakachi/pkg/dictionary"
)

// CharTableBuilder collects character definitions and OOV prototypes and
// flattens them into the disjoint-range table the engine queries.
type CharTableBuilder struct {
	ranges     []dictionary.CodePointRange
	behaviors  map[dictionary.CategoryType]dictionary.CategoryBehavior
	prototypes map[dictionary.CategoryType][]dictionary.OOVPrototype
	posIDFor   func(pos dictionary.POS) int
}

// NewCharTableBuilder creates a character table builder whose OOV prototype
// POS tuples are interned into b's POS table.
func (b *Builder) NewCharTableBuilder() *CharTableBuilder {
	return &CharTableBuilder{
		behaviors:  make(map[dictionary.CategoryType]dictionary.CategoryBehavior),
		prototypes: make(map[dictionary.CategoryType][]dictionary.OOVPrototype),
		posIDFor:   b.posIDFor,
	}
}

// ParseCharDef reads character definitions. Two line forms:
//
//	CATEGORY invoke group length     behavior of a category (0/1 flags)
//	0xLO..0xHI CATEGORY [CATEGORY]   code point range assignment
//	0xCP CATEGORY [CATEGORY]         single code point assignment
//
// Lines starting with # are comments. Ranges may overlap; categories of
// overlapping ranges are merged when the table is compiled.
func (cb *CharTableBuilder) ParseCharDef(r io.Reader) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if i := strings.Index(text, "#"); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if text == "" {
			continue
		}
		cols := strings.Fields(text)
		if strings.HasPrefix(cols[0], "0x") {
			if err := cb.parseRange(cols, line); err != nil {
				return err
			}
			continue
		}
		if err := cb.parseBehavior(cols, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (cb *CharTableBuilder) parseBehavior(cols []string, line int) error {
	if len(cols) < 4 {
		return fmt.Errorf("char def line %d: %w: want \"CATEGORY invoke group length\"",
			line, ErrMalformedRow)
	}
	cat, ok := dictionary.CategoryTypeByName(cols[0])
	if !ok {
		return fmt.Errorf("char def line %d: %w: unknown category %q", line, ErrMalformedRow, cols[0])
	}
	if _, dup := cb.behaviors[cat]; dup {
		return fmt.Errorf("char def line %d: %w: %s already defined", line, ErrMalformedRow, cols[0])
	}
	length, err := strconv.ParseUint(cols[3], 10, 16)
	if err != nil {
		return fmt.Errorf("char def line %d: %w: length %q", line, ErrMalformedRow, cols[3])
	}
	cb.behaviors[cat] = dictionary.CategoryBehavior{
		Invoke: cols[1] != "0",
		Group:  cols[2] != "0",
		Length: uint16(length),
	}
	return nil
}

func (cb *CharTableBuilder) parseRange(cols []string, line int) error {
	if len(cols) < 2 {
		return fmt.Errorf("char def line %d: %w: range without category", line, ErrMalformedRow)
	}
	bounds := strings.SplitN(cols[0], "..", 2)
	lo, err := parseHex(bounds[0])
	if err != nil {
		return fmt.Errorf("char def line %d: %w: %q", line, ErrMalformedRow, bounds[0])
	}
	hi := lo
	if len(bounds) == 2 {
		if hi, err = parseHex(bounds[1]); err != nil {
			return fmt.Errorf("char def line %d: %w: %q", line, ErrMalformedRow, bounds[1])
		}
	}
	if hi < lo {
		return fmt.Errorf("char def line %d: %w: inverted range", line, ErrMalformedRow)
	}
	var cats dictionary.CategoryType
	for _, name := range cols[1:] {
		cat, ok := dictionary.CategoryTypeByName(name)
		if !ok {
			return fmt.Errorf("char def line %d: %w: unknown category %q", line, ErrMalformedRow, name)
		}
		cats |= cat
	}
	cb.ranges = append(cb.ranges, dictionary.CodePointRange{Lo: lo, Hi: hi + 1, Categories: cats})
	return nil
}

func parseHex(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	return uint32(v), err
}

// ParseUnkDef reads OOV prototype rows:
// "CATEGORY,leftID,rightID,cost,pos1,pos2,pos3,pos4,pos5,pos6".
func (cb *CharTableBuilder) ParseUnkDef(r io.Reader) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cols := strings.Split(text, ",")
		if len(cols) < 10 {
			return fmt.Errorf("unk def line %d: %w: %d columns, want 10", line, ErrMalformedRow, len(cols))
		}
		cat, ok := dictionary.CategoryTypeByName(cols[0])
		if !ok {
			return fmt.Errorf("unk def line %d: %w: unknown category %q", line, ErrMalformedRow, cols[0])
		}
		if _, defined := cb.behaviors[cat]; !defined {
			return fmt.Errorf("unk def line %d: %w: category %s has no behavior",
				line, ErrUnresolvedReference, cols[0])
		}
		leftID, err1 := strconv.ParseInt(cols[1], 10, 16)
		rightID, err2 := strconv.ParseInt(cols[2], 10, 16)
		cost, err3 := strconv.ParseInt(cols[3], 10, 16)
		if err1 != nil || err2 != nil || err3 != nil {
			return fmt.Errorf("unk def line %d: %w", line, ErrMalformedRow)
		}
		var pos dictionary.POS
		copy(pos[:], cols[4:10])
		cb.prototypes[cat] = append(cb.prototypes[cat], dictionary.OOVPrototype{
			Category: cat,
			LeftID:   int16(leftID),
			RightID:  int16(rightID),
			Cost:     int16(cost),
			POSID:    int16(cb.posIDFor(pos)),
		})
	}
	return sc.Err()
}

// Compile flattens possibly overlapping range definitions into the sorted
// disjoint ranges the lookup table requires.
func (cb *CharTableBuilder) Compile() *dictionary.CharTable {
	bounds := make([]uint32, 0, 2*len(cb.ranges))
	for _, rg := range cb.ranges {
		bounds = append(bounds, rg.Lo, rg.Hi)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })
	bounds = dedupU32(bounds)

	var flat []dictionary.CodePointRange
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		var cats dictionary.CategoryType
		for _, rg := range cb.ranges {
			if rg.Lo <= lo && hi <= rg.Hi {
				cats |= rg.Categories
			}
		}
		if cats == 0 {
			continue
		}
		if n := len(flat); n > 0 && flat[n-1].Hi == lo && flat[n-1].Categories == cats {
			flat[n-1].Hi = hi
			continue
		}
		flat = append(flat, dictionary.CodePointRange{Lo: lo, Hi: hi, Categories: cats})
	}
	return dictionary.NewCharTable(flat, cb.behaviors, cb.prototypes)
}

func dedupU32(v []uint32) []uint32 {
	out := v[:0]
	for i, x := range v {
		if i == 0 || x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
