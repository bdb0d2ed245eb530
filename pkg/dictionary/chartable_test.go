package dictionary

import (
	"errors"
	"testing"
)

func TestCategoryTypeSets(t *testing.T) {
	c := CatKanji | CatKanjiNumeric
	if !c.Has(CatKanji) || !c.Has(CatKanji | CatKanjiNumeric) {
		t.Error("Has failed on contained categories")
	}
	if c.Has(CatKanji | CatAlpha) {
		t.Error("Has must require every category")
	}
	if !c.Intersects(CatAlpha | CatKanji) {
		t.Error("Intersects missed a shared category")
	}
	if c.Intersects(CatAlpha | CatSpace) {
		t.Error("Intersects reported a disjoint set")
	}
}

func TestCategoryTypeByName(t *testing.T) {
	if c, ok := CategoryTypeByName("HIRAGANA"); !ok || c != CatHiragana {
		t.Errorf("HIRAGANA = %v, %v", c, ok)
	}
	if _, ok := CategoryTypeByName("NOPE"); ok {
		t.Error("unknown name resolved")
	}
}

func TestCharTableLookup(t *testing.T) {
	ranges := []CodePointRange{
		{Lo: 0x3041, Hi: 0x3097, Categories: CatHiragana},
		{Lo: 0x4E00, Hi: 0xA000, Categories: CatKanji},
	}
	table := NewCharTable(ranges, nil, nil)

	tests := []struct {
		cp   rune
		want CategoryType
	}{
		{'あ', CatHiragana},
		{'東', CatKanji},
		{0x3041, CatHiragana}, // range start is inclusive
		{0x3097, CatDefault},  // range end is exclusive
		{'A', CatDefault},     // uncovered code points default
	}
	for _, tt := range tests {
		if got := table.CategoryTypes(tt.cp); got != tt.want {
			t.Errorf("CategoryTypes(%#x) = %v, want %v", tt.cp, got, tt.want)
		}
	}
}

func TestCharTableSerialization(t *testing.T) {
	table := NewCharTable(
		[]CodePointRange{{Lo: 0x30, Hi: 0x3A, Categories: CatNumeric}},
		map[CategoryType]CategoryBehavior{
			CatNumeric: {Invoke: true, Group: true, Length: 4},
		},
		map[CategoryType][]OOVPrototype{
			CatNumeric: {{Category: CatNumeric, LeftID: 1, RightID: 2, Cost: -300, POSID: 5}},
		},
	)
	data := AppendCharTable(nil, table)
	got, err := readCharTable(newReader(data))
	if err != nil {
		t.Fatalf("readCharTable: %v", err)
	}
	if got.CategoryTypes('7') != CatNumeric {
		t.Error("range lost in round trip")
	}
	b, ok := got.Behavior(CatNumeric)
	if !ok || !b.Invoke || !b.Group || b.Length != 4 {
		t.Errorf("behavior = %+v, %v", b, ok)
	}
	protos := got.Prototypes(CatNumeric)
	if len(protos) != 1 || protos[0].Cost != -300 || protos[0].POSID != 5 {
		t.Errorf("prototypes = %+v", protos)
	}
}

func TestCharTableValidation(t *testing.T) {
	overlapping := []CodePointRange{
		{Lo: 0x30, Hi: 0x40, Categories: CatNumeric},
		{Lo: 0x38, Hi: 0x48, Categories: CatAlpha},
	}
	data := AppendCharTable(nil, NewCharTable(overlapping, nil, nil))
	if _, err := readCharTable(newReader(data)); !errors.Is(err, ErrBadHeader) {
		t.Errorf("overlapping ranges: err = %v, want ErrBadHeader", err)
	}

	empty := []CodePointRange{{Lo: 0x40, Hi: 0x40, Categories: CatAlpha}}
	data = AppendCharTable(nil, NewCharTable(empty, nil, nil))
	if _, err := readCharTable(newReader(data)); !errors.Is(err, ErrBadHeader) {
		t.Errorf("empty range: err = %v, want ErrBadHeader", err)
	}
}
