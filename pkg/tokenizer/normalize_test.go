package tokenizer

import (
	"testing"

	"github.com/ymatsuda/wakachi/pkg/dictionary"
)

func TestNFKCNormalizerRewrite(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Ｔｏｋｙｏ", "tokyo"},     // full-width Latin folds and lowercases
		{"ﾄｳｷｮｳ", "トウキョウ"},     // half-width katakana widens
		{"東京都", "東京都"},        // untouched text stays identical
		{"㍿", "株式会社"},         // one character may expand to several
		{"ＡＢＣ東京", "abc東京"},   // mixed rewrite keeps the tail
	}
	for _, tt := range tests {
		b := newInputBuilder(tt.input)
		(&NFKCNormalizer{Lowercase: true}).Rewrite(b)
		if got := string(b.Runes()); got != tt.want {
			t.Errorf("Rewrite(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// Offsets must point back into the original text after arbitrary rewrites.
func TestNormalizedOffsetsMapToOriginal(t *testing.T) {
	original := "ＡＢＣ東京"
	b := newInputBuilder(original)
	(&NFKCNormalizer{Lowercase: true}).Rewrite(b)
	in := b.build(dictionary.NewCharTable(nil, nil, nil))

	if got := in.originalSlice(0, in.len()); got != original {
		t.Fatalf("full slice = %q, want the original text", got)
	}
	// "abc" is 3 modified bytes standing in for 9 original bytes.
	if got := in.originalSlice(0, 3); got != "ＡＢＣ" {
		t.Errorf("prefix slice = %q, want ＡＢＣ", got)
	}
	if got := in.originalSlice(3, in.len()); got != "東京" {
		t.Errorf("suffix slice = %q, want 東京", got)
	}
}

func TestNormalizedTokenizeKeepsOriginalSurface(t *testing.T) {
	tok := newTestTokenizer(t, WithNormalizer(&NFKCNormalizer{Lowercase: true}))
	ms := tok.Tokenize("ﾄｳｷｮｳ", ModeC)
	joined := ""
	for i := 0; i < ms.Len(); i++ {
		joined += ms.Get(i).Surface()
	}
	if joined != "ﾄｳｷｮｳ" {
		t.Errorf("surfaces concatenate to %q, want the original input", joined)
	}
}

func TestProlongedSoundMarkRewrite(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ゴーール", "ゴール"},               // run in the middle
		{"スーパーー", "スーパー"},             // run at the end
		{"エーービーーーシーーーー", "エービーシー"}, // several runs
		{"エーービ〜〜〜シ〰〰〰〰", "エービーシー"}, // mixed mark kinds collapse too
		{"ーー東京", "ー東京"},               // run at the start
		{"スーパー", "スーパー"},              // a single mark stays
	}
	for _, tt := range tests {
		b := newInputBuilder(tt.input)
		(&ProlongedSoundMarkNormalizer{}).Rewrite(b)
		if got := string(b.Runes()); got != tt.want {
			t.Errorf("Rewrite(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestProlongedSoundMarkOffsets(t *testing.T) {
	original := "ゴーール"
	b := newInputBuilder(original)
	(&ProlongedSoundMarkNormalizer{}).Rewrite(b)
	in := b.build(dictionary.NewCharTable(nil, nil, nil))

	if got := in.originalSlice(0, in.len()); got != original {
		t.Fatalf("full slice = %q, want the original text", got)
	}
	// The single remaining ー stands in for both original marks.
	if got := in.originalSlice(3, 6); got != "ーー" {
		t.Errorf("collapsed slice = %q, want ーー", got)
	}
}

// Normalizers run in installation order: NFKC widens the half-width marks,
// then the prolonged sound mark pass collapses the run.
func TestNormalizerChain(t *testing.T) {
	b := newInputBuilder("ｱｰｰ")
	for _, n := range []Normalizer{&NFKCNormalizer{}, &ProlongedSoundMarkNormalizer{}} {
		n.Rewrite(b)
	}
	if got := string(b.Runes()); got != "アー" {
		t.Errorf("chained rewrite = %q, want アー", got)
	}

	tok := newTestTokenizer(t,
		WithNormalizer(&NFKCNormalizer{}),
		WithNormalizer(&ProlongedSoundMarkNormalizer{}))
	ms := tok.Tokenize("ｱｰｰ", ModeC)
	joined := ""
	for i := 0; i < ms.Len(); i++ {
		joined += ms.Get(i).Surface()
	}
	if joined != "ｱｰｰ" {
		t.Errorf("surfaces concatenate to %q, want the original input", joined)
	}
}

func TestInputBuilderReplace(t *testing.T) {
	b := newInputBuilder("abcde")
	b.Replace(1, 3, "XYZ") // "bc" -> "XYZ"
	if got := string(b.Runes()); got != "aXYZde" {
		t.Fatalf("Runes() = %q", got)
	}
	in := b.build(dictionary.NewCharTable(nil, nil, nil))
	if got := in.originalSlice(0, 4); got != "abc" {
		t.Errorf("slice over the replacement = %q, want abc", got)
	}
	if got := in.originalSlice(4, 6); got != "de" {
		t.Errorf("tail slice = %q, want de", got)
	}
}

func TestCanBowScriptRuns(t *testing.T) {
	// Latin letters need an ALPHA range to trigger the mid-run rule.
	ranges := []dictionary.CodePointRange{
		{Lo: 'A', Hi: 'z' + 1, Categories: dictionary.CatAlpha},
	}
	chars := dictionary.NewCharTable(ranges, nil, nil)
	in := newInputBuilder("ab東").build(chars)

	if !in.canBow(0) {
		t.Error("word must be able to begin at offset 0")
	}
	if in.canBow(1) {
		t.Error("no word boundary inside an alphabetic run")
	}
	if !in.canBow(2) {
		t.Error("script change restores the boundary")
	}
	if in.canBow(3) {
		t.Error("no boundary on a continuation byte")
	}
}
