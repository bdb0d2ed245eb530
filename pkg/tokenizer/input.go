package tokenizer

import (
	"unicode/utf8"

	"github.com/ymatsuda/wakachi/pkg/dictionary"
)

// inputText is the analyzed form of one input: the possibly rewritten text
// the lattice is built over, byte offset maps back to the original text, and
// per-character category and boundary data. Read-only once built.
type inputText struct {
	original string
	modified string
	bytes    []byte

	// offsets[i] is the original byte offset the modified byte offset i maps
	// to; both arrays have one extra slot for the end boundary.
	offsets    []int
	byteToChar []int

	charStarts []int
	categories []dictionary.CategoryType
	bow        []bool
}

func (in *inputText) len() int { return len(in.bytes) }

// canBow reports whether a word may begin at the modified byte offset.
// Continuation bytes never start a word; Latin, Greek and Cyrillic letters
// do not start a word in the middle of a same-script run.
func (in *inputText) canBow(off int) bool {
	if off >= len(in.bytes) || !utf8.RuneStart(in.bytes[off]) {
		return false
	}
	return in.bow[in.byteToChar[off]]
}

func (in *inputText) categoriesAt(off int) dictionary.CategoryType {
	return in.categories[in.byteToChar[off]]
}

// catRunLength returns the byte length of the run of characters at off that
// all belong to cat.
func (in *inputText) catRunLength(off int, cat dictionary.CategoryType) int {
	c := in.byteToChar[off]
	for c < len(in.categories) && in.categories[c].Has(cat) {
		c++
	}
	return in.charStarts[c] - off
}

// advanceCodePoints returns the byte offset n characters past off, staying
// within the run of cat. The second result is false when the run is shorter
// than n characters.
func (in *inputText) advanceCodePoints(off, n int, cat dictionary.CategoryType) (int, bool) {
	c := in.byteToChar[off]
	for i := 0; i < n; i++ {
		if c >= len(in.categories) || !in.categories[c].Has(cat) {
			return 0, false
		}
		c++
	}
	return in.charStarts[c], true
}

// wordCandidateLength returns the byte length of the shortest span from off
// that ends where a following word could begin. A forced candidate spanning
// less would strand the rest of a script run with no way to reach the end.
func (in *inputText) wordCandidateLength(off int) int {
	c := in.byteToChar[off] + 1
	for c < len(in.categories) && !in.bow[c] {
		c++
	}
	return in.charStarts[c] - off
}

func (in *inputText) modifiedSlice(begin, end int) string {
	return in.modified[begin:end]
}

// originalSlice maps a modified byte range back onto the original text.
func (in *inputText) originalSlice(begin, end int) string {
	return in.original[in.offsets[begin]:in.offsets[end]]
}

func (in *inputText) originalOffset(off int) int { return in.offsets[off] }

// InputBuilder accumulates normalizer rewrites of an input text while
// keeping track of where every character came from in the original.
type InputBuilder struct {
	original  string
	runes     []rune
	origBegin []int
}

func newInputBuilder(text string) *InputBuilder {
	b := &InputBuilder{original: text}
	for i, r := range text {
		b.runes = append(b.runes, r)
		b.origBegin = append(b.origBegin, i)
	}
	return b
}

// Runes returns the current text as runes. Indices into the result are the
// character ranges Replace operates on.
func (b *InputBuilder) Runes() []rune { return b.runes }

// Replace substitutes the character range [from, to) with s. The first new
// character inherits the original position of the replaced range; the rest
// map to the range's end so boundaries after the replacement stay exact.
func (b *InputBuilder) Replace(from, to int, s string) {
	news := []rune(s)
	origEnd := len(b.original)
	if to < len(b.origBegin) {
		origEnd = b.origBegin[to]
	}
	newOrig := make([]int, len(news))
	for j := range newOrig {
		if j == 0 {
			newOrig[j] = b.origBegin[from]
		} else {
			newOrig[j] = origEnd
		}
	}
	b.runes = append(b.runes[:from], append(news, b.runes[to:]...)...)
	b.origBegin = append(b.origBegin[:from], append(newOrig, b.origBegin[to:]...)...)
}

var scriptRun = dictionary.CatAlpha | dictionary.CatGreek | dictionary.CatCyrillic

func (b *InputBuilder) build(chars *dictionary.CharTable) *inputText {
	in := &inputText{
		original: b.original,
		modified: string(b.runes),
	}
	in.bytes = []byte(in.modified)
	in.offsets = make([]int, len(in.bytes)+1)
	in.byteToChar = make([]int, len(in.bytes)+1)
	in.charStarts = make([]int, 0, len(b.runes)+1)
	in.categories = make([]dictionary.CategoryType, len(b.runes))
	in.bow = make([]bool, len(b.runes))

	pos := 0
	for i, r := range b.runes {
		size := utf8.RuneLen(r)
		in.charStarts = append(in.charStarts, pos)
		for j := 0; j < size; j++ {
			in.offsets[pos+j] = b.origBegin[i]
			in.byteToChar[pos+j] = i
		}
		pos += size

		in.categories[i] = chars.CategoryTypes(r)
		if i == 0 {
			in.bow[i] = true
			continue
		}
		shared := in.categories[i] & in.categories[i-1] & scriptRun
		in.bow[i] = in.categories[i]&scriptRun == 0 || shared == 0
	}
	in.charStarts = append(in.charStarts, pos)
	in.offsets[pos] = len(b.original)
	in.byteToChar[pos] = len(b.runes)
	return in
}
