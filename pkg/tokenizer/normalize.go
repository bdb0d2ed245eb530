package tokenizer

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalizer rewrites the input text before lattice construction. Rewrites
// go through the builder so every morpheme still reports offsets into the
// text the caller passed in.
type Normalizer interface {
	Rewrite(b *InputBuilder)
}

// NFKCNormalizer folds compatibility characters with NFKC and optionally
// lowercases, one character at a time. Full-width forms, ligatures and
// squared katakana collapse to the spellings dictionaries are compiled with.
type NFKCNormalizer struct {
	Lowercase bool
}

// Rewrite walks the text backwards so earlier indices stay valid while
// replacements change the length.
func (n *NFKCNormalizer) Rewrite(b *InputBuilder) {
	runes := b.Runes()
	for i := len(runes) - 1; i >= 0; i-- {
		r := runes[i]
		if n.Lowercase {
			r = unicode.ToLower(r)
		}
		folded := norm.NFKC.String(string(r))
		if len(folded) == 0 || folded == string(runes[i]) {
			continue
		}
		b.Replace(i, i+1, folded)
	}
}

// Marks collapsed by a zero-value ProlongedSoundMarkNormalizer: the
// katakana-hiragana prolonged sound mark, its half-width form, the wave dash
// and the wavy dash.
var defaultProlongedMarks = []rune{'ー', 'ｰ', '〜', '〰'}

// ProlongedSoundMarkNormalizer collapses a run of two or more prolonged
// sound marks into a single replacement mark, the spelling dictionaries
// register words with. The zero value collapses ー, ｰ, 〜 and 〰 to ー.
type ProlongedSoundMarkNormalizer struct {
	Marks       []rune
	Replacement string
}

func (n *ProlongedSoundMarkNormalizer) isMark(r rune) bool {
	marks := n.Marks
	if len(marks) == 0 {
		marks = defaultProlongedMarks
	}
	for _, m := range marks {
		if m == r {
			return true
		}
	}
	return false
}

// Rewrite walks the text backwards so run starts stay valid while
// replacements shrink the length. A run may mix different marks.
func (n *ProlongedSoundMarkNormalizer) Rewrite(b *InputBuilder) {
	repl := n.Replacement
	if repl == "" {
		repl = "ー"
	}
	runes := b.Runes()
	end := -1
	for i := len(runes) - 1; i >= 0; i-- {
		if n.isMark(runes[i]) {
			if end < 0 {
				end = i + 1
			}
			continue
		}
		if end >= 0 && end-i-1 > 1 {
			b.Replace(i+1, end, repl)
		}
		end = -1
	}
	if end > 1 {
		b.Replace(0, end, repl)
	}
}
