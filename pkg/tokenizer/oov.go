package tokenizer

import (
	"github.com/ymatsuda/wakachi/pkg/dictionary"
)

// oovProvider synthesizes candidate nodes for text the lexicons do not
// cover, driven by the character category table: each category of the
// character at the boundary contributes candidates according to its invoke,
// group and length settings, stamped from its prototypes.
type oovProvider struct {
	chars *dictionary.CharTable
}

// provide inserts out-of-vocabulary candidates starting at off and returns
// how many nodes it inserted. hasWords tells it whether dictionary matches
// already begin here; categories that do not invoke stand down in that case.
func (p *oovProvider) provide(la *lattice, in *inputText, off int, hasWords bool) int {
	inserted := 0
	cats := in.categoriesAt(off)
	for cat := dictionary.CategoryType(1); cat != 0; cat <<= 1 {
		if !cats.Has(cat) {
			continue
		}
		behavior, ok := p.chars.Behavior(cat)
		if !ok {
			continue
		}
		if !behavior.Invoke && hasWords {
			continue
		}
		protos := p.chars.Prototypes(cat)
		if len(protos) == 0 {
			continue
		}
		runLen := in.catRunLength(off, cat)
		if behavior.Group {
			inserted += p.insertCandidates(la, in, off, off+runLen, protos)
		}
		for i := 1; i <= int(behavior.Length); i++ {
			end, ok := in.advanceCodePoints(off, i, cat)
			if !ok || end > off+runLen {
				break
			}
			if end == off+runLen && behavior.Group {
				continue // the grouped candidate already covers the run
			}
			inserted += p.insertCandidates(la, in, off, end, protos)
		}
	}
	return inserted
}

// provideFallback covers a boundary nothing else matched, spanning to the
// next possible word boundary, stamped from the default category prototypes
// or from a bare zero-connection template if none are defined.
func (p *oovProvider) provideFallback(la *lattice, in *inputText, off int) int {
	end := off + in.wordCandidateLength(off)
	protos := p.chars.Prototypes(dictionary.CatDefault)
	if len(protos) == 0 {
		protos = []dictionary.OOVPrototype{{Category: dictionary.CatDefault, POSID: -1}}
	}
	return p.insertCandidates(la, in, off, end, protos)
}

func (p *oovProvider) insertCandidates(la *lattice, in *inputText, begin, end int,
	protos []dictionary.OOVPrototype) int {
	surface := in.modifiedSlice(begin, end)
	for _, proto := range protos {
		info := &dictionary.WordInfo{
			Surface:              surface,
			HeadwordLength:       end - begin,
			POSID:                proto.POSID,
			NormalizedForm:       surface,
			DictionaryFormWordID: -1,
			DictionaryForm:       surface,
			ReadingForm:          surface,
		}
		la.insert(node{
			begin:   begin,
			end:     end,
			leftID:  proto.LeftID,
			rightID: proto.RightID,
			cost:    proto.Cost,
			wordID:  -1,
			oov:     true,
			info:    info,
		})
	}
	return len(protos)
}
