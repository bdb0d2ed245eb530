package tokenizer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ymatsuda/wakachi/pkg/dictionary"
	"github.com/ymatsuda/wakachi/pkg/dictionary/build"
)

// Rows 0-2 give 東京都 a cheaper path than 東京+都 so mode C keeps the
// compound and mode A expands it. Rows 4-6 make かい+しゃ lose to かいしゃ
// purely on connection cost.
const testLexicon = `東京都,0,0,3000,東京都,名詞,固有名詞,地名,*,*,*,トウキョウト,*,*,C,1/2,*,1/2
東京,0,0,2500,東京,名詞,固有名詞,地名,*,*,*,トウキョウ,*,*,A,*,*,*
都,0,0,2000,都,名詞,普通名詞,*,*,*,*,ト,*,*,A,*,*,*
東,0,0,3000,東,名詞,普通名詞,*,*,*,*,ヒガシ,*,*,A,*,*,*
かい,0,1,1000,かい,名詞,普通名詞,*,*,*,*,カイ,*,*,A,*,*,*
しゃ,2,0,1000,しゃ,名詞,普通名詞,*,*,*,*,シャ,*,*,A,*,*,*
かいしゃ,0,0,9000,かいしゃ,名詞,普通名詞,*,*,*,*,カイシャ,*,*,C,4/5,*,4/5
行っ,0,0,2500,行っ,動詞,一般,*,*,*,*,イッ,*,8,A,*,*,*
行く,0,0,2400,行く,動詞,一般,*,*,*,*,イク,*,*,A,*,*,*
`

const testMatrix = `3 3
0 0 0
1 2 10000
2 2 32767
`

const testCharDef = `DEFAULT 0 1 2
HIRAGANA 0 1 2
KANJI 0 0 0
KATAKANA 1 1 2
0x3041..0x3096 HIRAGANA
0x30A1..0x30FA KATAKANA
0x4E00..0x9FFF KANJI
`

const testUnkDef = `DEFAULT,0,0,5000,記号,一般,*,*,*,*
HIRAGANA,0,0,6000,名詞,普通名詞,*,*,*,*
KATAKANA,1,1,4000,名詞,普通名詞,*,*,*,*
`

const testUserLexicon = `すだち,0,0,*,すだち,植物,柑橘,*,*,*,*,スダチ,*,*,A,*,*,*
`

func buildTestDict(t testing.TB) string {
	t.Helper()
	b := build.NewBuilder()
	if err := b.ParseMatrix(strings.NewReader(testMatrix)); err != nil {
		t.Fatalf("parse matrix: %v", err)
	}
	cb := b.NewCharTableBuilder()
	if err := cb.ParseCharDef(strings.NewReader(testCharDef)); err != nil {
		t.Fatalf("parse char def: %v", err)
	}
	if err := cb.ParseUnkDef(strings.NewReader(testUnkDef)); err != nil {
		t.Fatalf("parse unk def: %v", err)
	}
	b.SetCharTable(cb.Compile())
	if err := b.ParseLexicon(strings.NewReader(testLexicon)); err != nil {
		t.Fatalf("parse lexicon: %v", err)
	}
	path := filepath.Join(t.TempDir(), "system.dic")
	writeDict(t, b, path)
	return path
}

func buildTestUserDict(t testing.TB, systemPath string) string {
	t.Helper()
	store, err := dictionary.Open(systemPath)
	if err != nil {
		t.Fatalf("open system dictionary: %v", err)
	}
	defer store.Close()
	b := build.NewUserBuilder(store)
	if err := b.ParseLexicon(strings.NewReader(testUserLexicon)); err != nil {
		t.Fatalf("parse user lexicon: %v", err)
	}
	path := filepath.Join(t.TempDir(), "user.dic")
	writeDict(t, b, path)
	return path
}

func writeDict(t testing.TB, b *build.Builder, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := b.Build(f, "test dictionary"); err != nil {
		t.Fatalf("build dictionary: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

func openTestStore(t testing.TB, userPaths ...string) *dictionary.Store {
	t.Helper()
	store, err := dictionary.Open(buildTestDict(t), userPaths...)
	if err != nil {
		t.Fatalf("open dictionary: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestTokenizer(t testing.TB, opts ...Option) *Tokenizer {
	t.Helper()
	tok, err := New(openTestStore(t), opts...)
	if err != nil {
		t.Fatalf("new tokenizer: %v", err)
	}
	return tok
}
