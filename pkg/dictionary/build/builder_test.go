package build

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ymatsuda/wakachi/pkg/dictionary"
)

const validMatrix = `2 2
0 0 0
0 1 100
1 0 200
`

const validLexicon = `東京都,0,0,3000,東京都,名詞,固有名詞,地名,*,*,*,トウキョウト,*,*,C,1/2,*,1/2
東京,0,0,2500,東京,名詞,固有名詞,地名,*,*,*,トウキョウ,*,*,A,*,*,*
都,1,1,2000,都,名詞,普通名詞,*,*,*,*,ト,*,*,A,*,*,*
`

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b := NewBuilder()
	if err := b.ParseMatrix(strings.NewReader(validMatrix)); err != nil {
		t.Fatalf("parse matrix: %v", err)
	}
	return b
}

func TestBuildValidImage(t *testing.T) {
	b := newTestBuilder(t)
	if err := b.ParseLexicon(strings.NewReader(validLexicon)); err != nil {
		t.Fatalf("parse lexicon: %v", err)
	}
	var buf bytes.Buffer
	if err := b.Build(&buf, "ok"); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte(dictionary.Magic)) {
		t.Error("image does not start with the magic")
	}
}

func TestParseLexiconErrors(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want error
	}{
		{"too few columns", "東京,0,0,100,東京,名詞", ErrMalformedRow},
		{"empty surface", ",0,0,100,東京,名詞,*,*,*,*,*,トウキョウ,*,*,A,*,*,*", ErrMalformedRow},
		{"bad left id", "東京,x,0,100,東京,名詞,*,*,*,*,*,トウキョウ,*,*,A,*,*,*", ErrMalformedRow},
		{"left id below -1", "東京,-2,0,100,東京,名詞,*,*,*,*,*,トウキョウ,*,*,A,*,*,*", ErrMalformedRow},
		{"bad cost", "東京,0,0,*,東京,名詞,*,*,*,*,*,トウキョウ,*,*,A,*,*,*", ErrMalformedRow},
		{"bad dict form", "東京,0,0,100,東京,名詞,*,*,*,*,*,トウキョウ,*,-2,A,*,*,*", ErrMalformedRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t)
			err := b.ParseLexicon(strings.NewReader(tt.row + "\n"))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildRejectsBadReferences(t *testing.T) {
	tests := []struct {
		name string
		rows string
		want error
	}{
		{
			"split index out of range",
			"東京,0,0,100,東京,名詞,*,*,*,*,*,トウキョウ,*,*,C,0/9,*,*\n",
			ErrUnresolvedReference,
		},
		{
			"unknown word reference",
			"東京,0,0,100,東京,名詞,*,*,*,*,*,トウキョウ,*,*,C,\"謎,名詞,*,*,*,*,*,ナゾ\",*,*\n",
			ErrUnresolvedReference,
		},
		{
			"dictionary form out of range",
			"東京,0,0,100,東京,名詞,*,*,*,*,*,トウキョウ,*,7,A,*,*,*\n",
			ErrUnresolvedReference,
		},
		{
			"connection id out of matrix",
			"東京,5,0,100,東京,名詞,*,*,*,*,*,トウキョウ,*,*,A,*,*,*\n",
			ErrMatrixIndexOutOfRange,
		},
		{
			"negative right id on an indexed row",
			"東京,0,-1,100,東京,名詞,*,*,*,*,*,トウキョウ,*,*,A,*,*,*\n",
			ErrMatrixIndexOutOfRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t)
			if err := b.ParseLexicon(strings.NewReader(tt.rows)); err != nil {
				t.Fatalf("parse: %v", err)
			}
			err := b.Build(&bytes.Buffer{}, "")
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildWithoutMatrix(t *testing.T) {
	b := NewBuilder()
	if err := b.Build(&bytes.Buffer{}, ""); err == nil {
		t.Error("system build without a matrix must fail")
	}
}

func TestUnindexedRow(t *testing.T) {
	// left id -1 keeps the row out of the trie but addressable by splits.
	rows := "東京都,0,0,3000,東京都,名詞,*,*,*,*,*,トウキョウト,*,*,C,1/2,*,*\n" +
		"東京,-1,0,2500,東京,名詞,*,*,*,*,*,トウキョウ,*,*,A,*,*,*\n" +
		"都,0,0,2000,都,名詞,*,*,*,*,*,ト,*,*,A,*,*,*\n"
	b := newTestBuilder(t)
	if err := b.ParseLexicon(strings.NewReader(rows)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := b.Build(&buf, ""); err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(b.surfaces["東京"]) != 0 {
		t.Error("unindexed row leaked into the trie keys")
	}
	if len(b.surfaces["東京都"]) != 1 {
		t.Error("indexed row missing from the trie keys")
	}
}
