package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ymatsuda/wakachi/pkg/dictionary"
	"github.com/ymatsuda/wakachi/pkg/dictionary/build"
)

func main() {
	lexiconPath := flag.String("lexicon", "", "CSV lexicon file (required)")
	matrixPath := flag.String("matrix", "", "connection cost matrix (required for system builds)")
	charDefPath := flag.String("chardef", "", "character category definitions")
	unkDefPath := flag.String("unkdef", "", "out-of-vocabulary prototype definitions")
	systemPath := flag.String("system", "", "compiled system dictionary; switches to user dictionary mode")
	outPath := flag.String("o", "system.dic", "output image path")
	description := flag.String("description", "", "description embedded in the image header")
	flag.Usage = printUsage
	flag.Parse()

	if *lexiconPath == "" {
		printUsage()
		os.Exit(1)
	}

	var b *build.Builder
	if *systemPath != "" {
		store, err := dictionary.Open(*systemPath)
		if err != nil {
			fail(err)
		}
		defer store.Close()
		b = build.NewUserBuilder(store)
	} else {
		if *matrixPath == "" {
			fail(fmt.Errorf("system builds need -matrix"))
		}
		b = build.NewBuilder()
		if err := parseInto(*matrixPath, b.ParseMatrix); err != nil {
			fail(err)
		}
	}

	if *charDefPath != "" {
		cb := b.NewCharTableBuilder()
		if err := parseInto(*charDefPath, cb.ParseCharDef); err != nil {
			fail(err)
		}
		if *unkDefPath != "" {
			if err := parseInto(*unkDefPath, cb.ParseUnkDef); err != nil {
				fail(err)
			}
		}
		b.SetCharTable(cb.Compile())
	}

	if err := parseInto(*lexiconPath, b.ParseLexicon); err != nil {
		fail(err)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		fail(err)
	}
	if err := b.Build(out, *description); err != nil {
		out.Close()
		os.Remove(*outPath)
		fail(err)
	}
	if err := out.Close(); err != nil {
		fail(err)
	}
	fmt.Printf("wrote %s\n", *outPath)
}

func parseInto(path string, parse func(r io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return parse(f)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: dictbuild -lexicon <lex.csv> -matrix <matrix.def> [options]")
	fmt.Fprintln(os.Stderr, "       dictbuild -lexicon <user.csv> -system <system.dic> [options]")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "dictbuild: %v\n", err)
	os.Exit(1)
}
