package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ymatsuda/wakachi/pkg/config"
	"github.com/ymatsuda/wakachi/pkg/dictionary"
	"github.com/ymatsuda/wakachi/pkg/tokenizer"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	dictPath := flag.String("dict", "", "compiled system dictionary (overrides config)")
	userDicts := flag.String("user", "", "comma-separated compiled user dictionaries")
	modeFlag := flag.String("mode", "", "split mode: A, B or C")
	inFile := flag.String("file", "", "tokenize each line of a file instead of arguments")
	wordsOnly := flag.Bool("wakati", false, "print surfaces separated by spaces only")
	flag.Usage = printUsage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(err)
	}
	if *dictPath != "" {
		cfg.SystemDict = *dictPath
	}
	if *userDicts != "" {
		cfg.UserDicts = strings.Split(*userDicts, ",")
	}
	if *modeFlag != "" {
		cfg.Mode = *modeFlag
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}
	mode, err := tokenizer.ParseMode(cfg.Mode)
	if err != nil {
		fail(err)
	}

	store, err := dictionary.Open(cfg.SystemDict, cfg.UserDicts...)
	if err != nil {
		fail(err)
	}
	defer store.Close()

	var opts []tokenizer.Option
	if cfg.Normalize {
		// NFKC first so half-width prolonged marks widen before collapsing.
		opts = append(opts, tokenizer.WithNormalizer(
			&tokenizer.NFKCNormalizer{Lowercase: cfg.Lowercase},
			&tokenizer.ProlongedSoundMarkNormalizer{},
		))
	}
	if cfg.CacheSize >= 0 {
		opts = append(opts, tokenizer.WithCacheSize(cfg.CacheSize))
	}
	tok, err := tokenizer.New(store, opts...)
	if err != nil {
		fail(err)
	}

	switch {
	case *inFile != "":
		if err := tokenizeFile(tok, mode, *inFile, *wordsOnly); err != nil {
			fail(err)
		}
	case flag.NArg() > 0:
		emit(tok.Tokenize(strings.Join(flag.Args(), " "), mode), *wordsOnly)
	default:
		interactive(tok, mode, *wordsOnly)
	}
}

// tokenizeFile analyzes every line of a file on a worker per CPU and prints
// the results in input order.
func tokenizeFile(tok *tokenizer.Tokenizer, mode tokenizer.Mode, path string, wordsOnly bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}

	results := make([]*tokenizer.MorphemeList, len(lines))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			results[i] = tok.Tokenize(line, mode)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, ms := range results {
		emit(ms, wordsOnly)
	}
	return nil
}

func interactive(tok *tokenizer.Tokenizer, mode tokenizer.Mode, wordsOnly bool) {
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		text := sc.Text()
		if text == "" {
			continue
		}
		emit(tok.Tokenize(text, mode), wordsOnly)
	}
}

func emit(ms *tokenizer.MorphemeList, wordsOnly bool) {
	if wordsOnly {
		fmt.Println(strings.Join(ms.Surfaces(), " "))
		return
	}
	for i := 0; i < ms.Len(); i++ {
		m := ms.Get(i)
		pos := m.PartOfSpeech()
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
			m.Surface(), strings.Join(pos[:], ","),
			m.NormalizedForm(), m.DictionaryForm(), m.ReadingForm())
	}
	fmt.Println("EOS")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: tokenize -dict <system.dic> [options] [text...]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Without text arguments or -file, reads lines interactively.")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "tokenize: %v\n", err)
	os.Exit(1)
}
