// Package build compiles dictionary source files (a CSV lexicon, a
// connection cost table and character definitions) into the binary image
// the dictionary package loads.
package build

import (
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/vellum"

	"github.com/ymatsuda/wakachi/pkg/dictionary"
)

// Build-time data errors. Wrapped errors carry the offending line number so
// bad input can be located; no row is ever dropped silently.
var (
	ErrMalformedRow          = errors.New("build: malformed lexicon row")
	ErrUnresolvedReference   = errors.New("build: unresolved split reference")
	ErrMatrixIndexOutOfRange = errors.New("build: connection id out of matrix range")
)

const lexiconColumns = 18

const maxSplitMembers = 255

type wordEntry struct {
	headword  string // "" when the entry is not indexed in the trie
	leftID    int16
	rightID   int16
	cost      int16
	info      dictionary.WordInfo
	aSplit    string
	bSplit    string
	structure string
	line      int
}

// Builder accumulates parsed dictionary sources and serializes the image.
type Builder struct {
	posList  []dictionary.POS
	posIndex map[dictionary.POS]int
	entries  []wordEntry
	surfaces map[string][]int32

	leftSize  int
	rightSize int
	matrix    []int16

	chars *dictionary.CharTable

	// user dictionary mode
	system *dictionary.Store
}

// NewBuilder creates a system dictionary builder.
func NewBuilder() *Builder {
	return &Builder{
		posIndex: make(map[dictionary.POS]int),
		surfaces: make(map[string][]int32),
	}
}

// NewUserBuilder creates a builder for a user dictionary overlay. POS tuples
// and plain split references resolve against the system store; references
// prefixed with "U" resolve against the rows of this build.
func NewUserBuilder(system *dictionary.Store) *Builder {
	b := NewBuilder()
	b.system = system
	b.leftSize = system.Grammar().LeftSize()
	b.rightSize = system.Grammar().RightSize()
	return b
}

// ParseLexicon reads CSV lexicon rows. Columns: surface (trie key), left id,
// right id, cost, display surface, six POS fields, reading form, normalized
// form, dictionary-form reference, split mode letter (unused), A-unit split,
// B-unit split, word structure.
func (b *Builder) ParseLexicon(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w: %v", line, ErrMalformedRow, err)
		}
		if err := b.parseRow(record, line); err != nil {
			return err
		}
	}
}

func (b *Builder) parseRow(cols []string, line int) error {
	if len(cols) != lexiconColumns {
		return fmt.Errorf("line %d: %w: %d columns, want %d",
			line, ErrMalformedRow, len(cols), lexiconColumns)
	}
	if cols[0] == "" {
		return fmt.Errorf("line %d: %w: empty surface", line, ErrMalformedRow)
	}
	leftID, err := parseConnID(cols[1])
	if err != nil {
		return fmt.Errorf("line %d: %w: left id %q", line, ErrMalformedRow, cols[1])
	}
	rightID, err := parseConnID(cols[2])
	if err != nil {
		return fmt.Errorf("line %d: %w: right id %q", line, ErrMalformedRow, cols[2])
	}
	cost, err := b.parseCost(cols[3])
	if err != nil {
		return fmt.Errorf("line %d: %w: cost %q", line, ErrMalformedRow, cols[3])
	}

	var pos dictionary.POS
	copy(pos[:], cols[5:11])
	posID := b.posIDFor(pos)

	dictFormID := int32(-1)
	if cols[13] != "*" {
		v, err := strconv.ParseInt(cols[13], 10, 32)
		if err != nil || v < 0 {
			return fmt.Errorf("line %d: %w: dictionary form id %q", line, ErrMalformedRow, cols[13])
		}
		dictFormID = int32(v)
	}

	entry := wordEntry{
		leftID:  leftID,
		rightID: rightID,
		cost:    cost,
		info: dictionary.WordInfo{
			Surface:              cols[4],
			HeadwordLength:       len(cols[0]),
			POSID:                int16(posID),
			NormalizedForm:       cols[12],
			DictionaryFormWordID: dictFormID,
			ReadingForm:          cols[11],
		},
		aSplit:    cols[15],
		bSplit:    cols[16],
		structure: cols[17],
		line:      line,
	}
	if entry.info.NormalizedForm == "*" {
		entry.info.NormalizedForm = ""
	}
	if entry.info.ReadingForm == "*" {
		entry.info.ReadingForm = ""
	}
	// left id -1 keeps the row addressable by splits but out of the trie
	if leftID >= 0 {
		entry.headword = cols[0]
		b.surfaces[cols[0]] = append(b.surfaces[cols[0]], int32(len(b.entries)))
	}
	b.entries = append(b.entries, entry)
	return nil
}

// parseConnID accepts -1 (unindexed row marker) and non-negative matrix ids.
func parseConnID(s string) (int16, error) {
	v, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, err
	}
	if v < -1 {
		return 0, fmt.Errorf("connection id %d below -1", v)
	}
	return int16(v), nil
}

// parseCost accepts "*" in user dictionary builds as "estimate from the
// system dictionary after load".
func (b *Builder) parseCost(s string) (int16, error) {
	if s == "*" && b.system != nil {
		return dictionary.CostNeedsEstimation, nil
	}
	v, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return int16(v), nil
}

func (b *Builder) posIDFor(pos dictionary.POS) int {
	if b.system != nil {
		if id := b.system.Grammar().PartOfSpeechID(pos); id >= 0 {
			return id
		}
		if id, ok := b.posIndex[pos]; ok {
			return id
		}
		id := b.system.Grammar().PartOfSpeechSize() + len(b.posList)
		b.posIndex[pos] = id
		b.posList = append(b.posList, pos)
		return id
	}
	if id, ok := b.posIndex[pos]; ok {
		return id
	}
	id := len(b.posList)
	b.posIndex[pos] = id
	b.posList = append(b.posList, pos)
	return id
}

// SetCharTable installs a compiled character category table (see
// ParseCharDef / ParseUnkDef).
func (b *Builder) SetCharTable(t *dictionary.CharTable) { b.chars = t }

// Build validates references, resolves splits and writes the image.
func (b *Builder) Build(w io.Writer, description string) error {
	if b.matrix == nil && b.system == nil {
		return fmt.Errorf("build: no connection matrix")
	}
	if err := b.validateConnIDs(); err != nil {
		return err
	}
	for i := range b.entries {
		e := &b.entries[i]
		var err error
		if e.info.AUnitSplit, err = b.resolveSplit(e.aSplit, e.line); err != nil {
			return err
		}
		if e.info.BUnitSplit, err = b.resolveSplit(e.bSplit, e.line); err != nil {
			return err
		}
		if e.info.WordStructure, err = b.resolveSplit(e.structure, e.line); err != nil {
			return err
		}
		if e.info.DictionaryFormWordID >= int32(len(b.entries)) {
			return fmt.Errorf("line %d: %w: dictionary form id %d",
				e.line, ErrUnresolvedReference, e.info.DictionaryFormWordID)
		}
	}

	buf := dictionary.AppendHeader(nil, dictionary.Header{
		Version:     dictionary.Version,
		CreateTime:  uint64(time.Now().Unix()),
		Description: description,
	})
	buf = dictionary.AppendGrammar(buf, b.posList, b.leftSizeOut(), b.rightSizeOut(), b.matrixOut())
	chars := b.chars
	if chars == nil {
		chars = dictionary.NewCharTable(nil, nil, nil)
	}
	buf = dictionary.AppendCharTable(buf, chars)
	lex, err := b.buildLexicon()
	if err != nil {
		return err
	}
	buf = append(buf, lex...)
	_, err = w.Write(buf)
	return err
}

// User images carry only their own new POS tuples and no matrix.
func (b *Builder) leftSizeOut() int {
	if b.system != nil {
		return 0
	}
	return b.leftSize
}

func (b *Builder) rightSizeOut() int {
	if b.system != nil {
		return 0
	}
	return b.rightSize
}

func (b *Builder) matrixOut() []int16 {
	if b.system != nil {
		return nil
	}
	return b.matrix
}

// validateConnIDs checks every indexed row against the matrix dimensions.
// Rows with left id -1 stay out of the trie and never connect, so their
// other ids are not constrained.
func (b *Builder) validateConnIDs() error {
	for _, e := range b.entries {
		if e.leftID < 0 {
			continue
		}
		if e.rightID < 0 || int(e.leftID) >= b.leftSize || int(e.rightID) >= b.rightSize {
			return fmt.Errorf("line %d: %w: (%d, %d) in %dx%d matrix",
				e.line, ErrMatrixIndexOutOfRange, e.leftID, e.rightID, b.leftSize, b.rightSize)
		}
	}
	return nil
}

// resolveSplit parses a "/"-joined split column. Members are row indices,
// "U"-prefixed row indices of the user dictionary being built, or quoted
// 8-field word references (surface, six POS fields, reading).
func (b *Builder) resolveSplit(s string, line int) ([]int32, error) {
	if s == "*" || s == "" {
		return nil, nil
	}
	items := strings.Split(s, "/")
	if len(items) > maxSplitMembers {
		return nil, fmt.Errorf("line %d: %w: %d split members", line, ErrMalformedRow, len(items))
	}
	ids := make([]int32, 0, len(items))
	for _, item := range items {
		id, err := b.resolveRef(item, line)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (b *Builder) resolveRef(item string, line int) (int32, error) {
	if strings.HasPrefix(item, "U") && b.system != nil {
		v, err := strconv.ParseInt(item[1:], 10, 32)
		if err != nil || v < 0 || v >= int64(len(b.entries)) {
			return 0, fmt.Errorf("line %d: %w: %q", line, ErrUnresolvedReference, item)
		}
		return dictionary.WordID(1, int32(v)), nil
	}
	if v, err := strconv.ParseInt(item, 10, 32); err == nil {
		limit := int64(len(b.entries))
		if b.system != nil {
			limit = int64(b.systemSize())
		}
		if v < 0 || v >= limit {
			return 0, fmt.Errorf("line %d: %w: row %d", line, ErrUnresolvedReference, v)
		}
		return int32(v), nil
	}
	fields := strings.Split(item, ",")
	if len(fields) != 8 {
		return 0, fmt.Errorf("line %d: %w: %q", line, ErrUnresolvedReference, item)
	}
	var pos dictionary.POS
	copy(pos[:], fields[1:7])
	if id, ok := b.findWord(fields[0], pos, fields[7]); ok {
		return id, nil
	}
	return 0, fmt.Errorf("line %d: %w: %q", line, ErrUnresolvedReference, item)
}

func (b *Builder) systemSize() int {
	return b.system.EntryCount(0)
}

func (b *Builder) findWord(surface string, pos dictionary.POS, reading string) (int32, bool) {
	posID := -1
	if b.system != nil {
		posID = b.system.Grammar().PartOfSpeechID(pos)
		if posID >= 0 {
			if id, ok := b.system.FindWordID(surface, pos, reading); ok {
				return id, true
			}
		}
	}
	if posID < 0 {
		if id, ok := b.posIndex[pos]; ok {
			posID = id
		}
	}
	if posID < 0 {
		return 0, false
	}
	for i, e := range b.entries {
		if e.info.Surface == surface && int(e.info.POSID) == posID && e.info.ReadingForm == reading {
			if b.system != nil {
				return dictionary.WordID(1, int32(i)), true
			}
			return int32(i), true
		}
	}
	return 0, false
}

func (b *Builder) buildLexicon() ([]byte, error) {
	keys := make([]string, 0, len(b.surfaces))
	maxLen := 0
	for s := range b.surfaces {
		keys = append(keys, s)
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	sort.Strings(keys)

	var idTable []byte
	var fstBuf bytes.Buffer
	fb, err := vellum.New(&fstBuf, nil)
	if err != nil {
		return nil, fmt.Errorf("build: lexicon trie: %w", err)
	}
	for _, s := range keys {
		ids := b.surfaces[s]
		offset := uint64(len(idTable))
		idTable = append(idTable, byte(len(ids)))
		for _, id := range ids {
			idTable = binary.LittleEndian.AppendUint32(idTable, uint32(id))
		}
		if err := fb.Insert([]byte(s), offset); err != nil {
			return nil, fmt.Errorf("build: lexicon trie: %w", err)
		}
	}
	if err := fb.Close(); err != nil {
		return nil, fmt.Errorf("build: lexicon trie: %w", err)
	}
	trie := fstBuf.Bytes()
	if len(keys) == 0 {
		trie = nil
	}

	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, uint32(maxLen))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(trie)))
	buf = append(buf, trie...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(idTable)))
	buf = append(buf, idTable...)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b.entries)))
	for _, e := range b.entries {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(e.leftID))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(e.rightID))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(e.cost))
	}

	var blob []byte
	offsets := make([]uint32, len(b.entries))
	for i, e := range b.entries {
		if len(blob) > math.MaxUint32 {
			return nil, fmt.Errorf("build: word info blob too large")
		}
		offsets[i] = uint32(len(blob))
		blob = dictionary.AppendWordInfo(blob, e.info)
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(blob)))
	for _, off := range offsets {
		buf = binary.LittleEndian.AppendUint32(buf, off)
	}
	buf = append(buf, blob...)
	return buf, nil
}
