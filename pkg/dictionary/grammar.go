package dictionary

import (
	"encoding/binary"
	"fmt"
)

// POSDepth is the number of fields in a part-of-speech tuple: major class,
// three subclasses, conjugation type and conjugation form.
const POSDepth = 6

// InhibitedConnection marks a (rightID, leftID) pair that may never be
// adjacent; path search skips such edges entirely.
const InhibitedConnection int16 = 0x7fff

// POS is one part-of-speech tuple.
type POS [POSDepth]string

// Grammar holds the part-of-speech table and the connection cost matrix of
// one dictionary image. After load it is read-only.
type Grammar struct {
	posList   []POS
	leftSize  int
	rightSize int
	matrix    []int16
}

// PartOfSpeechSize returns the number of POS tuples.
func (g *Grammar) PartOfSpeechSize() int { return len(g.posList) }

// PartOfSpeech returns the tuple for a POS id.
func (g *Grammar) PartOfSpeech(id int) POS { return g.posList[id] }

// PartOfSpeechID finds the id of a tuple, or -1.
func (g *Grammar) PartOfSpeechID(pos POS) int {
	for i, p := range g.posList {
		if p == pos {
			return i
		}
	}
	return -1
}

// LeftSize returns the number of left connection ids the matrix covers.
func (g *Grammar) LeftSize() int { return g.leftSize }

// RightSize returns the number of right connection ids the matrix covers.
func (g *Grammar) RightSize() int { return g.rightSize }

// ConnectCost returns the cost of joining a predecessor with connection id
// right to a successor with connection id left.
func (g *Grammar) ConnectCost(right, left int16) int16 {
	return g.matrix[int(right)*g.leftSize+int(left)]
}

// BOSParameter returns (leftID, rightID, cost) of the begin-of-sentence
// sentinel. EOSParameter is its end-of-sentence counterpart.
func (g *Grammar) BOSParameter() (int16, int16, int16) { return 0, 0, 0 }

// EOSParameter returns (leftID, rightID, cost) of the end-of-sentence
// sentinel.
func (g *Grammar) EOSParameter() (int16, int16, int16) { return 0, 0, 0 }

// appendPOSList appends another grammar's POS tuples (user dictionary merge)
// and returns the id offset at which they were installed.
func (g *Grammar) appendPOSList(other *Grammar) int {
	offset := len(g.posList)
	g.posList = append(g.posList, other.posList...)
	return offset
}

// AppendGrammar serializes a POS table and matrix onto buf. The matrix is
// rightSize rows of leftSize int16 costs, row-major by right id.
func AppendGrammar(buf []byte, posList []POS, leftSize, rightSize int, matrix []int16) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(posList)))
	for _, pos := range posList {
		for _, field := range pos {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(len(field)))
			buf = append(buf, field...)
		}
	}
	buf = binary.LittleEndian.AppendUint16(buf, uint16(leftSize))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(rightSize))
	for _, cost := range matrix {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(cost))
	}
	return buf
}

func readGrammar(r *reader) (*Grammar, error) {
	posSize, err := r.u16()
	if err != nil {
		return nil, err
	}
	g := &Grammar{posList: make([]POS, posSize)}
	for i := range g.posList {
		for j := 0; j < POSDepth; j++ {
			if g.posList[i][j], err = r.string(); err != nil {
				return nil, err
			}
		}
	}
	left, err := r.u16()
	if err != nil {
		return nil, err
	}
	right, err := r.u16()
	if err != nil {
		return nil, err
	}
	g.leftSize, g.rightSize = int(left), int(right)
	raw, err := r.bytes(2 * g.leftSize * g.rightSize)
	if err != nil {
		return nil, fmt.Errorf("connection matrix: %w", err)
	}
	g.matrix = make([]int16, g.leftSize*g.rightSize)
	for i := range g.matrix {
		g.matrix[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return g, nil
}
