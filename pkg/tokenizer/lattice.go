package tokenizer

import (
	"fmt"

	"github.com/ymatsuda/wakachi/pkg/dictionary"
)

// node is one lattice entry: a dictionary match or a synthesized candidate
// spanning [begin, end) in the modified text. totalCost and bestPrev are the
// running minimum-cost-path state, fixed at insertion.
type node struct {
	begin, end int

	leftID  int16
	rightID int16
	cost    int16

	wordID int32
	oov    bool
	info   *dictionary.WordInfo

	totalCost int32
	bestPrev  int32
	connected bool
}

func (n node) byteLength() int { return n.end - n.begin }

// lattice is the analysis graph over one input. Nodes live in a flat arena;
// endLists[p] indexes the nodes ending at byte position p. Node 0 is the
// begin-of-sentence sentinel. Inserting a node relaxes its cost against all
// predecessors immediately, so the minimum path is known as soon as the
// end-of-sentence sentinel connects.
type lattice struct {
	grammar  *dictionary.Grammar
	size     int
	nodes    []node
	endLists [][]int32
	eos      int32
}

func newLattice(grammar *dictionary.Grammar, size int) *lattice {
	la := &lattice{
		grammar:  grammar,
		size:     size,
		endLists: make([][]int32, size+1),
		eos:      -1,
	}
	left, right, cost := grammar.BOSParameter()
	bos := node{
		leftID:    left,
		rightID:   right,
		cost:      cost,
		wordID:    -1,
		bestPrev:  -1,
		connected: true,
	}
	la.nodes = append(la.nodes, bos)
	la.endLists[0] = append(la.endLists[0], 0)
	return la
}

func (la *lattice) hasPreviousNode(pos int) bool {
	return len(la.endLists[pos]) > 0
}

// insert adds n and connects it to the cheapest reachable predecessor.
// Inhibited edges are skipped; ties keep the earliest-inserted predecessor.
func (la *lattice) insert(n node) {
	n.bestPrev = -1
	for _, pi := range la.endLists[n.begin] {
		prev := &la.nodes[pi]
		if !prev.connected {
			continue
		}
		cc := la.grammar.ConnectCost(prev.rightID, n.leftID)
		if cc == dictionary.InhibitedConnection {
			continue
		}
		cost := prev.totalCost + int32(cc)
		if !n.connected || cost < n.totalCost {
			n.totalCost = cost
			n.bestPrev = pi
			n.connected = true
		}
	}
	if n.connected {
		n.totalCost += int32(n.cost)
	}
	idx := int32(len(la.nodes))
	la.nodes = append(la.nodes, n)
	la.endLists[n.end] = append(la.endLists[n.end], idx)
}

// connectEOS closes the lattice. The caller guarantees coverage of every
// boundary, so an unreachable end sentinel is a corrupted-lattice bug, not
// an input condition.
func (la *lattice) connectEOS() {
	left, right, cost := la.grammar.EOSParameter()
	n := node{
		begin:   la.size,
		end:     la.size,
		leftID:  left,
		rightID: right,
		cost:    cost,
		wordID:  -1,
	}
	la.insert(n)
	la.eos = int32(len(la.nodes) - 1)
	if !la.nodes[la.eos].connected {
		panic(fmt.Sprintf("lattice: end node unreachable at %d", la.size))
	}
}

// bestPath returns the minimum-cost path, sentinels excluded.
func (la *lattice) bestPath() []node {
	var path []node
	for i := la.nodes[la.eos].bestPrev; i > 0; i = la.nodes[i].bestPrev {
		path = append(path, la.nodes[i])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// pathCost is the total cost of the chosen path including both sentinel
// connections.
func (la *lattice) pathCost() int32 {
	return la.nodes[la.eos].totalCost
}

func (la *lattice) dump(in *inputText) {
	for pos := la.size; pos >= 0; pos-- {
		for _, i := range la.endLists[pos] {
			n := la.nodes[i]
			tracer().Debugf("node %d: %q [%d,%d) word=%d left=%d right=%d cost=%d total=%d prev=%d",
				i, in.modifiedSlice(n.begin, n.end), n.begin, n.end,
				n.wordID, n.leftID, n.rightID, n.cost, n.totalCost, n.bestPrev)
		}
	}
}
