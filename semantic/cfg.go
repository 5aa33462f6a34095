package semantic

import (
	sitter "github.com/smacker/go-tree-sitter"

	"kaizen/parser"
)

// BlockKind is the kind of a CFG basic block.
type BlockKind int

const (
	EntryBlock BlockKind = iota
	NormalBlock
	BranchBlock
	LoopBlock
	ExitBlock
	ThrowBlock
)

// BlockID is a dense integer handle into a ControlFlowGraph's arena.
type BlockID int

// BasicBlock is one node of a control-flow graph.
type BasicBlock struct {
	ID            BlockID
	Kind          BlockKind
	Predecessors  []BlockID
	Successors    []BlockID
	StatementSpan []parser.Span
}

// ControlFlowGraph is the per-function (or per-module) basic-block graph.
type ControlFlowGraph struct {
	FunctionName string
	blocks       []*BasicBlock
	Entry        BlockID
	Exit         BlockID
	throw        BlockID
	hasThrow     bool
}

// NewControlFlowGraph creates a CFG with its Entry and Exit blocks already
// allocated and connected.
func NewControlFlowGraph(functionName string) *ControlFlowGraph {
	g := &ControlFlowGraph{FunctionName: functionName}
	g.Entry = g.addBlock(EntryBlock)
	g.Exit = g.addBlock(ExitBlock)
	return g
}

func (g *ControlFlowGraph) addBlock(kind BlockKind) BlockID {
	id := BlockID(len(g.blocks))
	g.blocks = append(g.blocks, &BasicBlock{ID: id, Kind: kind})
	return id
}

// Get returns the block for id.
func (g *ControlFlowGraph) Get(id BlockID) *BasicBlock { return g.blocks[id] }

// Len returns the number of blocks.
func (g *ControlFlowGraph) Len() int { return len(g.blocks) }

// AddEdge connects from -> to, updating both sides' neighbor lists (no
// duplicate edges are added).
func (g *ControlFlowGraph) AddEdge(from, to BlockID) {
	f := g.blocks[from]
	for _, s := range f.Successors {
		if s == to {
			return
		}
	}
	f.Successors = append(f.Successors, to)
	g.blocks[to].Predecessors = append(g.blocks[to].Predecessors, from)
}

func (g *ControlFlowGraph) throwBlock() BlockID {
	if !g.hasThrow {
		g.throw = g.addBlock(ThrowBlock)
		g.AddEdge(g.throw, g.Exit)
		g.hasThrow = true
	}
	return g.throw
}

// BuildCFG builds a control-flow graph for a function (or module) body.
// Statement sequences coalesce into Normal blocks; if/switch create Branch
// blocks; loops create Loop blocks; throw reaches the Throw block, which
// connects to Exit and to every catch handler in the body; return connects
// to Exit, break to the innermost loop's exit, and continue to the
// innermost loop's header.
func BuildCFG(functionName string, body *sitter.Node, source []byte) *ControlFlowGraph {
	g := NewControlFlowGraph(functionName)
	cur := g.addBlock(NormalBlock)
	g.AddEdge(g.Entry, cur)
	loopExits := []BlockID{}
	final := g.buildStatements(body, cur, &loopExits, source)
	if final != noBlock {
		g.AddEdge(final, g.Exit)
	}
	return g
}

const noBlock BlockID = -1

// buildStatements threads statements (direct children of a block, or a
// single statement) through the graph starting at cur, returning the block
// that falls through to whatever follows (or noBlock if every path
// terminates via return/throw/break/continue).
func (g *ControlFlowGraph) buildStatements(n *sitter.Node, cur BlockID, loopExits *[]BlockID, source []byte) BlockID {
	if n == nil {
		return cur
	}
	if n.Type() == "statement_block" {
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			if cur == noBlock {
				break
			}
			cur = g.buildStatement(n.NamedChild(i), cur, loopExits, source)
		}
		return cur
	}
	return g.buildStatement(n, cur, loopExits, source)
}

func (g *ControlFlowGraph) buildStatement(n *sitter.Node, cur BlockID, loopExits *[]BlockID, source []byte) BlockID {
	if n == nil || cur == noBlock {
		return cur
	}
	span := parser.NodeSpan(n)
	switch n.Type() {
	case "if_statement":
		branch := g.addBlock(BranchBlock)
		g.AddEdge(cur, branch)
		join := g.addBlock(NormalBlock)
		thenEnd := g.buildStatements(n.ChildByFieldName("consequence"), func() BlockID {
			b := g.addBlock(NormalBlock)
			g.AddEdge(branch, b)
			return b
		}(), loopExits, source)
		if thenEnd != noBlock {
			g.AddEdge(thenEnd, join)
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			elseBlock := g.addBlock(NormalBlock)
			g.AddEdge(branch, elseBlock)
			elseEnd := g.buildStatements(alt, elseBlock, loopExits, source)
			if elseEnd != noBlock {
				g.AddEdge(elseEnd, join)
			}
		} else {
			g.AddEdge(branch, join)
		}
		return join

	case "for_statement", "for_in_statement", "for_of_statement", "while_statement", "do_statement":
		header := g.addBlock(LoopBlock)
		g.AddEdge(cur, header)
		after := g.addBlock(NormalBlock)
		*loopExits = append(*loopExits, after)
		bodyStart := g.addBlock(NormalBlock)
		g.AddEdge(header, bodyStart)
		g.AddEdge(header, after)
		bodyEnd := g.buildStatements(n.ChildByFieldName("body"), bodyStart, loopExits, source)
		if bodyEnd != noBlock {
			g.AddEdge(bodyEnd, header)
		}
		*loopExits = (*loopExits)[:len(*loopExits)-1]
		return after

	case "switch_statement":
		branch := g.addBlock(BranchBlock)
		g.AddEdge(cur, branch)
		join := g.addBlock(NormalBlock)
		body := n.ChildByFieldName("body")
		if body != nil {
			count := int(body.NamedChildCount())
			for i := 0; i < count; i++ {
				caseBlock := g.addBlock(NormalBlock)
				g.AddEdge(branch, caseBlock)
				caseEnd := g.buildStatements(body.NamedChild(i), caseBlock, loopExits, source)
				if caseEnd != noBlock {
					g.AddEdge(caseEnd, join)
				}
			}
		}
		g.AddEdge(branch, join)
		return join

	case "try_statement":
		tryEnd := g.buildStatements(n.ChildByFieldName("body"), cur, loopExits, source)
		join := g.addBlock(NormalBlock)
		if tryEnd != noBlock {
			g.AddEdge(tryEnd, join)
		}
		if handler := n.ChildByFieldName("handler"); handler != nil {
			catchBlock := g.addBlock(NormalBlock)
			g.AddEdge(g.throwBlock(), catchBlock)
			catchEnd := g.buildStatements(handler.ChildByFieldName("body"), catchBlock, loopExits, source)
			if catchEnd != noBlock {
				g.AddEdge(catchEnd, join)
			}
		}
		return join

	case "return_statement":
		g.blocks[cur].StatementSpan = append(g.blocks[cur].StatementSpan, span)
		g.AddEdge(cur, g.Exit)
		return noBlock

	case "throw_statement":
		g.blocks[cur].StatementSpan = append(g.blocks[cur].StatementSpan, span)
		g.AddEdge(cur, g.throwBlock())
		return noBlock

	case "break_statement":
		g.blocks[cur].StatementSpan = append(g.blocks[cur].StatementSpan, span)
		if len(*loopExits) > 0 {
			g.AddEdge(cur, (*loopExits)[len(*loopExits)-1])
		}
		return noBlock

	case "continue_statement":
		g.blocks[cur].StatementSpan = append(g.blocks[cur].StatementSpan, span)
		if len(*loopExits) > 0 {
			// Each loop's header block is allocated immediately before its
			// exit block, so the innermost header is the innermost exit - 1.
			g.AddEdge(cur, (*loopExits)[len(*loopExits)-1]-1)
		}
		return noBlock

	default:
		g.blocks[cur].StatementSpan = append(g.blocks[cur].StatementSpan, span)
		return cur
	}
}

// ComputeDominators returns, for each block, the set of blocks that
// dominate it, via the standard iterative fixed-point dataflow algorithm:
// Dom(entry) = {entry}; Dom(b) = {b} union (intersection of Dom(p) for p in
// predecessors(b)), iterated until no change.
func (g *ControlFlowGraph) ComputeDominators() map[BlockID]map[BlockID]bool {
	all := make(map[BlockID]bool, len(g.blocks))
	for _, b := range g.blocks {
		all[b.ID] = true
	}
	dom := make(map[BlockID]map[BlockID]bool, len(g.blocks))
	for _, b := range g.blocks {
		dom[b.ID] = cloneSet(all)
	}
	dom[g.Entry] = map[BlockID]bool{g.Entry: true}

	changed := true
	for changed {
		changed = false
		for _, b := range g.blocks {
			if b.ID == g.Entry {
				continue
			}
			var newDom map[BlockID]bool
			for _, p := range b.Predecessors {
				if newDom == nil {
					newDom = cloneSet(dom[p])
				} else {
					newDom = intersect(newDom, dom[p])
				}
			}
			if newDom == nil {
				newDom = map[BlockID]bool{}
			}
			newDom[b.ID] = true
			if !setsEqual(newDom, dom[b.ID]) {
				dom[b.ID] = newDom
				changed = true
			}
		}
	}
	return dom
}

// IsDominator reports whether dominator dominates dominated in doms.
func IsDominator(doms map[BlockID]map[BlockID]bool, dominator, dominated BlockID) bool {
	return doms[dominated][dominator]
}

func cloneSet(s map[BlockID]bool) map[BlockID]bool {
	out := make(map[BlockID]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func intersect(a, b map[BlockID]bool) map[BlockID]bool {
	out := make(map[BlockID]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func setsEqual(a, b map[BlockID]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
