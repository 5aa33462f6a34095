package semantic

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaizen/parser"
)

// firstFunctionBody returns the body of the first function_declaration found
// in a depth-first walk of n.
func firstFunctionBody(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "function_declaration" {
		return n.ChildByFieldName("body")
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if body := firstFunctionBody(n.Child(i)); body != nil {
			return body
		}
	}
	return nil
}

func buildCFGFromFunction(t *testing.T, source string) *ControlFlowGraph {
	t.Helper()
	pf, err := parser.Parse("a.js", []byte(source))
	require.NoError(t, err)
	t.Cleanup(pf.Close)

	body := firstFunctionBody(pf.Root)
	require.NotNil(t, body)
	return BuildCFG("f", body, pf.Source)
}

func TestCFGLinearBodyHasSingleExitPath(t *testing.T) {
	g := buildCFGFromFunction(t, "function f() { let x = 1; let y = 2; }")
	require.NotNil(t, g)
	exit := g.Get(g.Exit)
	assert.NotEmpty(t, exit.Predecessors)
}

func TestCFGIfStatementCreatesBranch(t *testing.T) {
	g := buildCFGFromFunction(t, `
		function f(a) {
			if (a) {
				return 1;
			} else {
				return 2;
			}
		}
	`)
	foundBranch := false
	for i := 0; i < g.Len(); i++ {
		if g.Get(BlockID(i)).Kind == BranchBlock {
			foundBranch = true
			assert.Len(t, g.Get(BlockID(i)).Successors, 2)
		}
	}
	assert.True(t, foundBranch)
}

func TestCFGEveryBlockReachableFromEntry(t *testing.T) {
	g := buildCFGFromFunction(t, `
		function f(a) {
			for (let i = 0; i < a; i++) {
				if (i === 2) {
					break;
				}
			}
			return a;
		}
	`)
	reachable := map[BlockID]bool{g.Entry: true}
	queue := []BlockID{g.Entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, s := range g.Get(cur).Successors {
			if !reachable[s] {
				reachable[s] = true
				queue = append(queue, s)
			}
		}
	}
	for i := 0; i < g.Len(); i++ {
		assert.True(t, reachable[BlockID(i)], "block %d not reachable from entry", i)
	}
}

func TestComputeDominatorsEntryDominatesEverything(t *testing.T) {
	g := buildCFGFromFunction(t, `
		function f(a) {
			if (a) {
				return 1;
			}
			return 2;
		}
	`)
	doms := g.ComputeDominators()
	for i := 0; i < g.Len(); i++ {
		assert.True(t, IsDominator(doms, g.Entry, BlockID(i)))
	}
}

func TestComputeDominatorsJoinBlockNotDominatedByEitherBranch(t *testing.T) {
	g := buildCFGFromFunction(t, `
		function f(a) {
			let r;
			if (a) {
				r = 1;
			} else {
				r = 2;
			}
			return r;
		}
	`)
	doms := g.ComputeDominators()
	var branch BlockID = -1
	for i := 0; i < g.Len(); i++ {
		if g.Get(BlockID(i)).Kind == BranchBlock {
			branch = BlockID(i)
		}
	}
	require.NotEqual(t, BlockID(-1), branch)
	for _, succ := range g.Get(branch).Successors {
		// Neither branch target dominates the other.
		for _, other := range g.Get(branch).Successors {
			if succ == other {
				continue
			}
			assert.False(t, IsDominator(doms, succ, other))
		}
	}
}
