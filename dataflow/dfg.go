// Package dataflow builds a per-file data-flow graph over a ParsedFile and
// its semantic model, then propagates taint through it to find
// source-to-sink flows. The builder walks the AST once in program order,
// allocating DFG nodes for expression results, variable definitions and
// uses, call returns, concatenations, template literals, and property
// loads; edges record "value of X depends on value of Y".
package dataflow

import (
	sitter "github.com/smacker/go-tree-sitter"

	"kaizen/parser"
	"kaizen/registry"
	"kaizen/semantic"
)

// NodeKind is the kind of value-flow a DfgNode represents.
type NodeKind int

const (
	SourceExprNode NodeKind = iota
	VarDefNode
	VarUseNode
	CallNode
	ConcatNode
	TemplateNode
	PropertyLoadNode
	ReturnOfFunctionNode
	SanitizedNode
)

// NodeID is a dense integer handle into a Graph's arena.
type NodeID int

// Node is one DFG node.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Span     parser.Span
	Inbound  []NodeID
	CallText string

	// SourceCategory is set when this node is itself a taint source
	// (user-input, environment, filesystem, network).
	SourceCategory registry.SourceCategory
	IsSource       bool

	// SinkCategory is set when this node represents a value flowing into a
	// dangerous sink call/assignment.
	SinkCategory registry.SinkCategory
	IsSink       bool

	// ClearsCategory is set when this node is a sanitizer call: its output
	// has the named category's taint removed.
	ClearsCategory registry.SinkCategory
	IsSanitizer    bool
}

// Graph is the arena of DFG nodes for one file.
type Graph struct {
	nodes []*Node
}

func (g *Graph) add(n *Node) NodeID {
	n.ID = NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return n.ID
}

// Get returns the node for id.
func (g *Graph) Get(id NodeID) *Node { return g.nodes[id] }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Build walks pf's AST once and constructs its data-flow graph, resolving
// variable definitions and uses against model's symbol table and
// classifying source/sink/sanitizer call shapes using the supplied
// registries.
func Build(pf *parser.ParsedFile, model *semantic.Model, sources *registry.SourceRegistry, sinks *registry.SinkRegistry, sanitizers *registry.SanitizerRegistry) *Graph {
	g := &Graph{}
	if pf.Root == nil {
		return g
	}
	b := &builder{
		graph:      g,
		model:      model,
		source:     pf.Source,
		sources:    sources,
		sinks:      sinks,
		sanitizers: sanitizers,
		reaching:   make(map[semantic.SymbolID]NodeID),
	}
	b.walk(pf.Root, model.Scopes.Root())
	return g
}

type builder struct {
	graph      *Graph
	model      *semantic.Model
	source     []byte
	sources    *registry.SourceRegistry
	sinks      *registry.SinkRegistry
	sanitizers *registry.SanitizerRegistry

	// reaching is the most recent VarDef node id seen in program order for
	// each symbol. This approximates dominance with textual order, which is
	// sufficient for the straight-line and lightly-branching intra-procedural
	// flows this analysis targets; it is not a full dominator-tree lookup.
	reaching map[semantic.SymbolID]NodeID
}

func (b *builder) text(n *sitter.Node) string {
	return string(b.source[n.StartByte():n.EndByte()])
}

func (b *builder) span(n *sitter.Node) parser.Span {
	return parser.NodeSpan(n)
}

// scopeCursor mirrors the scope-opening decisions made by semantic.Build: the
// DFG walk visits nodes in the same pre-order as the scope/symbol builder,
// so scope-opening node kinds are encountered in exactly the same sequence
// the scopes were allocated in. This lets the DFG walker track "which scope
// am I in" without rebuilding the scope tree, by following the same child
// arena in the same order it was created.
type scopeCursor struct {
	tree *semantic.ScopeTree
	next semantic.ScopeID
}

func (b *builder) walk(root *sitter.Node, rootScope semantic.ScopeID) {
	cur := scopeCursor{tree: b.model.Scopes, next: rootScope + 1}
	b.walkNode(root, rootScope, &cur)
}

func (b *builder) openScope(cur *scopeCursor) semantic.ScopeID {
	id := cur.next
	cur.next++
	return id
}

func (b *builder) walkNode(n *sitter.Node, scope semantic.ScopeID, cur *scopeCursor) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_declaration", "generator_function_declaration", "function", "function_expression", "method_definition", "arrow_function":
		newScope := b.openScope(cur)
		saved := b.reaching
		b.reaching = make(map[semantic.SymbolID]NodeID)
		b.walkNode(n.ChildByFieldName("body"), newScope, cur)
		b.reaching = saved
		return

	case "class_declaration", "class":
		newScope := b.openScope(cur)
		b.children(n.ChildByFieldName("body"), newScope, cur)
		return

	case "statement_block", "for_statement", "for_in_statement", "for_of_statement",
		"while_statement", "do_statement", "switch_statement", "try_statement":
		newScope := b.openScope(cur)
		b.children(n, newScope, cur)
		return

	case "catch_clause":
		newScope := b.openScope(cur)
		if body := n.ChildByFieldName("body"); body != nil {
			b.walkNode(body, newScope, cur)
		}
		return

	case "variable_declaration", "lexical_declaration":
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			decl := n.NamedChild(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			name := decl.ChildByFieldName("name")
			value := decl.ChildByFieldName("value")
			var valueID NodeID
			hasValue := false
			if value != nil {
				valueID = b.expr(value, scope, cur)
				hasValue = true
			}
			if name != nil && name.Type() == "identifier" {
				b.def(name, scope, valueID, hasValue)
			}
		}
		return

	case "assignment_expression":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		rhsID := b.expr(right, scope, cur)
		switch {
		case left != nil && left.Type() == "identifier":
			b.def(left, scope, rhsID, true)
		case left != nil && left.Type() == "member_expression":
			b.assignMember(left, rhsID, scope, cur)
		case left != nil:
			b.walkNode(left, scope, cur)
		}
		return

	case "expression_statement":
		b.expr(n.NamedChild(0), scope, cur)
		return

	case "return_statement":
		if v := n.NamedChild(0); v != nil {
			id := b.expr(v, scope, cur)
			b.graph.add(&Node{Kind: ReturnOfFunctionNode, Span: b.span(n), Inbound: inboundOf(id)})
		}
		return

	default:
		b.children(n, scope, cur)
	}
}

func inboundOf(id NodeID) []NodeID {
	if id < 0 {
		return nil
	}
	return []NodeID{id}
}

func (b *builder) children(n *sitter.Node, scope semantic.ScopeID, cur *scopeCursor) {
	if n == nil {
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		b.walkNode(n.Child(i), scope, cur)
	}
}

// def records a VarDef node for name, wiring it from the given value node
// (if any), and updates the reaching-definition map.
func (b *builder) def(name *sitter.Node, scope semantic.ScopeID, valueID NodeID, hasValue bool) {
	sym, ok := b.model.Symbols.Lookup(b.model.Scopes, scope, b.text(name))
	var inbound []NodeID
	if hasValue {
		inbound = inboundOf(valueID)
	}
	id := b.graph.add(&Node{Kind: VarDefNode, Span: b.span(name), Inbound: inbound})
	if ok {
		b.reaching[sym.ID] = id
	}
}

// expr builds DFG nodes for an expression, returning the id of the node
// representing its result (or -1 if the expression contributes no
// taint-relevant value).
func (b *builder) expr(n *sitter.Node, scope semantic.ScopeID, cur *scopeCursor) NodeID {
	if n == nil {
		return -1
	}
	switch n.Type() {
	case "identifier":
		sym, ok := b.model.Symbols.Lookup(b.model.Scopes, scope, b.text(n))
		if !ok {
			return -1
		}
		def, hasDef := b.reaching[sym.ID]
		var inbound []NodeID
		if hasDef {
			inbound = []NodeID{def}
		}
		return b.graph.add(&Node{Kind: VarUseNode, Span: b.span(n), Inbound: inbound})

	case "member_expression":
		obj := n.ChildByFieldName("object")
		prop := n.ChildByFieldName("property")
		if obj != nil && prop != nil && obj.Type() == "identifier" {
			if cat, ok := b.sources.MatchProperty(b.text(obj), b.text(prop)); ok {
				return b.graph.add(&Node{Kind: SourceExprNode, Span: b.span(n), IsSource: true, SourceCategory: cat})
			}
		}
		exprText := b.text(n)
		if cat, ok := b.sources.MatchExpression(exprText); ok {
			return b.graph.add(&Node{Kind: SourceExprNode, Span: b.span(n), IsSource: true, SourceCategory: cat})
		}
		objID := b.expr(obj, scope, cur)
		return b.graph.add(&Node{Kind: PropertyLoadNode, Span: b.span(n), Inbound: inboundOf(objID)})

	case "call_expression":
		return b.call(n, scope, cur)

	case "binary_expression":
		leftNode := n.ChildByFieldName("left")
		rightNode := n.ChildByFieldName("right")
		if leftNode != nil && rightNode != nil {
			if _, op, ok := parser.OperatorBetween(b.source, leftNode, rightNode); ok && op == "+" {
				left := b.expr(leftNode, scope, cur)
				right := b.expr(rightNode, scope, cur)
				return b.graph.add(&Node{Kind: ConcatNode, Span: b.span(n), Inbound: append(inboundOf(left), inboundOf(right)...)})
			}
		}
		b.expr(leftNode, scope, cur)
		b.expr(rightNode, scope, cur)
		return -1

	case "template_string":
		var inbound []NodeID
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			child := n.NamedChild(i)
			if child.Type() == "template_substitution" {
				if sub := child.NamedChild(0); sub != nil {
					if id := b.expr(sub, scope, cur); id >= 0 {
						inbound = append(inbound, id)
					}
				}
			}
		}
		return b.graph.add(&Node{Kind: TemplateNode, Span: b.span(n), Inbound: inbound})

	case "assignment_expression":
		b.walkNode(n, scope, cur)
		return -1

	case "arrow_function", "function", "function_expression":
		b.walkNode(n, scope, cur)
		return -1

	case "parenthesized_expression":
		return b.expr(n.NamedChild(0), scope, cur)

	default:
		count := int(n.NamedChildCount())
		var last NodeID = -1
		for i := 0; i < count; i++ {
			last = b.expr(n.NamedChild(i), scope, cur)
		}
		return last
	}
}

// assignMember classifies an `object.property = value` assignment target
// against the sink registry's assignment patterns (e.g. `element.innerHTML`,
// `obj.__proto__`), wiring a sink node from the assigned value when it
// matches. Unmatched targets are walked generically so any source/sink
// expressions nested in the object (e.g. a computed member chain) are still
// captured.
func (b *builder) assignMember(left *sitter.Node, rhsID NodeID, scope semantic.ScopeID, cur *scopeCursor) {
	obj := left.ChildByFieldName("object")
	prop := left.ChildByFieldName("property")
	var objText, propText string
	if obj != nil {
		objText = b.text(obj)
	}
	if prop != nil {
		propText = b.text(prop)
	}
	if cat, ok := b.sinks.MatchAssignment(objText, propText); ok {
		b.graph.add(&Node{
			Kind:         CallNode,
			Span:         b.span(left),
			Inbound:      inboundOf(rhsID),
			CallText:     b.text(left),
			IsSink:       true,
			SinkCategory: cat,
		})
		return
	}
	b.walkNode(left, scope, cur)
}

// call builds a Call node for a call expression, classifying it as a sink
// consumption point, a sanitizer, or a plain call, and recursing into its
// arguments so nested source/sink expressions are still captured.
func (b *builder) call(n *sitter.Node, scope semantic.ScopeID, cur *scopeCursor) NodeID {
	callee := n.ChildByFieldName("function")
	calleeText := ""
	if callee != nil {
		calleeText = b.text(callee)
	}

	args := n.ChildByFieldName("arguments")
	var argIDs []NodeID
	if args != nil {
		count := int(args.NamedChildCount())
		for i := 0; i < count; i++ {
			if id := b.expr(args.NamedChild(i), scope, cur); id >= 0 {
				argIDs = append(argIDs, id)
			}
		}
	}

	node := &Node{Kind: CallNode, Span: b.span(n), Inbound: argIDs, CallText: calleeText}

	if cat, ok := b.sanitizers.MatchCall(calleeText); ok {
		node.Kind = SanitizedNode
		node.IsSanitizer = true
		node.ClearsCategory = cat
	} else if cat, ok := b.sources.MatchExpression(calleeText); ok {
		node.IsSource = true
		node.SourceCategory = cat
	} else if cat, ok := b.sinks.MatchCall(calleeText); ok {
		node.IsSink = true
		node.SinkCategory = cat
	}

	return b.graph.add(node)
}
