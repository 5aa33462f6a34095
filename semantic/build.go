package semantic

import (
	sitter "github.com/smacker/go-tree-sitter"

	"kaizen/parser"
)

// Model is the semantic model for one ParsedFile: its scope tree and symbol
// table, built together in a single walk.
type Model struct {
	Scopes  *ScopeTree
	Symbols *SymbolTable
}

// Build walks pf's AST once, opening a new scope on every scope-creating
// node kind, hoisting var/function declarations to their nearest
// function-or-global scope, and resolving every identifier use against the
// live scope chain.
func Build(pf *parser.ParsedFile) *Model {
	tree := NewScopeTree()
	table := NewSymbolTable()
	if pf.Root == nil {
		return &Model{Scopes: tree, Symbols: table}
	}
	root := tree.CreateScope(Global, NoScope, parser.NodeSpan(pf.Root))
	b := &builder{tree: tree, table: table, source: pf.Source}
	b.collectHoisted(pf.Root, root)
	b.build(pf.Root, root)
	return &Model{Scopes: tree, Symbols: table}
}

type builder struct {
	tree   *ScopeTree
	table  *SymbolTable
	source []byte
}

func (b *builder) text(n *sitter.Node) string {
	return string(b.source[n.StartByte():n.EndByte()])
}

func (b *builder) span(n *sitter.Node) parser.Span {
	return parser.NodeSpan(n)
}

func isExported(n *sitter.Node) bool {
	p := n.Parent()
	return p != nil && p.Type() == "export_statement"
}

func declKindOf(n *sitter.Node) DeclKind {
	if n.ChildCount() == 0 {
		return Var
	}
	switch n.Child(0).Type() {
	case "let":
		return Let
	case "const":
		return Const
	default:
		return Var
	}
}

// hoistedScopeFor returns the nearest Function/ArrowFunction/Global/Module
// ancestor scope of scope, the destination for a hoisted var/function.
func (b *builder) hoistedScopeFor(scope ScopeID) ScopeID {
	for _, s := range b.tree.Ancestors(scope) {
		switch s.Kind {
		case Function, ArrowFunction, Global, Module:
			return s.ID
		}
	}
	return scope
}

// collectHoisted pre-registers every var and function declaration reachable
// from n without crossing into a nested function/arrow/class scope, so
// forward references within the same function resolve correctly.
func (b *builder) collectHoisted(n *sitter.Node, scope ScopeID) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_declaration", "generator_function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			b.table.Declare(scope, b.text(name), FunctionDecl, b.span(name), isExported(n))
		}
		return
	case "function", "function_expression", "arrow_function", "method_definition", "class_declaration", "class":
		return
	case "variable_declaration":
		if declKindOf(n) == Var {
			exported := isExported(n)
			count := int(n.NamedChildCount())
			for i := 0; i < count; i++ {
				decl := n.NamedChild(i)
				if decl.Type() != "variable_declarator" {
					continue
				}
				if name := decl.ChildByFieldName("name"); name != nil {
					b.declarePattern(name, Var, scope, exported)
				}
			}
		}
		return
	default:
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			b.collectHoisted(n.Child(i), scope)
		}
	}
}

// declarePattern declares every identifier bound by a (possibly
// destructuring) binding pattern.
func (b *builder) declarePattern(n *sitter.Node, kind DeclKind, scope ScopeID, exported bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		declScope := scope
		if kind == Var {
			declScope = b.hoistedScopeFor(scope)
		}
		b.table.Declare(declScope, b.text(n), kind, b.span(n), exported)
	case "object_pattern":
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "pair_pattern":
				if v := child.ChildByFieldName("value"); v != nil {
					b.declarePattern(v, kind, scope, exported)
				}
			case "shorthand_property_identifier_pattern":
				b.declarePattern(child, kind, scope, exported) // falls to identifier-like handling below
			case "rest_pattern":
				b.declarePattern(child.NamedChild(0), kind, scope, exported)
			}
		}
	case "shorthand_property_identifier_pattern":
		declScope := scope
		if kind == Var {
			declScope = b.hoistedScopeFor(scope)
		}
		b.table.Declare(declScope, b.text(n), kind, b.span(n), exported)
	case "array_pattern":
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			b.declarePattern(n.NamedChild(i), kind, scope, exported)
		}
	case "rest_pattern":
		if n.NamedChildCount() > 0 {
			b.declarePattern(n.NamedChild(0), kind, scope, exported)
		}
	case "assignment_pattern":
		if left := n.ChildByFieldName("left"); left != nil {
			b.declarePattern(left, kind, scope, exported)
		}
	}
}

// declareParameters declares every binding introduced by a function's
// parameter list as a Parameter symbol in fnScope.
func (b *builder) declareParameters(params *sitter.Node, fnScope ScopeID) {
	if params == nil {
		return
	}
	if params.Type() == "identifier" {
		b.table.Declare(fnScope, b.text(params), Parameter, b.span(params), false)
		return
	}
	count := int(params.NamedChildCount())
	for i := 0; i < count; i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "identifier":
			b.table.Declare(fnScope, b.text(p), Parameter, b.span(p), false)
		case "rest_pattern":
			if p.NamedChildCount() > 0 {
				b.declarePattern(p.NamedChild(0), Parameter, fnScope, false)
			}
		case "assignment_pattern":
			if left := p.ChildByFieldName("left"); left != nil {
				b.declarePattern(left, Parameter, fnScope, false)
			}
		default:
			b.declarePattern(p, Parameter, fnScope, false)
		}
	}
}

func (b *builder) children(n *sitter.Node, scope ScopeID) {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		b.build(n.Child(i), scope)
	}
}

func (b *builder) build(n *sitter.Node, scope ScopeID) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_declaration", "generator_function_declaration", "function", "function_expression", "method_definition":
		newScope := b.tree.CreateScope(Function, scope, b.span(n))
		if n.Type() != "function_declaration" && n.Type() != "generator_function_declaration" && n.Type() != "method_definition" {
			if name := n.ChildByFieldName("name"); name != nil {
				b.table.Declare(newScope, b.text(name), FunctionDecl, b.span(name), false)
			}
		}
		b.declareParameters(n.ChildByFieldName("parameters"), newScope)
		body := n.ChildByFieldName("body")
		b.collectHoisted(body, newScope)
		b.build(body, newScope)
		return

	case "arrow_function":
		newScope := b.tree.CreateScope(ArrowFunction, scope, b.span(n))
		b.declareParameters(n.ChildByFieldName("parameters"), newScope)
		body := n.ChildByFieldName("body")
		b.collectHoisted(body, newScope)
		b.build(body, newScope)
		return

	case "class_declaration", "class":
		if name := n.ChildByFieldName("name"); name != nil {
			b.table.Declare(scope, b.text(name), ClassDecl, b.span(name), isExported(n))
		}
		newScope := b.tree.CreateScope(Class, scope, b.span(n))
		b.children(n.ChildByFieldName("body"), newScope)
		return

	case "statement_block":
		newScope := b.tree.CreateScope(Block, scope, b.span(n))
		b.children(n, newScope)
		return

	case "for_statement", "for_in_statement", "for_of_statement":
		newScope := b.tree.CreateScope(For, scope, b.span(n))
		b.children(n, newScope)
		return

	case "while_statement", "do_statement":
		newScope := b.tree.CreateScope(While, scope, b.span(n))
		b.children(n, newScope)
		return

	case "switch_statement":
		newScope := b.tree.CreateScope(Switch, scope, b.span(n))
		b.children(n, newScope)
		return

	case "try_statement":
		newScope := b.tree.CreateScope(Try, scope, b.span(n))
		b.children(n, newScope)
		return

	case "catch_clause":
		newScope := b.tree.CreateScope(Catch, scope, b.span(n))
		if param := n.ChildByFieldName("parameter"); param != nil {
			b.declarePattern(param, Parameter, newScope, false)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			b.build(body, newScope)
		}
		return

	case "variable_declaration", "lexical_declaration":
		kind := declKindOf(n)
		exported := isExported(n)
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			decl := n.NamedChild(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			if name := decl.ChildByFieldName("name"); name != nil {
				b.declarePattern(name, kind, scope, exported)
			}
			if value := decl.ChildByFieldName("value"); value != nil {
				b.build(value, scope)
			}
		}
		return

	case "assignment_expression", "augmented_assignment_expression":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left != nil && left.Type() == "identifier" {
			if sym, ok := b.table.Lookup(b.tree, scope, b.text(left)); ok {
				sym.AddReference(b.span(left), true)
			}
		} else {
			b.build(left, scope)
		}
		b.build(right, scope)
		return

	case "update_expression":
		arg := n.ChildByFieldName("argument")
		if arg != nil && arg.Type() == "identifier" {
			if sym, ok := b.table.Lookup(b.tree, scope, b.text(arg)); ok {
				sym.AddReference(b.span(arg), true)
			}
		} else {
			b.build(arg, scope)
		}
		return

	case "identifier":
		if sym, ok := b.table.Lookup(b.tree, scope, b.text(n)); ok {
			sym.AddReference(b.span(n), false)
		}
		return

	case "import_statement":
		b.buildImport(n, scope)
		return

	default:
		b.children(n, scope)
		return
	}
}

func (b *builder) buildImport(n *sitter.Node, scope ScopeID) {
	clause := n.ChildByFieldName("clause") // some grammar versions name it "import_clause" as a direct child instead
	if clause == nil {
		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			c := n.NamedChild(i)
			if c.Type() == "import_clause" {
				clause = c
				break
			}
		}
	}
	if clause == nil {
		return
	}
	count := int(clause.NamedChildCount())
	for i := 0; i < count; i++ {
		c := clause.NamedChild(i)
		switch c.Type() {
		case "identifier":
			b.table.Declare(scope, b.text(c), Import, b.span(c), false)
		case "namespace_import":
			if id := c.NamedChild(0); id != nil {
				b.table.Declare(scope, b.text(id), Import, b.span(id), false)
			}
		case "named_imports":
			specCount := int(c.NamedChildCount())
			for j := 0; j < specCount; j++ {
				spec := c.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				name := spec.ChildByFieldName("name")
				alias := spec.ChildByFieldName("alias")
				target := name
				if alias != nil {
					target = alias
				}
				if target != nil {
					b.table.Declare(scope, b.text(target), Import, b.span(target), false)
				}
			}
		}
	}
	if clause.Type() == "identifier" {
		// direct default-import clause shape seen in some grammar revisions
		b.table.Declare(scope, b.text(clause), Import, b.span(clause), false)
	}
}
