package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaizen/parser"
)

func buildModel(t *testing.T, source string) (*parser.ParsedFile, *Model) {
	t.Helper()
	pf, err := parser.Parse("a.js", []byte(source))
	require.NoError(t, err)
	t.Cleanup(pf.Close)
	return pf, Build(pf)
}

func findSymbol(m *Model, name string) (*Symbol, bool) {
	for _, s := range m.Symbols.All() {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

func TestBuildGlobalScopeIsRoot(t *testing.T) {
	_, m := buildModel(t, "const x = 1;")
	root := m.Scopes.Root()
	assert.Equal(t, Global, m.Scopes.Get(root).Kind)
}

func TestBuildFunctionCreatesNestedScope(t *testing.T) {
	_, m := buildModel(t, "function f() { let y = 1; }")
	f, ok := findSymbol(m, "f")
	require.True(t, ok)
	assert.Equal(t, FunctionDecl, f.Kind)

	y, ok := findSymbol(m, "y")
	require.True(t, ok)
	assert.Equal(t, Let, y.Kind)
	assert.NotEqual(t, m.Scopes.Root(), y.DeclaringScope)
	assert.True(t, m.Scopes.IsDescendantOf(y.DeclaringScope, m.Scopes.Root()))
}

func TestBuildHoistsVarToFunctionScope(t *testing.T) {
	_, m := buildModel(t, `
		function f() {
			if (true) {
				var hoisted = 1;
			}
			return hoisted;
		}
	`)
	sym, ok := findSymbol(m, "hoisted")
	require.True(t, ok)

	fn, ok := findSymbol(m, "f")
	require.True(t, ok)
	// The var's declaring scope must be the function's own scope, not the
	// nested if-block, and the declaring scope must be a function scope.
	declScope := m.Scopes.Get(sym.DeclaringScope)
	assert.Equal(t, Function, declScope.Kind)
	assert.NotEqual(t, fn.DeclaringScope, sym.DeclaringScope)

	// The return statement's reference to hoisted must resolve (non-zero refs).
	assert.NotEmpty(t, sym.References)
}

func TestBuildLetIsBlockScopedNotHoisted(t *testing.T) {
	_, m := buildModel(t, `
		function f() {
			if (true) {
				let blockScoped = 1;
			}
		}
	`)
	sym, ok := findSymbol(m, "blockScoped")
	require.True(t, ok)
	declScope := m.Scopes.Get(sym.DeclaringScope)
	assert.Equal(t, Block, declScope.Kind)
}

func TestBuildClosureResolvesOuterCount(t *testing.T) {
	// Matches the closure end-to-end scenario: the inner function's two
	// references to `count` must resolve against the outer declaration.
	_, m := buildModel(t, `
		function createCounter() {
			let count = 0;
			return function() {
				count++;
				return count;
			};
		}
		createCounter();
	`)
	count, ok := findSymbol(m, "count")
	require.True(t, ok)
	assert.Equal(t, Let, count.Kind)
	// One write (count++) and one read (return count).
	require.Len(t, count.References, 2)
	assert.True(t, count.WriteOnly[0])
	assert.False(t, count.WriteOnly[1])
	assert.False(t, count.IsEffectivelyUnused())
}

func TestBuildUnusedVariableHasNoReferences(t *testing.T) {
	_, m := buildModel(t, "function f() { let unused = 1; return 2; }")
	sym, ok := findSymbol(m, "unused")
	require.True(t, ok)
	assert.True(t, sym.IsEffectivelyUnused())
}

func TestBuildWriteOnlyVariableIsEffectivelyUnused(t *testing.T) {
	_, m := buildModel(t, "function f() { let x = 1; x = 2; x = 3; }")
	sym, ok := findSymbol(m, "x")
	require.True(t, ok)
	assert.True(t, sym.IsEffectivelyUnused())
}

func TestBuildParameterDeclaredInFunctionScope(t *testing.T) {
	_, m := buildModel(t, "function f(a, b) { return a + b; }")
	a, ok := findSymbol(m, "a")
	require.True(t, ok)
	assert.Equal(t, Parameter, a.Kind)
	assert.Len(t, a.References, 1)
}

func TestBuildDestructuringParameterDeclaresEachName(t *testing.T) {
	_, m := buildModel(t, "function f({ a, b }) { return a + b; }")
	_, ok := findSymbol(m, "a")
	assert.True(t, ok)
	_, ok = findSymbol(m, "b")
	assert.True(t, ok)
}

func TestBuildNamedImportDeclaresBinding(t *testing.T) {
	_, m := buildModel(t, `import { readFile } from "fs"; readFile();`)
	sym, ok := findSymbol(m, "readFile")
	require.True(t, ok)
	assert.Equal(t, Import, sym.Kind)
	assert.NotEmpty(t, sym.References)
}

func TestBuildCatchParameterScopedToCatchClause(t *testing.T) {
	_, m := buildModel(t, `
		try {
			risky();
		} catch (err) {
			log(err);
		}
	`)
	sym, ok := findSymbol(m, "err")
	require.True(t, ok)
	declScope := m.Scopes.Get(sym.DeclaringScope)
	assert.Equal(t, Catch, declScope.Kind)
}

func TestBuildEmptyFileProducesOnlyGlobalScope(t *testing.T) {
	_, m := buildModel(t, "")
	assert.Equal(t, 1, m.Scopes.Len())
	assert.Empty(t, m.Symbols.All())
}
