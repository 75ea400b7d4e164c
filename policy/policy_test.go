package policy

import (
	"testing"

	"github.com/risor-io/sanitizer/ast"
	"github.com/stretchr/testify/require"
)

func TestDenyListMode(t *testing.T) {
	p := NewBuilder("deny").Identifiers("eval", "Function").Keywords("with").MustBuild()
	require.False(t, p.IsIdentifierAllowed("eval"))
	require.False(t, p.IsIdentifierAllowed("Function"))
	require.True(t, p.IsIdentifierAllowed("x"))
	require.False(t, p.IsKeywordAllowed("with"))
	require.True(t, p.IsKeywordAllowed("if"))
}

func TestAllowListMode(t *testing.T) {
	p := NewBuilder("allow").
		IdentifierMode(AllowList).Identifiers("a", "b").
		KeywordMode(AllowList).Keywords("return").
		MustBuild()
	require.True(t, p.IsIdentifierAllowed("a"))
	require.True(t, p.IsIdentifierAllowed("b"))
	require.False(t, p.IsIdentifierAllowed("c"))
	require.True(t, p.IsKeywordAllowed("return"))
	require.False(t, p.IsKeywordAllowed("if"))
	require.Equal(t, AllowList, p.IdentifierMode())
	require.Equal(t, AllowList, p.KeywordMode())
}

func TestEscapeLayersIgnoreMode(t *testing.T) {
	p := NewBuilder("layers").
		IdentifierMode(AllowList).Identifiers("__proto__", "eval").
		DisallowedProperties("__proto__").
		DisallowedCallees("eval").
		MustBuild()
	// The identifier allow list admits the names, the deny layers still
	// reject them.
	require.True(t, p.IsIdentifierAllowed("__proto__"))
	require.False(t, p.IsPropertyAllowed("__proto__"))
	require.True(t, p.IsIdentifierAllowed("eval"))
	require.False(t, p.IsCalleeAllowed("eval"))
	require.True(t, p.IsCalleeAllowed("print"))
}

func TestPropertyPatterns(t *testing.T) {
	p := NewBuilder("patterns").DisallowedPropertyPatterns("__*__", "_private*").MustBuild()
	require.False(t, p.IsPropertyAllowed("__defineGetter__"))
	require.False(t, p.IsPropertyAllowed("__lookupSetter__"))
	require.False(t, p.IsPropertyAllowed("_privateKey"))
	require.True(t, p.IsPropertyAllowed("__partial"))
	require.True(t, p.IsPropertyAllowed("length"))
	require.Equal(t, []string{"__*__", "_private*"}, p.DisallowedPropertyPatterns())
}

func TestTopLevelShapes(t *testing.T) {
	unrestricted := NewBuilder("any").MustBuild()
	for _, k := range ast.StatementKinds() {
		require.True(t, unrestricted.IsTopLevelShapeAllowed(k), k.String())
	}
	require.False(t, unrestricted.IsTopLevelShapeAllowed(ast.Identifier))
	require.Empty(t, unrestricted.TopLevelShapes())

	restricted := NewBuilder("restricted").
		AllowTopLevelShapes(ast.FunctionDeclaration, ast.VariableDeclaration).
		MustBuild()
	require.True(t, restricted.IsTopLevelShapeAllowed(ast.FunctionDeclaration))
	require.False(t, restricted.IsTopLevelShapeAllowed(ast.ExpressionStatement))
	require.Equal(t, []ast.Kind{ast.VariableDeclaration, ast.FunctionDeclaration}, restricted.TopLevelShapes())
}

func TestLimitDefaults(t *testing.T) {
	p := NewBuilder("limits").MustBuild()
	require.Equal(t, DefaultMaxDepth, p.MaxDepth())
	require.Equal(t, DefaultMaxNodeCount, p.MaxNodeCount())

	require.Equal(t, DefaultMaxSourceSize, p.MaxSourceSize())

	p = NewBuilder("limits").MaxDepth(10).MaxNodeCount(20).MaxSourceSize(30).MustBuild()
	require.Equal(t, 10, p.MaxDepth())
	require.Equal(t, 20, p.MaxNodeCount())
	require.Equal(t, 30, p.MaxSourceSize())
}

func TestReservedNameLayer(t *testing.T) {
	p := NewBuilder("reserved").
		BuiltInObjects("Object", "console").
		ReservedIdentifiers("host").
		ReservedIdentifierPatterns("$*", "__host?").
		MutableIdentifiers("console", "$state").
		ReservedFunctions("main").
		MustBuild()

	require.True(t, p.IsBuiltInObject("Object"))
	require.False(t, p.IsBuiltInObject("host"))
	for _, name := range []string{"host", "$state", "$", "__hostA"} {
		require.True(t, p.IsReservedIdentifier(name), name)
	}
	for _, name := range []string{"Object", "hostile", "__hostAB", "a$"} {
		require.False(t, p.IsReservedIdentifier(name), name)
	}
	require.True(t, p.IsMutableIdentifier("console"))
	require.False(t, p.IsMutableIdentifier("Object"))
	require.True(t, p.IsReservedFunction("main"))
	require.False(t, p.IsReservedFunction("Object"))

	require.Equal(t, []string{"Object", "console"}, p.BuiltInObjects())
	require.Equal(t, []string{"host"}, p.ReservedIdentifiers())
	require.Equal(t, []string{"$*", "__host?"}, p.ReservedIdentifierPatterns())
	require.Equal(t, []string{"$state", "console"}, p.MutableIdentifiers())
	require.Equal(t, []string{"main"}, p.ReservedFunctions())
}

func TestBuildErrors(t *testing.T) {
	_, err := NewBuilder("bad").
		MaxDepth(-1).
		MaxNodeCount(-2).
		MaxSourceSize(-3).
		DisallowedPropertyPatterns("[unclosed").
		ReservedIdentifierPatterns("{open").
		AllowTopLevelShapes(ast.Identifier).
		IdentifierMode(Mode(7)).
		Build()
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, `policy "bad"`)
	require.Contains(t, msg, "max depth")
	require.Contains(t, msg, "max node count")
	require.Contains(t, msg, "max source size")
	require.Contains(t, msg, "[unclosed")
	require.Contains(t, msg, `reserved identifier pattern "{open"`)
	require.Contains(t, msg, "Identifier is not a statement kind")
	require.Contains(t, msg, "invalid identifier mode")

	require.Panics(t, func() { NewBuilder("bad").MaxDepth(-1).MustBuild() })
}

func TestBuilderCopiesSets(t *testing.T) {
	names := []string{"eval"}
	b := NewBuilder("copy").Identifiers(names...)
	p := b.MustBuild()
	names[0] = "other"
	b.Identifiers("later")

	require.False(t, p.IsIdentifierAllowed("eval"))
	require.True(t, p.IsIdentifierAllowed("later"))
	require.Equal(t, []string{"eval"}, p.Identifiers())
}

func TestSortedGetters(t *testing.T) {
	p := NewBuilder("sorted").
		Version("3").
		Identifiers("b", "a").
		Keywords("with", "debugger").
		DisallowedProperties("z", "y").
		DisallowedCallees("setTimeout", "eval").
		AllowDynamicCallees(true).
		MustBuild()
	require.Equal(t, "sorted", p.Name())
	require.Equal(t, "3", p.Version())
	require.Equal(t, []string{"a", "b"}, p.Identifiers())
	require.Equal(t, []string{"debugger", "with"}, p.Keywords())
	require.Equal(t, []string{"y", "z"}, p.DisallowedProperties())
	require.Equal(t, []string{"eval", "setTimeout"}, p.DisallowedCallees())
	require.True(t, p.AllowsDynamicCallees())
}

func TestPresets(t *testing.T) {
	def := Default()
	require.Equal(t, "default", def.Name())
	for _, name := range []string{"eval", "Function", "Reflect", "Proxy", "globalThis", "require"} {
		require.False(t, def.IsIdentifierAllowed(name), name)
	}
	for _, word := range []string{"async", "await", "debugger", "export", "import", "var", "with", "yield"} {
		require.False(t, def.IsKeywordAllowed(word), word)
	}
	require.True(t, def.IsKeywordAllowed("let"))
	require.False(t, def.IsPropertyAllowed("__proto__"))
	require.False(t, def.IsPropertyAllowed("__defineSetter__"))
	require.False(t, def.IsPropertyAllowed("constructor"))
	require.False(t, def.IsCalleeAllowed("setTimeout"))
	require.False(t, def.AllowsDynamicCallees())
	for _, name := range []string{"Object", "console", "JSON", "undefined", "process", "require"} {
		require.True(t, def.IsBuiltInObject(name), name)
	}
	require.True(t, def.IsReservedFunction("main"))
	require.Empty(t, def.ReservedIdentifiers())
	require.Empty(t, def.MutableIdentifiers())
	// import() is a keyword form, refused by the keyword layer.
	require.True(t, def.IsCalleeAllowed("import"))

	perm := Permissive()
	require.True(t, perm.IsIdentifierAllowed("eval"))
	require.True(t, perm.IsKeywordAllowed("with"))
	require.False(t, perm.IsPropertyAllowed("prototype"))
	require.False(t, perm.IsCalleeAllowed("eval"))
	require.False(t, perm.AllowsDynamicCallees())
	require.Empty(t, perm.BuiltInObjects())
	require.Empty(t, perm.ReservedFunctions())

	// Presets are shared values.
	require.Same(t, def, Default())
}

func TestModeParsing(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{"allow", AllowList},
		{"AllowList", AllowList},
		{"allow-list", AllowList},
		{"deny", DenyList},
		{"deny_list", DenyList},
		{"", DenyList},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		require.NoError(t, err, tt.input)
		require.Equal(t, tt.want, got, tt.input)
	}
	_, err := ParseMode("maybe")
	require.Error(t, err)

	require.Equal(t, "allow", AllowList.String())
	require.Equal(t, "deny", DenyList.String())
	require.Equal(t, "Mode(9)", Mode(9).String())

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("allow")))
	require.Equal(t, AllowList, m)
	text, err := m.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "allow", string(text))
	require.Error(t, m.UnmarshalText([]byte("sometimes")))
}
