package parser

import (
	"reflect"
	"unicode"

	js "github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	jstoken "github.com/dop251/goja/token"
	"github.com/risor-io/sanitizer/ast"
	"github.com/risor-io/sanitizer/token"
)

// converter translates a goja syntax tree into ast.Nodes. Reserved words that
// introduce or modify a construct become Keyword children, placed in source
// order among the construct's other children.
type converter struct {
	file  *token.File
	src   string
	shift int
}

func (c *converter) program(p *js.Program) *ast.Node {
	return c.make(ast.Program, c.file.Span(0, c.file.Size()), c.statements(p.Body)...)
}

func (c *converter) offset(idx file.Idx) int {
	return int(idx) - 1 - c.shift
}

func (c *converter) spanOf(n js.Node) token.Span {
	return c.file.Span(c.offset(n.Idx0()), c.offset(n.Idx1()))
}

func (c *converter) make(kind ast.Kind, span token.Span, children ...*ast.Node) *ast.Node {
	n := &ast.Node{Kind: kind, Span: span}
	for _, child := range children {
		if child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

// keyword returns a Keyword node for word located at idx. When idx does not
// point at word, the keyword is attributed to the fallback span.
func (c *converter) keyword(word string, idx file.Idx, fallback token.Span) *ast.Node {
	if idx > 0 {
		if start := c.offset(idx); c.wordAt(word, start) {
			return &ast.Node{Kind: ast.Keyword, Name: word, Span: c.file.Span(start, start+len(word))}
		}
	}
	return &ast.Node{Kind: ast.Keyword, Name: word, Span: fallback}
}

// keywordIn returns a Keyword node for the first occurrence of word in the
// byte range [lo, hi).
func (c *converter) keywordIn(word string, lo, hi int, fallback token.Span) *ast.Node {
	if lo < 0 {
		lo = 0
	}
	if hi > len(c.src) {
		hi = len(c.src)
	}
	for i := lo; i+len(word) <= hi; i++ {
		if c.wordAt(word, i) {
			return &ast.Node{Kind: ast.Keyword, Name: word, Span: c.file.Span(i, i+len(word))}
		}
	}
	return &ast.Node{Kind: ast.Keyword, Name: word, Span: fallback}
}

func (c *converter) wordAt(word string, i int) bool {
	if i < 0 || i+len(word) > len(c.src) || c.src[i:i+len(word)] != word {
		return false
	}
	if i > 0 && isIdentByte(c.src[i-1]) {
		return false
	}
	end := i + len(word)
	return end == len(c.src) || !isIdentByte(c.src[end])
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b >= 0x80 ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// operator returns a Keyword node for word operators such as typeof or
// instanceof and nil for punctuation.
func (c *converter) operator(tok jstoken.Token, idx file.Idx, lo, hi int, fallback token.Span) *ast.Node {
	word := tok.String()
	if word == "" || !unicode.IsLetter(rune(word[0])) {
		return nil
	}
	if idx > 0 {
		return c.keyword(word, idx, fallback)
	}
	return c.keywordIn(word, lo, hi, fallback)
}

func (c *converter) statements(list []js.Statement) []*ast.Node {
	nodes := make([]*ast.Node, 0, len(list))
	for _, s := range list {
		if n := c.node(s); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (c *converter) expressions(list []js.Expression) []*ast.Node {
	nodes := make([]*ast.Node, 0, len(list))
	for _, e := range list {
		if n := c.node(e); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func isNil(n js.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// node converts a single goja node. Unrecognized node types become Bad nodes
// so that the validator can refuse constructs it does not understand.
func (c *converter) node(n js.Node) *ast.Node {
	if isNil(n) {
		return nil
	}
	span := c.spanOf(n)

	switch n := n.(type) {
	// Statements
	case *js.BadStatement:
		return c.make(ast.Bad, span)
	case *js.BlockStatement:
		return c.make(ast.Block, span, c.statements(n.List)...)
	case *js.BranchStatement:
		kind := ast.Break
		if n.Token == jstoken.CONTINUE {
			kind = ast.Continue
		}
		return c.make(kind, span, c.keyword(n.Token.String(), n.Idx, span))
	case *js.CaseStatement:
		word := "case"
		if n.Test == nil {
			word = "default"
		}
		children := []*ast.Node{c.keyword(word, n.Case, span), c.node(n.Test)}
		return c.make(ast.Case, span, append(children, c.statements(n.Consequent)...)...)
	case *js.CatchStatement:
		return c.make(ast.Catch, span,
			c.keyword("catch", n.Catch, span), c.node(n.Parameter), c.node(n.Body))
	case *js.DebuggerStatement:
		return c.make(ast.Debugger, span, c.keyword("debugger", n.Debugger, span))
	case *js.DoWhileStatement:
		body := c.node(n.Body)
		test := c.node(n.Test)
		return c.make(ast.DoWhile, span,
			c.keyword("do", n.Do, span), body,
			c.keywordIn("while", endOf(body, span), startOf(test, span.End.Char), span), test)
	case *js.EmptyStatement:
		return c.make(ast.Empty, span)
	case *js.ExpressionStatement:
		return c.make(ast.ExpressionStatement, span, c.node(n.Expression))
	case *js.ForInStatement:
		into := c.forInto(n.Into, span)
		source := c.node(n.Source)
		return c.make(ast.ForIn, span,
			c.keyword("for", n.For, span), into,
			c.keywordIn("in", endOf(into, span), startOf(source, span.End.Char), span),
			source, c.node(n.Body))
	case *js.ForOfStatement:
		return c.make(ast.ForOf, span,
			c.keyword("for", n.For, span), c.forInto(n.Into, span), c.node(n.Source), c.node(n.Body))
	case *js.ForStatement:
		return c.make(ast.For, span,
			c.keyword("for", n.For, span), c.forInit(n.Initializer, span),
			c.node(n.Test), c.node(n.Update), c.node(n.Body))
	case *js.IfStatement:
		consequent := c.node(n.Consequent)
		children := []*ast.Node{c.keyword("if", n.If, span), c.node(n.Test), consequent}
		if alternate := c.node(n.Alternate); alternate != nil {
			children = append(children,
				c.keywordIn("else", endOf(consequent, span), alternate.Span.Offset(), span), alternate)
		}
		return c.make(ast.If, span, children...)
	case *js.LabelledStatement:
		return c.make(ast.Labelled, span, c.node(n.Statement))
	case *js.ReturnStatement:
		return c.make(ast.Return, span, c.keyword("return", n.Return, span), c.node(n.Argument))
	case *js.SwitchStatement:
		children := []*ast.Node{c.keyword("switch", n.Switch, span), c.node(n.Discriminant)}
		for _, cs := range n.Body {
			children = append(children, c.node(cs))
		}
		return c.make(ast.Switch, span, children...)
	case *js.ThrowStatement:
		return c.make(ast.Throw, span, c.keyword("throw", n.Throw, span), c.node(n.Argument))
	case *js.TryStatement:
		body := c.node(n.Body)
		children := []*ast.Node{c.keyword("try", n.Try, span), body}
		last := body
		if catch := c.node(n.Catch); catch != nil {
			children = append(children, catch)
			last = catch
		}
		if finally := c.node(n.Finally); finally != nil {
			children = append(children,
				c.keywordIn("finally", endOf(last, span), finally.Span.Offset(), span), finally)
		}
		return c.make(ast.Try, span, children...)
	case *js.VariableStatement:
		return c.declaration(span, c.keyword("var", n.Var, span), n.List)
	case *js.LexicalDeclaration:
		word := n.Token.String()
		if word != "const" {
			word = "let"
		}
		return c.declaration(span, c.keyword(word, n.Idx, span), n.List)
	case *js.WhileStatement:
		return c.make(ast.While, span,
			c.keyword("while", n.While, span), c.node(n.Test), c.node(n.Body))
	case *js.WithStatement:
		return c.make(ast.With, span,
			c.keyword("with", n.With, span), c.node(n.Object), c.node(n.Body))
	case *js.FunctionDeclaration:
		fn := c.function(n.Function, true)
		fn.Kind = ast.FunctionDeclaration
		fn.Span = span
		return fn
	case *js.ClassDeclaration:
		cl := c.class(n.Class)
		cl.Kind = ast.ClassDeclaration
		cl.Span = span
		return cl

	// Identifiers and member access
	case *js.Identifier:
		return &ast.Node{Kind: ast.Identifier, Name: n.Name.String(), Span: span}
	case *js.PrivateIdentifier:
		return &ast.Node{Kind: ast.Identifier, Name: "#" + n.Name.String(), Span: span}
	case *js.DotExpression:
		member := c.make(ast.MemberAccess, span, c.node(n.Left))
		member.Name = n.Identifier.Name.String()
		return member
	case *js.PrivateDotExpression:
		member := c.make(ast.MemberAccess, span, c.node(n.Left))
		member.Name = "#" + n.Identifier.Name.String()
		return member
	case *js.BracketExpression:
		member := c.make(ast.MemberAccess, span, c.node(n.Left), c.node(n.Member))
		member.Name, member.Computed = memberName(n.Member)
		return member
	case *js.OptionalChain:
		return c.node(n.Expression)
	case *js.Optional:
		return c.node(n.Expression)

	// Calls
	case *js.CallExpression:
		call := c.make(ast.Call, span, append([]*ast.Node{c.node(n.Callee)}, c.expressions(n.ArgumentList)...)...)
		call.Name, call.Computed = calleeName(n.Callee)
		return call
	case *js.NewExpression:
		children := []*ast.Node{c.keyword("new", n.New, span), c.node(n.Callee)}
		call := c.make(ast.New, span, append(children, c.expressions(n.ArgumentList)...)...)
		call.Name, call.Computed = calleeName(n.Callee)
		return call
	case *js.TemplateLiteral:
		if n.Tag != nil {
			children := append([]*ast.Node{c.node(n.Tag)}, c.expressions(n.Expressions)...)
			call := c.make(ast.TaggedTemplate, span, children...)
			call.Name, call.Computed = calleeName(n.Tag)
			return call
		}
		return c.make(ast.Template, span, c.expressions(n.Expressions)...)

	// Functions and classes
	case *js.FunctionLiteral:
		return c.function(n, true)
	case *js.ArrowFunctionLiteral:
		return c.arrow(n, span)
	case *js.ClassLiteral:
		return c.class(n)

	// Literals
	case *js.BooleanLiteral:
		return &ast.Node{Kind: ast.Literal, Name: n.Literal, Span: span}
	case *js.NullLiteral:
		return &ast.Node{Kind: ast.Literal, Name: n.Literal, Span: span}
	case *js.NumberLiteral:
		return &ast.Node{Kind: ast.Literal, Name: n.Literal, Span: span}
	case *js.StringLiteral:
		return &ast.Node{Kind: ast.Literal, Name: n.Value.String(), Span: span}
	case *js.RegExpLiteral:
		return &ast.Node{Kind: ast.Literal, Name: n.Literal, Span: span}
	case *js.ArrayLiteral:
		return c.make(ast.Array, span, c.expressions(n.Value)...)
	case *js.ObjectLiteral:
		return c.make(ast.Object, span, c.properties(n.Value)...)

	// Patterns
	case *js.ArrayPattern:
		return c.make(ast.ArrayPattern, span, append(c.expressions(n.Elements), c.node(n.Rest))...)
	case *js.ObjectPattern:
		return c.make(ast.ObjectPattern, span, append(c.properties(n.Properties), c.node(n.Rest))...)
	case *js.PropertyShort:
		prop := c.make(ast.Property, span, c.node(&n.Name), c.node(n.Initializer))
		prop.Name = n.Name.Name.String()
		return prop
	case *js.PropertyKeyed:
		return c.keyed(n, span)
	case *js.SpreadElement:
		return c.make(ast.Spread, span, c.node(n.Expression))

	// Operators
	case *js.AssignExpression:
		return c.make(ast.Assign, span, c.node(n.Left), c.node(n.Right))
	case *js.BinaryExpression:
		left := c.node(n.Left)
		right := c.node(n.Right)
		return c.make(ast.Binary, span,
			left, c.operator(n.Operator, 0, endOf(left, span), startOf(right, span.End.Char), span), right)
	case *js.UnaryExpression:
		kind := ast.Unary
		if n.Operator == jstoken.INCREMENT || n.Operator == jstoken.DECREMENT {
			kind = ast.Update
		}
		var at file.Idx
		if !n.Postfix {
			at = n.Idx
		}
		operand := c.node(n.Operand)
		return c.make(kind, span,
			c.operator(n.Operator, at, span.Offset(), startOf(operand, span.End.Char), span), operand)
	case *js.ConditionalExpression:
		return c.make(ast.Conditional, span, c.node(n.Test), c.node(n.Consequent), c.node(n.Alternate))
	case *js.SequenceExpression:
		return c.make(ast.Sequence, span, c.expressions(n.Sequence)...)
	case *js.YieldExpression:
		return c.make(ast.Yield, span, c.keyword("yield", n.Yield, span), c.node(n.Argument))
	case *js.AwaitExpression:
		return c.make(ast.Await, span, c.keyword("await", n.Await, span), c.node(n.Argument))
	case *js.ThisExpression:
		return c.make(ast.This, span, c.keyword("this", n.Idx, span))
	case *js.SuperExpression:
		return c.make(ast.Super, span, c.keyword("super", n.Idx, span))
	case *js.MetaProperty:
		meta := c.make(ast.MetaProperty, span, c.keyword(n.Meta.Name.String(), n.Idx, span))
		meta.Name = n.Property.Name.String()
		return meta
	case *js.BadExpression:
		return c.make(ast.Bad, span)
	}
	return c.make(ast.Bad, span)
}

func (c *converter) declaration(span token.Span, keyword *ast.Node, list []*js.Binding) *ast.Node {
	decl := c.make(ast.VariableDeclaration, span, keyword)
	for _, b := range list {
		if n := c.binding(b); n != nil {
			decl.Children = append(decl.Children, n)
		}
	}
	return decl
}

func (c *converter) binding(b *js.Binding) *ast.Node {
	if b == nil {
		return nil
	}
	target := c.node(b.Target)
	init := c.node(b.Initializer)
	if init == nil {
		return target
	}
	if target == nil {
		return init
	}
	return c.make(ast.Binding, c.file.Span(target.Span.Offset(), init.Span.End.Char), target, init)
}

func (c *converter) forInit(init js.ForLoopInitializer, fallback token.Span) *ast.Node {
	switch init := init.(type) {
	case *js.ForLoopInitializerExpression:
		return c.node(init.Expression)
	case *js.ForLoopInitializerVarDeclList:
		keyword := c.keyword("var", init.Var, fallback)
		return c.declaration(c.bindingsSpan(keyword.Span, init.List), keyword, init.List)
	case *js.ForLoopInitializerLexicalDecl:
		return c.node(&init.LexicalDeclaration)
	}
	return nil
}

func (c *converter) forInto(into js.ForInto, fallback token.Span) *ast.Node {
	switch into := into.(type) {
	case *js.ForIntoExpression:
		return c.node(into.Expression)
	case *js.ForIntoVar:
		list := []*js.Binding{into.Binding}
		keyword := c.keywordIn("var", fallback.Offset(), fallback.End.Char, fallback)
		return c.declaration(c.bindingsSpan(keyword.Span, list), keyword, list)
	case *js.ForDeclaration:
		word := "let"
		if into.IsConst {
			word = "const"
		}
		keyword := c.keyword(word, into.Idx, fallback)
		target := c.node(into.Target)
		span := keyword.Span
		if target != nil {
			span = c.file.Span(keyword.Span.Offset(), target.Span.End.Char)
		}
		return c.make(ast.VariableDeclaration, span, keyword, target)
	}
	return nil
}

func (c *converter) bindingsSpan(start token.Span, list []*js.Binding) token.Span {
	end := start.End.Char
	for _, b := range list {
		if n := c.binding(b); n != nil && n.Span.End.Char > end {
			end = n.Span.End.Char
		}
	}
	return c.file.Span(start.Offset(), end)
}

func (c *converter) params(list *js.ParameterList) ([]*ast.Node, int) {
	if list == nil {
		return nil, 0
	}
	var nodes []*ast.Node
	for _, b := range list.List {
		if n := c.binding(b); n != nil {
			nodes = append(nodes, n)
		}
	}
	if rest := c.node(list.Rest); rest != nil {
		nodes = append(nodes, c.make(ast.Spread, rest.Span, rest))
	}
	return nodes, len(list.List)
}

// function converts a function literal. Methods are written without the
// function keyword, so withKeyword is false for them.
func (c *converter) function(fn *js.FunctionLiteral, withKeyword bool) *ast.Node {
	span := c.spanOf(fn)
	node := c.make(ast.Function, span)
	if fn.Async {
		node.Children = append(node.Children, c.keywordIn("async", span.Offset(), span.End.Char, span))
	}
	if withKeyword {
		node.Children = append(node.Children, c.keywordIn("function", span.Offset(), span.End.Char, span))
	}
	if fn.Name != nil {
		node.Name = fn.Name.Name.String()
		node.Children = append(node.Children, c.node(fn.Name))
	}
	params, arity := c.params(fn.ParameterList)
	node.Children = append(node.Children, params...)
	node.Arity = arity
	if body := c.node(fn.Body); body != nil {
		node.Children = append(node.Children, body)
	}
	return node
}

func (c *converter) arrow(fn *js.ArrowFunctionLiteral, span token.Span) *ast.Node {
	node := c.make(ast.ArrowFunction, span)
	if fn.Async {
		node.Children = append(node.Children, c.keyword("async", fn.Start, span))
	}
	params, arity := c.params(fn.ParameterList)
	node.Children = append(node.Children, params...)
	node.Arity = arity
	var body *ast.Node
	switch b := fn.Body.(type) {
	case *js.BlockStatement:
		body = c.node(b)
	case *js.ExpressionBody:
		body = c.node(b.Expression)
	}
	if body != nil {
		node.Children = append(node.Children, body)
	}
	return node
}

func (c *converter) class(cl *js.ClassLiteral) *ast.Node {
	span := c.spanOf(cl)
	node := c.make(ast.Class, span, c.keyword("class", cl.Class, span))
	head := span.Offset()
	if cl.Name != nil {
		name := c.node(cl.Name)
		node.Name = cl.Name.Name.String()
		node.Children = append(node.Children, name)
		head = name.Span.End.Char
	}
	if super := c.node(cl.SuperClass); super != nil {
		node.Children = append(node.Children,
			c.keywordIn("extends", head, super.Span.Offset(), span), super)
	}
	for _, el := range cl.Body {
		if n := c.classElement(el); n != nil {
			node.Children = append(node.Children, n)
		}
	}
	return node
}

func (c *converter) classElement(el js.ClassElement) *ast.Node {
	switch el := el.(type) {
	case *js.FieldDefinition:
		span := c.spanOf(el)
		prop := c.make(ast.Property, span)
		if el.Static {
			prop.Children = append(prop.Children, c.keywordIn("static", span.Offset(), span.End.Char, span))
		}
		prop.Name, prop.Computed = keyName(el.Key, el.Computed)
		if prop.Computed {
			prop.Children = appendNode(prop.Children, c.node(el.Key))
		}
		prop.Children = appendNode(prop.Children, c.node(el.Initializer))
		return prop
	case *js.MethodDefinition:
		span := c.spanOf(el)
		prop := c.make(ast.Property, span)
		if el.Static {
			prop.Children = append(prop.Children, c.keywordIn("static", span.Offset(), span.End.Char, span))
		}
		prop.Name, prop.Computed = keyName(el.Key, el.Computed)
		if prop.Computed {
			prop.Children = appendNode(prop.Children, c.node(el.Key))
		}
		if el.Body != nil {
			prop.Children = append(prop.Children, c.function(el.Body, false))
		}
		return prop
	case *js.ClassStaticBlock:
		block := c.node(el.Block)
		if block == nil {
			return nil
		}
		kw := c.keyword("static", el.Static, block.Span)
		return c.make(ast.Block, c.file.Span(kw.Span.Offset(), block.Span.End.Char), kw, block)
	}
	return nil
}

func (c *converter) properties(list []js.Property) []*ast.Node {
	nodes := make([]*ast.Node, 0, len(list))
	for _, p := range list {
		if n := c.node(p); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (c *converter) keyed(p *js.PropertyKeyed, span token.Span) *ast.Node {
	prop := c.make(ast.Property, span)
	prop.Name, prop.Computed = keyName(p.Key, p.Computed)
	if prop.Computed {
		prop.Children = appendNode(prop.Children, c.node(p.Key))
	}
	// Accessors and methods are written without the function keyword.
	if fn, ok := p.Value.(*js.FunctionLiteral); ok && p.Kind != "value" {
		prop.Children = append(prop.Children, c.function(fn, false))
		return prop
	}
	prop.Children = appendNode(prop.Children, c.node(p.Value))
	return prop
}

func appendNode(nodes []*ast.Node, n *ast.Node) []*ast.Node {
	if n == nil {
		return nodes
	}
	return append(nodes, n)
}

func startOf(n *ast.Node, fallback int) int {
	if n == nil {
		return fallback
	}
	return n.Span.Offset()
}

func endOf(n *ast.Node, fallback token.Span) int {
	if n == nil {
		return fallback.Offset()
	}
	return n.Span.End.Char
}

// memberName returns the property name selected by a bracket expression when
// the key is a literal.
func memberName(member js.Expression) (string, bool) {
	switch m := member.(type) {
	case *js.StringLiteral:
		return m.Value.String(), false
	case *js.NumberLiteral:
		return m.Literal, false
	case *js.TemplateLiteral:
		if m.Tag == nil && len(m.Expressions) == 0 && len(m.Elements) == 1 {
			// The cooked value is the key the engine looks up, so escapes
			// such as \u0070 must not hide a name.
			if !m.Elements[0].Valid {
				return "", true
			}
			return m.Elements[0].Parsed.String(), false
		}
	}
	return "", true
}

// keyName returns the static name of an object or class member key.
func keyName(key js.Expression, computed bool) (string, bool) {
	switch k := key.(type) {
	case *js.Identifier:
		if !computed {
			return k.Name.String(), false
		}
	case *js.PrivateIdentifier:
		return "#" + k.Name.String(), false
	case *js.StringLiteral:
		return k.Value.String(), false
	case *js.NumberLiteral:
		return k.Literal, false
	}
	return "", true
}

// calleeName resolves the name a call targets. Only plain identifiers and
// member accesses with a literal name resolve; anything else is reported as
// computed.
func calleeName(callee js.Expression) (string, bool) {
	callee = unwrapOptional(callee)
	switch e := callee.(type) {
	case *js.Identifier:
		return e.Name.String(), false
	case *js.DotExpression:
		return e.Identifier.Name.String(), false
	case *js.PrivateDotExpression:
		return "#" + e.Identifier.Name.String(), false
	case *js.BracketExpression:
		return memberName(e.Member)
	case *js.SuperExpression:
		return "super", false
	}
	return "", true
}

func unwrapOptional(e js.Expression) js.Expression {
	for {
		switch o := e.(type) {
		case *js.Optional:
			e = o.Expression
		case *js.OptionalChain:
			e = o.Expression
		default:
			return e
		}
	}
}
