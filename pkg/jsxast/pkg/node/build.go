package node

// Constructors for hand-built trees. Nodes built here carry no positions, so
// printers generate their text instead of copying it from a source buffer.

// NewProgram creates a Program node.
func NewProgram(stmts ...*Node) *Node {
	return NewBuilder().WithType(TypeProgram).WithChildren(stmts...).Build()
}

// NewIdentifier creates an Identifier node.
func NewIdentifier(name string) *Node {
	return NewBuilder().WithType(TypeIdentifier).WithToken(name).Build()
}

// NewStringLiteral creates a StringLiteral node holding value.
func NewStringLiteral(value string) *Node {
	return NewBuilder().WithType(TypeStringLiteral).WithToken(value).Build()
}

// NewFunctionDecl creates `function name() body`.
func NewFunctionDecl(name string, body *Node) *Node {
	return NewBuilder().
		WithType(TypeFunctionDecl).
		WithChildren(WithRole(NewIdentifier(name), RoleName), WithRole(body, RoleBody)).
		Build()
}

// NewVarDecl creates a declaration with the given keyword.
func NewVarDecl(kind string, declarators ...*Node) *Node {
	return NewBuilder().WithType(TypeVarDecl).WithProp(PropKind, kind).WithChildren(declarators...).Build()
}

// NewDeclarator creates `name = init` with a simple identifier pattern.
func NewDeclarator(name string, init *Node) *Node {
	return NewPatternDeclarator(NewIdentifier(name), init)
}

// NewPatternDeclarator creates a declarator with an arbitrary binding pattern.
func NewPatternDeclarator(pattern, init *Node) *Node {
	return NewBuilder().
		WithType(TypeVarDeclarator).
		WithChildren(WithRole(pattern, RoleName), WithRole(init, RoleValue)).
		Build()
}

// NewArrow creates `() => body`.
func NewArrow(body *Node) *Node {
	return NewBuilder().WithType(TypeArrowFunction).WithChildren(WithRole(body, RoleBody)).Build()
}

// NewFunctionExpr creates `function name() body`; name may be empty.
func NewFunctionExpr(name string, body *Node) *Node {
	builder := NewBuilder().WithType(TypeFunctionExpr)

	if name != "" {
		builder.WithChildren(WithRole(NewIdentifier(name), RoleName))
	}

	return builder.WithChildren(WithRole(body, RoleBody)).Build()
}

// NewBlock creates a statement block.
func NewBlock(stmts ...*Node) *Node {
	return NewBuilder().WithType(TypeBlock).WithChildren(stmts...).Build()
}

// NewReturn creates `return arg`; arg may be nil.
func NewReturn(arg *Node) *Node {
	return NewBuilder().WithType(TypeReturn).WithChildren(arg).Build()
}

// NewExprStmt creates an expression statement.
func NewExprStmt(expr *Node) *Node {
	return NewBuilder().WithType(TypeExprStmt).WithChildren(expr).Build()
}

// NewParen wraps expr in parentheses.
func NewParen(expr *Node) *Node {
	return NewBuilder().WithType(TypeParen).WithChildren(expr).Build()
}

// NewCall creates `callee(args...)` with a bare identifier callee.
func NewCall(callee string, args ...*Node) *Node {
	builder := NewBuilder().WithType(TypeCall).WithChildren(WithRole(NewIdentifier(callee), RoleCallee))

	for _, arg := range args {
		builder.WithChildren(WithRole(arg, RoleArgument))
	}

	return builder.Build()
}

// NewSyntax creates a Syntax node for an otherwise unmodelled construct.
func NewSyntax(kind, token string, children ...*Node) *Node {
	return NewBuilder().
		WithType(TypeSyntax).
		WithProp(PropSyntax, kind).
		WithToken(token).
		WithChildren(children...).
		Build()
}

// NewElement creates `<name attrs...>children...</name>`.
func NewElement(name string, attrs []*Node, children ...*Node) *Node {
	return NewElementNamed(NewBuilder().WithType(TypeJSXName).WithToken(name).Build(), attrs, children...)
}

// NewElementNamed creates an element whose tag name is an arbitrary name node.
func NewElementNamed(name *Node, attrs []*Node, children ...*Node) *Node {
	opening := newOpening(name, attrs)
	closing := NewBuilder().
		WithType(TypeJSXClosing).
		WithRoles(RoleClosing).
		WithChildren(WithRole(name.Clone(), RoleName)).
		Build()

	return NewBuilder().
		WithType(TypeJSXElement).
		WithChildren(opening).
		WithChildren(children...).
		WithChildren(closing).
		Build()
}

// NewSelfClosing creates `<name attrs... />`.
func NewSelfClosing(name string, attrs ...*Node) *Node {
	return NewSelfClosingNamed(NewBuilder().WithType(TypeJSXName).WithToken(name).Build(), attrs...)
}

// NewSelfClosingNamed creates a self-closing element with an arbitrary name node.
func NewSelfClosingNamed(name *Node, attrs ...*Node) *Node {
	opening := newOpening(name, attrs)
	opening.SetProp(PropSelfClosing, "true")

	return NewBuilder().WithType(TypeJSXElement).WithChildren(opening).Build()
}

func newOpening(name *Node, attrs []*Node) *Node {
	return NewBuilder().
		WithType(TypeJSXOpening).
		WithRoles(RoleOpening).
		WithChildren(WithRole(name, RoleName)).
		WithChildren(attrs...).
		Build()
}

// NewMemberName creates a member-style tag name such as "Foo.Bar".
func NewMemberName(name string) *Node {
	return NewBuilder().WithType(TypeJSXMemberName).WithToken(name).Build()
}

// NewNamespacedName creates a namespaced tag or attribute name such as "svg:rect".
func NewNamespacedName(name string) *Node {
	return NewBuilder().WithType(TypeJSXNamespacedName).WithToken(name).Build()
}

// NewFragment creates `<>children...</>`.
func NewFragment(children ...*Node) *Node {
	return NewBuilder().WithType(TypeJSXFragment).WithChildren(children...).Build()
}

// NewAttr creates `name=value`; a nil value yields a bare attribute.
func NewAttr(name string, value *Node) *Node {
	attrName := NewBuilder().WithType(TypeJSXAttrName).WithToken(name).WithRoles(RoleName).Build()

	return NewBuilder().
		WithType(TypeJSXAttribute).
		WithChildren(attrName, WithRole(value, RoleValue)).
		Build()
}

// NewStringAttr creates `name="value"`.
func NewStringAttr(name, value string) *Node {
	return NewAttr(name, NewStringLiteral(value))
}

// NewSpreadAttr creates `{...expr}` in attribute position.
func NewSpreadAttr(expr *Node) *Node {
	return NewBuilder().WithType(TypeJSXSpreadAttribute).WithChildren(expr).Build()
}

// NewExprContainer creates `{expr}`.
func NewExprContainer(expr *Node) *Node {
	return NewBuilder().WithType(TypeJSXExprContainer).WithChildren(expr).Build()
}

// NewText creates a markup text child.
func NewText(text string) *Node {
	return NewBuilder().WithType(TypeJSXText).WithToken(text).Build()
}

// WithRole adds role to n and returns it. A nil node stays nil.
func WithRole(n *Node, role Role) *Node {
	if n == nil {
		return nil
	}

	if !n.HasRole(role) {
		n.Roles = append(n.Roles, role)
	}

	return n
}
