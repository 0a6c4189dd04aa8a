package jsxast_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
)

const componentSource = `import React from 'react';

export function ImgComponent({ src }: Props) {
  // comment survives
  return (
    <div className="wrap" {...rest}>
      <img src={src} lazy-load='false' />
      <>text</>
    </div>
  );
}

const Arrow = () => <Foo.Bar placeholder="x" />;
`

func parse(t *testing.T, source string) *node.Node {
	t.Helper()

	root, err := jsxast.NewParser().Parse(context.Background(), "component.tsx", []byte(source))
	require.NoError(t, err)

	return root
}

func TestPrintRoundTripsUntouchedTree(t *testing.T) {
	t.Parallel()

	root := parse(t, componentSource)

	out, err := jsxast.Print(root, []byte(componentSource))
	require.NoError(t, err)
	assert.Equal(t, componentSource, string(out))
}

func TestParseBuildsNodeKinds(t *testing.T) {
	t.Parallel()

	root := parse(t, componentSource)
	require.Equal(t, node.TypeProgram, root.Type)

	decls := root.Find(func(n *node.Node) bool { return n.Type == node.TypeFunctionDecl })
	require.Len(t, decls, 1)
	assert.Equal(t, "ImgComponent", decls[0].ChildByRole(node.RoleName).Token)
	assert.Equal(t, node.TypeBlock, decls[0].ChildByRole(node.RoleBody).Type)

	vars := root.Find(func(n *node.Node) bool { return n.Type == node.TypeVarDecl })
	require.Len(t, vars, 1)
	assert.Equal(t, "const", vars[0].Prop(node.PropKind))

	declarator := vars[0].ChildByType(node.TypeVarDeclarator)
	require.NotNil(t, declarator)
	assert.Equal(t, "Arrow", declarator.ChildByRole(node.RoleName).Token)
	assert.Equal(t, node.TypeArrowFunction, declarator.ChildByRole(node.RoleValue).Type)

	openings := root.Find(func(n *node.Node) bool { return n.Type == node.TypeJSXOpening })
	require.Len(t, openings, 3)

	div := openings[0]
	assert.Equal(t, node.TypeJSXName, div.TagName().Type)
	assert.Equal(t, "div", div.TagName().Token)
	require.Len(t, div.Attributes(), 2)
	assert.Equal(t, "wrap", div.FindAttr("className").AttrValue().Token)
	assert.Equal(t, node.TypeJSXSpreadAttribute, div.Attributes()[1].Type)

	img := openings[1]
	assert.True(t, img.IsSelfClosing())
	assert.Equal(t, node.TypeJSXExprContainer, img.FindAttr("src").AttrValue().Type)
	assert.Equal(t, "false", img.FindAttr("lazy-load").AttrValue().Token)

	member := openings[2]
	assert.Equal(t, node.TypeJSXMemberName, member.TagName().Type)
	assert.Equal(t, "Foo.Bar", member.TagName().Token)

	fragments := root.Find(func(n *node.Node) bool { return n.Type == node.TypeJSXFragment })
	require.Len(t, fragments, 1)
	require.Len(t, fragments[0].Children, 1)
	assert.Equal(t, node.TypeJSXText, fragments[0].Children[0].Type)
}

func TestParseCallArguments(t *testing.T) {
	t.Parallel()

	root := parse(t, "legacyRender(<App />, root);\n")

	calls := root.Find(func(n *node.Node) bool { return n.Type == node.TypeCall })
	require.Len(t, calls, 1)

	callee := calls[0].ChildByRole(node.RoleCallee)
	require.NotNil(t, callee)
	assert.Equal(t, node.TypeIdentifier, callee.Type)
	assert.Equal(t, "legacyRender", callee.Token)
	assert.Len(t, calls[0].ChildrenByRole(node.RoleArgument), 2)
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	t.Parallel()

	_, err := jsxast.NewParser().Parse(context.Background(), "broken.tsx", []byte("function (( {\n"))
	require.ErrorIs(t, err, jsxast.ErrSyntax)
}

func TestPrintRegeneratesTouchedNodes(t *testing.T) {
	t.Parallel()

	source := `const A = () => <input lazy-load='false' placeholder={hint} />;`
	root := parse(t, source)

	opening := root.Find(func(n *node.Node) bool { return n.Type == node.TypeJSXOpening })[0]

	lazy := opening.FindAttr("lazy-load").AttrValue()
	lazy.Token = "true"
	lazy.Touch()

	placeholder := opening.FindAttr("placeholder")
	name := placeholder.ChildByRole(node.RoleName)
	name.Token = "aria-placeholder"
	name.Touch()

	value := placeholder.AttrValue()
	value.Type = node.TypeStringLiteral
	value.Token = "placeholder"
	value.Children = nil
	value.Touch()

	opening.AddChild(node.NewStringAttr("data-testid", "a"))

	out, err := jsxast.Print(root, []byte(source))
	require.NoError(t, err)
	assert.Equal(t,
		`const A = () => <input lazy-load='true' aria-placeholder="placeholder" data-testid="a" />;`,
		string(out))
}

func TestPrintInsertsMissingAttributeValue(t *testing.T) {
	t.Parallel()

	source := `<input placeholder>`
	root := parse(t, source+"</input>")

	attr := root.Find(func(n *node.Node) bool { return n.Type == node.TypeJSXAttribute })[0]
	attr.AddChild(node.WithRole(node.NewStringLiteral("placeholder"), node.RoleValue))

	out, err := jsxast.Print(root, []byte(source+"</input>"))
	require.NoError(t, err)
	assert.Equal(t, `<input placeholder="placeholder"></input>`, string(out))
}

func TestPrintRejectsForeignPositions(t *testing.T) {
	t.Parallel()

	root := node.NewIdentifier("x")
	root.Pos = node.NewPositions(1, 1, 0, 1, 40, 40)

	_, err := jsxast.Print(root, []byte("short"))
	require.ErrorIs(t, err, jsxast.ErrPositionRange)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tree *node.Node
		want string
	}{
		{
			name: "function with return",
			tree: node.NewFunctionDecl("Div", node.NewBlock(node.NewReturn(
				node.NewElement("div", []*node.Node{node.NewStringAttr("data-testid", "div")}, node.NewText("hi"))))),
			want: `function Div() { return <div data-testid="div">hi</div> }`,
		},
		{
			name: "arrow with paren",
			tree: node.NewVarDecl("const", node.NewDeclarator("A", node.NewArrow(node.NewParen(node.NewSelfClosing("a"))))),
			want: `const A = () => (<a />)`,
		},
		{
			name: "fragment and call",
			tree: node.NewExprStmt(node.NewCall("render", node.NewFragment(node.NewExprContainer(node.NewIdentifier("x"))))),
			want: `render(<>{x}</>)`,
		},
		{
			name: "spread and empty block",
			tree: node.NewFunctionExpr("", node.NewBlock(node.NewExprStmt(
				node.NewSelfClosing("b", node.NewSpreadAttr(node.NewIdentifier("p")))))),
			want: `function() { <b {...p} /> }`,
		},
		{
			name: "empty block",
			tree: node.NewFunctionDecl("F", node.NewBlock()),
			want: `function F() {}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, jsxast.Generate(tt.tree))
		})
	}
}

func TestIsSupported(t *testing.T) {
	t.Parallel()

	parser := jsxast.NewParser()

	assert.True(t, parser.IsSupported("src/App.tsx", nil))
	assert.True(t, parser.IsSupported("src/App.jsx", nil))
	assert.False(t, parser.IsSupported("src/App.go", nil))
	assert.False(t, parser.IsSupported("node_modules/lib/App.tsx", nil))

	custom := jsxast.NewParser("js", ".TSX")
	assert.Equal(t, []string{".js", ".tsx"}, custom.Extensions())
	assert.True(t, custom.IsSupported("index.js", nil))
}
