package jsxast

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
)

type convContext int

const (
	contextStatement convContext = iota
	contextTagName
	contextAttribute
)

// fieldRoles maps grammar field names onto roles, per grammar node type.
var fieldRoles = map[string]map[string]node.Role{
	"function_declaration":           {"name": node.RoleName, "parameters": node.RoleParameter, "body": node.RoleBody},
	"generator_function_declaration": {"name": node.RoleName, "parameters": node.RoleParameter, "body": node.RoleBody},
	"function_expression":            {"name": node.RoleName, "parameters": node.RoleParameter, "body": node.RoleBody},
	"function":                       {"name": node.RoleName, "parameters": node.RoleParameter, "body": node.RoleBody},
	"generator_function":             {"name": node.RoleName, "parameters": node.RoleParameter, "body": node.RoleBody},
	"arrow_function":                 {"parameters": node.RoleParameter, "parameter": node.RoleParameter, "body": node.RoleBody},
	"variable_declarator":            {"name": node.RoleName, "value": node.RoleValue},
	"call_expression":                {"function": node.RoleCallee},
}

var simpleTypes = map[string]node.Type{
	"program":                        node.TypeProgram,
	"function_declaration":           node.TypeFunctionDecl,
	"generator_function_declaration": node.TypeFunctionDecl,
	"function_expression":            node.TypeFunctionExpr,
	"function":                       node.TypeFunctionExpr,
	"generator_function":             node.TypeFunctionExpr,
	"arrow_function":                 node.TypeArrowFunction,
	"variable_declarator":            node.TypeVarDeclarator,
	"statement_block":                node.TypeBlock,
	"return_statement":               node.TypeReturn,
	"expression_statement":           node.TypeExprStmt,
	"parenthesized_expression":       node.TypeParen,
}

type converter struct {
	source []byte
}

func (conv *converter) text(tsNode sitter.Node) string {
	return string(conv.source[tsNode.StartByte():tsNode.EndByte()])
}

func positions(tsNode sitter.Node) *node.Positions {
	start := tsNode.StartPoint()
	end := tsNode.EndPoint()

	return node.NewPositions(
		start.Row+1,
		start.Column+1,
		tsNode.StartByte(),
		end.Row+1,
		end.Column+1,
		tsNode.EndByte(),
	)
}

func sameNode(left, right sitter.Node) bool {
	return left.StartByte() == right.StartByte() &&
		left.EndByte() == right.EndByte() &&
		left.Type() == right.Type()
}

func (conv *converter) leaf(tsNode sitter.Node, nodeType node.Type) *node.Node {
	return node.NewBuilder().
		WithType(nodeType).
		WithToken(conv.text(tsNode)).
		WithPosition(positions(tsNode)).
		Build()
}

func (conv *converter) convert(tsNode sitter.Node, ctx convContext) *node.Node {
	grammarType := tsNode.Type()

	if ctx == contextTagName {
		return conv.convertTagName(tsNode)
	}

	switch grammarType {
	case "identifier":
		return conv.leaf(tsNode, node.TypeIdentifier)
	case "string":
		return conv.convertString(tsNode)
	case "lexical_declaration", "variable_declaration":
		return conv.convertVarDecl(tsNode)
	case "call_expression":
		return conv.convertCall(tsNode)
	case "jsx_element":
		return conv.convertElement(tsNode)
	case "jsx_self_closing_element":
		return conv.convertSelfClosing(tsNode)
	case "jsx_opening_element":
		return conv.convertTag(tsNode, node.TypeJSXOpening, node.RoleOpening)
	case "jsx_closing_element":
		return conv.convertTag(tsNode, node.TypeJSXClosing, node.RoleClosing)
	case "jsx_attribute":
		return conv.convertAttribute(tsNode)
	case "jsx_expression":
		nodeType := node.TypeJSXExprContainer
		if ctx == contextAttribute {
			nodeType = node.TypeJSXSpreadAttribute
		}

		return conv.convertGeneric(tsNode, nodeType)
	case "jsx_text":
		return conv.leaf(tsNode, node.TypeJSXText)
	}

	if nodeType, ok := simpleTypes[grammarType]; ok {
		return conv.convertGeneric(tsNode, nodeType)
	}

	return conv.convertSyntax(tsNode)
}

// convertGeneric converts every named child and labels field children with roles.
func (conv *converter) convertGeneric(tsNode sitter.Node, nodeType node.Type) *node.Node {
	result := node.NewBuilder().WithType(nodeType).WithPosition(positions(tsNode)).Build()
	fields := conv.fieldNodes(tsNode)

	for idx := range tsNode.NamedChildCount() {
		child := tsNode.NamedChild(idx)
		converted := conv.convert(child, contextStatement)

		for role, fieldNode := range fields {
			if sameNode(child, fieldNode) {
				node.WithRole(converted, role)
			}
		}

		result.AddChild(converted)
	}

	return result
}

func (conv *converter) fieldNodes(tsNode sitter.Node) map[node.Role]sitter.Node {
	roles, ok := fieldRoles[tsNode.Type()]
	if !ok {
		return nil
	}

	fields := make(map[node.Role]sitter.Node, len(roles))

	for field, role := range roles {
		fieldNode := tsNode.ChildByFieldName(field)
		if !fieldNode.IsNull() {
			fields[role] = fieldNode
		}
	}

	return fields
}

func (conv *converter) convertSyntax(tsNode sitter.Node) *node.Node {
	builder := node.NewBuilder().
		WithType(node.TypeSyntax).
		WithProp(node.PropSyntax, tsNode.Type()).
		WithPosition(positions(tsNode))

	if tsNode.NamedChildCount() == 0 {
		builder.WithToken(conv.text(tsNode))

		return builder.Build()
	}

	for idx := range tsNode.NamedChildCount() {
		builder.WithChildren(conv.convert(tsNode.NamedChild(idx), contextStatement))
	}

	return builder.Build()
}

func (conv *converter) convertString(tsNode sitter.Node) *node.Node {
	raw := conv.text(tsNode)
	value := raw

	const quotedMinLen = 2

	if len(raw) >= quotedMinLen {
		value = raw[1 : len(raw)-1]
	}

	return node.NewBuilder().
		WithType(node.TypeStringLiteral).
		WithToken(value).
		WithProp(node.PropRaw, raw).
		WithPosition(positions(tsNode)).
		Build()
}

func (conv *converter) convertVarDecl(tsNode sitter.Node) *node.Node {
	result := conv.convertGeneric(tsNode, node.TypeVarDecl)

	if tsNode.ChildCount() > 0 {
		result.SetProp(node.PropKind, tsNode.Child(0).Type())
	}

	return result
}

// convertCall flattens the argument list so arguments sit beside the callee.
func (conv *converter) convertCall(tsNode sitter.Node) *node.Node {
	result := node.NewBuilder().WithType(node.TypeCall).WithPosition(positions(tsNode)).Build()
	callee := tsNode.ChildByFieldName("function")
	arguments := tsNode.ChildByFieldName("arguments")

	for idx := range tsNode.NamedChildCount() {
		child := tsNode.NamedChild(idx)

		switch {
		case !callee.IsNull() && sameNode(child, callee):
			result.AddChild(node.WithRole(conv.convert(child, contextStatement), node.RoleCallee))
		case !arguments.IsNull() && sameNode(child, arguments) && child.Type() == "arguments":
			for argIdx := range child.NamedChildCount() {
				arg := conv.convert(child.NamedChild(argIdx), contextStatement)
				result.AddChild(node.WithRole(arg, node.RoleArgument))
			}
		default:
			result.AddChild(conv.convert(child, contextStatement))
		}
	}

	return result
}

// convertElement handles jsx_element, which is a fragment when its opening tag has no name.
func (conv *converter) convertElement(tsNode sitter.Node) *node.Node {
	opening := tsNode.ChildByFieldName("open_tag")
	if opening.IsNull() && tsNode.NamedChildCount() > 0 {
		opening = tsNode.NamedChild(0)
	}

	if !opening.IsNull() && opening.ChildByFieldName("name").IsNull() && !hasTagName(opening) {
		return conv.convertFragment(tsNode)
	}

	result := node.NewBuilder().WithType(node.TypeJSXElement).WithPosition(positions(tsNode)).Build()

	for idx := range tsNode.NamedChildCount() {
		result.AddChild(conv.convert(tsNode.NamedChild(idx), contextStatement))
	}

	return result
}

func hasTagName(tsNode sitter.Node) bool {
	for idx := range tsNode.NamedChildCount() {
		if isTagNameType(tsNode.NamedChild(idx).Type()) {
			return true
		}
	}

	return false
}

func isTagNameType(grammarType string) bool {
	switch grammarType {
	case "identifier", "member_expression", "nested_identifier", "jsx_namespace_name":
		return true
	default:
		return false
	}
}

// convertFragment drops the empty tags; their text is reproduced from source gaps.
func (conv *converter) convertFragment(tsNode sitter.Node) *node.Node {
	result := node.NewBuilder().WithType(node.TypeJSXFragment).WithPosition(positions(tsNode)).Build()

	for idx := range tsNode.NamedChildCount() {
		child := tsNode.NamedChild(idx)
		if child.Type() == "jsx_opening_element" || child.Type() == "jsx_closing_element" {
			continue
		}

		result.AddChild(conv.convert(child, contextStatement))
	}

	return result
}

// convertSelfClosing wraps the tag in an element spanning the same bytes.
func (conv *converter) convertSelfClosing(tsNode sitter.Node) *node.Node {
	opening := conv.convertTag(tsNode, node.TypeJSXOpening, node.RoleOpening)
	opening.SetProp(node.PropSelfClosing, "true")

	return node.NewBuilder().
		WithType(node.TypeJSXElement).
		WithPosition(positions(tsNode)).
		WithChildren(opening).
		Build()
}

func (conv *converter) convertTag(tsNode sitter.Node, nodeType node.Type, role node.Role) *node.Node {
	result := node.NewBuilder().
		WithType(nodeType).
		WithRoles(role).
		WithPosition(positions(tsNode)).
		Build()

	nameNode := tsNode.ChildByFieldName("name")
	named := false

	for idx := range tsNode.NamedChildCount() {
		child := tsNode.NamedChild(idx)

		isName := !named && ((!nameNode.IsNull() && sameNode(child, nameNode)) ||
			(nameNode.IsNull() && isTagNameType(child.Type())))

		if isName {
			named = true

			result.AddChild(node.WithRole(conv.convert(child, contextTagName), node.RoleName))

			continue
		}

		result.AddChild(conv.convert(child, contextAttribute))
	}

	return result
}

func (conv *converter) convertTagName(tsNode sitter.Node) *node.Node {
	switch tsNode.Type() {
	case "identifier":
		return conv.leaf(tsNode, node.TypeJSXName)
	case "jsx_namespace_name":
		return conv.leaf(tsNode, node.TypeJSXNamespacedName)
	default:
		return conv.leaf(tsNode, node.TypeJSXMemberName)
	}
}

func (conv *converter) convertAttribute(tsNode sitter.Node) *node.Node {
	result := node.NewBuilder().WithType(node.TypeJSXAttribute).WithPosition(positions(tsNode)).Build()

	for idx := range tsNode.NamedChildCount() {
		child := tsNode.NamedChild(idx)

		if idx == 0 {
			nameType := node.TypeJSXAttrName
			if child.Type() == "jsx_namespace_name" {
				nameType = node.TypeJSXNamespacedName
			}

			result.AddChild(node.WithRole(conv.leaf(child, nameType), node.RoleName))

			continue
		}

		result.AddChild(node.WithRole(conv.convert(child, contextStatement), node.RoleValue))
	}

	return result
}
