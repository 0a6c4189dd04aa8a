package transform

import (
	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
)

// Resolution is the outcome of inspecting one declaration.
type Resolution struct {
	Name      string
	Component bool
}

// ResolveComponent decides whether decl binds a component and returns its
// identifier. Function declarations are always candidates; variable
// declarations qualify only when their first declarator's initializer renders
// a markup element.
func ResolveComponent(decl *node.Node) Resolution {
	switch decl.Type {
	case node.TypeFunctionDecl:
		name := decl.ChildByRole(node.RoleName)
		if name == nil || name.Type != node.TypeIdentifier || name.Token == "" {
			return Resolution{}
		}

		return Resolution{Name: name.Token, Component: true}
	case node.TypeVarDecl:
		return resolveDeclarator(decl.ChildByType(node.TypeVarDeclarator))
	default:
		return Resolution{}
	}
}

func resolveDeclarator(declarator *node.Node) Resolution {
	if declarator == nil {
		return Resolution{}
	}

	pattern := declarator.ChildByRole(node.RoleName)
	if pattern == nil || pattern.Type != node.TypeIdentifier {
		return Resolution{}
	}

	if !initRenders(declarator.ChildByRole(node.RoleValue)) {
		return Resolution{}
	}

	return Resolution{Name: pattern.Token, Component: true}
}

func initRenders(init *node.Node) bool {
	if init == nil {
		return false
	}

	body := init.ChildByRole(node.RoleBody)
	if body == nil {
		return false
	}

	switch init.Type {
	case node.TypeArrowFunction:
		if body.Type == node.TypeBlock {
			return blockRenders(body)
		}

		return isMarkup(unwrapParen(body))
	case node.TypeFunctionExpr:
		return body.Type == node.TypeBlock && blockRenders(body)
	default:
		return false
	}
}

// blockRenders matches `return <el>`, `return (<el>)` and a bare `<el>;`
// statement anywhere in the block, reachable or not.
func blockRenders(block *node.Node) bool {
	for _, stmt := range block.Children {
		switch stmt.Type {
		case node.TypeReturn:
			if isMarkup(unwrapParen(firstExpression(stmt))) {
				return true
			}
		case node.TypeExprStmt:
			if isMarkup(firstExpression(stmt)) {
				return true
			}
		default:
		}
	}

	return false
}

func isMarkup(expr *node.Node) bool {
	return expr != nil && expr.Type == node.TypeJSXElement
}

func unwrapParen(expr *node.Node) *node.Node {
	if expr == nil || expr.Type != node.TypeParen {
		return expr
	}

	return firstExpression(expr)
}

// firstExpression returns the first child that is not a comment.
func firstExpression(parent *node.Node) *node.Node {
	for _, child := range parent.Children {
		if child.Type == node.TypeSyntax && child.Prop(node.PropSyntax) == "comment" {
			continue
		}

		return child
	}

	return nil
}
