package node

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/levenshtein"
)

// Program tree node type constants.
const (
	TypeProgram       Type = "Program"
	TypeFunctionDecl  Type = "FunctionDecl"
	TypeVarDecl       Type = "VarDecl"
	TypeVarDeclarator Type = "VarDeclarator"
	TypeArrowFunction Type = "ArrowFunction"
	TypeFunctionExpr  Type = "FunctionExpr"
	TypeBlock         Type = "Block"
	TypeReturn        Type = "Return"
	TypeExprStmt      Type = "ExprStmt"
	TypeParen         Type = "Paren"
	TypeCall          Type = "Call"
	TypeIdentifier    Type = "Identifier"
	TypeStringLiteral Type = "StringLiteral"
	TypeSyntax        Type = "Syntax"
)

// Markup node type constants.
const (
	TypeJSXElement         Type = "JSXElement"
	TypeJSXFragment        Type = "JSXFragment"
	TypeJSXOpening         Type = "JSXOpening"
	TypeJSXClosing         Type = "JSXClosing"
	TypeJSXName            Type = "JSXName"
	TypeJSXMemberName      Type = "JSXMemberName"
	TypeJSXNamespacedName  Type = "JSXNamespacedName"
	TypeJSXAttribute       Type = "JSXAttribute"
	TypeJSXAttrName        Type = "JSXAttrName"
	TypeJSXSpreadAttribute Type = "JSXSpreadAttribute"
	TypeJSXExprContainer   Type = "JSXExprContainer"
	TypeJSXText            Type = "JSXText"
)

// Role constants label a child's slot within its parent.
const (
	RoleName      Role = "Name"
	RoleValue     Role = "Value"
	RoleBody      Role = "Body"
	RoleParameter Role = "Parameter"
	RoleCallee    Role = "Callee"
	RoleArgument  Role = "Argument"
	RoleOpening   Role = "Opening"
	RoleClosing   Role = "Closing"
)

// Property keys.
const (
	// PropKind holds the declaration keyword of a VarDecl (const, let, var).
	PropKind = "kind"
	// PropSelfClosing is "true" on a JSXOpening written as <x />.
	PropSelfClosing = "self_closing"
	// PropRaw holds the source spelling of a StringLiteral, quotes included.
	PropRaw = "raw"
	// PropSyntax holds the grammar node type of a Syntax node.
	PropSyntax = "syntax"
)

// IsElementName reports whether t is one of the JSX tag-name kinds.
func IsElementName(t Type) bool {
	return t == TypeJSXName || t == TypeJSXMemberName || t == TypeJSXNamespacedName
}

// ErrUnknownType is returned by ParseType for a name that is not a node type.
var ErrUnknownType = errors.New("unknown node type")

const maxSuggestDistance = 3

var knownTypes = []Type{
	TypeProgram, TypeFunctionDecl, TypeVarDecl, TypeVarDeclarator, TypeArrowFunction,
	TypeFunctionExpr, TypeBlock, TypeReturn, TypeExprStmt, TypeParen, TypeCall,
	TypeIdentifier, TypeStringLiteral, TypeSyntax,
	TypeJSXElement, TypeJSXFragment, TypeJSXOpening, TypeJSXClosing, TypeJSXName,
	TypeJSXMemberName, TypeJSXNamespacedName, TypeJSXAttribute, TypeJSXAttrName,
	TypeJSXSpreadAttribute, TypeJSXExprContainer, TypeJSXText,
}

// Types returns every node type in declaration order.
func Types() []Type {
	return slices.Clone(knownTypes)
}

// ParseType maps name onto a node type. Unknown names yield ErrUnknownType
// with the closest known type as a hint.
func ParseType(name string) (Type, error) {
	if slices.Contains(knownTypes, Type(name)) {
		return Type(name), nil
	}

	names := make([]string, len(knownTypes))
	for idx, known := range knownTypes {
		names[idx] = string(known)
	}

	if hint, ok := levenshtein.Suggest(name, names, maxSuggestDistance); ok {
		return "", fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownType, name, hint)
	}

	return "", fmt.Errorf("%w %q", ErrUnknownType, name)
}
