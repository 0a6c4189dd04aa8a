package jsxast

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
)

// ErrPositionRange is returned when a node's span does not fit the source buffer.
var ErrPositionRange = errors.New("node position outside source")

// Print renders root back to source text. Untouched spans are copied from
// source verbatim, touched nodes are regenerated, and nodes without positions
// are generated where they sit among their siblings.
func Print(root *node.Node, source []byte) ([]byte, error) {
	var buf bytes.Buffer

	printer := &sourcePrinter{source: source, out: &buf}

	if err := printer.print(root); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Generate renders a tree without consulting any source buffer.
func Generate(root *node.Node) string {
	var sb strings.Builder

	generate(&sb, root)

	return sb.String()
}

type sourcePrinter struct {
	source []byte
	out    *bytes.Buffer
}

func (printer *sourcePrinter) span(start, end uint) error {
	if start > end || end > uint(len(printer.source)) {
		return fmt.Errorf("%w: [%d,%d) of %d bytes", ErrPositionRange, start, end, len(printer.source))
	}

	printer.out.Write(printer.source[start:end])

	return nil
}

func (printer *sourcePrinter) print(current *node.Node) error {
	if current == nil {
		return nil
	}

	if current.Pos == nil || current.Modified {
		var sb strings.Builder

		generate(&sb, current)
		printer.out.WriteString(sb.String())

		return nil
	}

	cursor := current.Pos.StartOffset

	for _, child := range current.Children {
		if child.Pos == nil {
			printer.out.WriteString(insertionPrefix(current, child))

			if err := printer.print(child); err != nil {
				return err
			}

			continue
		}

		if child.Pos.StartOffset < cursor {
			return fmt.Errorf("%w: child starts at %d before %d", ErrPositionRange, child.Pos.StartOffset, cursor)
		}

		if err := printer.span(cursor, child.Pos.StartOffset); err != nil {
			return err
		}

		if err := printer.print(child); err != nil {
			return err
		}

		cursor = child.Pos.EndOffset
	}

	return printer.span(cursor, current.Pos.EndOffset)
}

// insertionPrefix returns the separator written before a generated child.
func insertionPrefix(parent, child *node.Node) string {
	switch {
	case parent.Type == node.TypeJSXOpening:
		return " "
	case parent.Type == node.TypeJSXAttribute && child.HasRole(node.RoleValue):
		return "="
	default:
		return ""
	}
}

func generate(sb *strings.Builder, current *node.Node) {
	if current == nil {
		return
	}

	switch current.Type {
	case node.TypeProgram:
		generateJoined(sb, current.Children, "\n")
	case node.TypeFunctionDecl, node.TypeFunctionExpr:
		generateFunction(sb, current)
	case node.TypeVarDecl:
		sb.WriteString(current.Prop(node.PropKind))
		sb.WriteString(" ")
		generateJoined(sb, current.Children, ", ")
	case node.TypeVarDeclarator:
		generate(sb, current.ChildByRole(node.RoleName))

		if init := current.ChildByRole(node.RoleValue); init != nil {
			sb.WriteString(" = ")
			generate(sb, init)
		}
	case node.TypeArrowFunction:
		sb.WriteString("(")
		generateJoined(sb, current.ChildrenByRole(node.RoleParameter), ", ")
		sb.WriteString(") => ")
		generate(sb, current.ChildByRole(node.RoleBody))
	case node.TypeBlock:
		generateBlock(sb, current)
	case node.TypeReturn:
		sb.WriteString("return")

		if len(current.Children) > 0 {
			sb.WriteString(" ")
			generate(sb, current.Children[0])
		}
	case node.TypeExprStmt:
		generateJoined(sb, current.Children, " ")
	case node.TypeParen:
		sb.WriteString("(")
		generateJoined(sb, current.Children, " ")
		sb.WriteString(")")
	case node.TypeCall:
		generate(sb, current.ChildByRole(node.RoleCallee))
		sb.WriteString("(")
		generateJoined(sb, current.ChildrenByRole(node.RoleArgument), ", ")
		sb.WriteString(")")
	case node.TypeStringLiteral:
		sb.WriteString(quote(current))
	case node.TypeJSXElement:
		generateJoined(sb, current.Children, "")
	case node.TypeJSXFragment:
		sb.WriteString("<>")
		generateJoined(sb, current.Children, "")
		sb.WriteString("</>")
	case node.TypeJSXOpening:
		generateOpening(sb, current)
	case node.TypeJSXClosing:
		sb.WriteString("</")
		generate(sb, current.TagName())
		sb.WriteString(">")
	case node.TypeJSXAttribute:
		generate(sb, current.ChildByRole(node.RoleName))

		if value := current.AttrValue(); value != nil {
			sb.WriteString("=")
			generate(sb, value)
		}
	case node.TypeJSXSpreadAttribute:
		sb.WriteString("{...")
		generateJoined(sb, current.Children, " ")
		sb.WriteString("}")
	case node.TypeJSXExprContainer:
		sb.WriteString("{")
		generateJoined(sb, current.Children, " ")
		sb.WriteString("}")
	default:
		if current.Token != "" || len(current.Children) == 0 {
			sb.WriteString(current.Token)

			return
		}

		generateJoined(sb, current.Children, " ")
	}
}

func generateJoined(sb *strings.Builder, nodes []*node.Node, sep string) {
	for idx, child := range nodes {
		if idx > 0 {
			sb.WriteString(sep)
		}

		generate(sb, child)
	}
}

func generateFunction(sb *strings.Builder, current *node.Node) {
	sb.WriteString("function")

	if name := current.ChildByRole(node.RoleName); name != nil {
		sb.WriteString(" ")
		generate(sb, name)
	}

	sb.WriteString("(")
	generateJoined(sb, current.ChildrenByRole(node.RoleParameter), ", ")
	sb.WriteString(") ")
	generate(sb, current.ChildByRole(node.RoleBody))
}

func generateBlock(sb *strings.Builder, current *node.Node) {
	if len(current.Children) == 0 {
		sb.WriteString("{}")

		return
	}

	sb.WriteString("{ ")
	generateJoined(sb, current.Children, " ")
	sb.WriteString(" }")
}

func generateOpening(sb *strings.Builder, current *node.Node) {
	sb.WriteString("<")
	generate(sb, current.TagName())

	for _, attr := range current.Attributes() {
		sb.WriteString(" ")
		generate(sb, attr)
	}

	if current.IsSelfClosing() {
		sb.WriteString(" />")

		return
	}

	sb.WriteString(">")
}

// quote wraps a string literal's value, keeping the quote style of its source spelling.
func quote(current *node.Node) string {
	quoteChar := `"`

	raw := current.Prop(node.PropRaw)
	if strings.HasPrefix(raw, "'") || strings.Contains(current.Token, `"`) {
		quoteChar = "'"
	}

	return quoteChar + current.Token + quoteChar
}
