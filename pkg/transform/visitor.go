package transform

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
)

// state is the traversal state threaded through visit. It is a value: each
// call receives the state in effect before the node and returns the state in
// effect after it.
type state struct {
	component string
	inChild   bool
	// tracked is the tag name of the last root element; used for
	// name-matched boundaries.
	tracked string
	// owner is the element that opened the current boundary; used for
	// identity-matched boundaries.
	owner *node.Node
}

type walker struct {
	cfg         Config
	rules       Rules
	nameMatched bool
	result      *Result
}

func (w *walker) visit(current *node.Node, st state) (state, error) {
	switch current.Type {
	case node.TypeFunctionDecl:
		if w.rules.renameFunction(current) {
			w.result.RenamedFunctions++
		}

		st = w.resolve(current, st)
	case node.TypeVarDecl:
		st = w.resolve(current, st)
	case node.TypeCall:
		if w.rules.renameCallee(current) {
			w.result.RenamedCalls++
		}
	case node.TypeJSXElement:
		return w.visitElement(current, st)
	default:
	}

	return w.visitChildren(current.Children, st)
}

func (w *walker) visitChildren(children []*node.Node, st state) (state, error) {
	var err error

	for _, child := range children {
		st, err = w.visit(child, st)
		if err != nil {
			return st, err
		}
	}

	return st, nil
}

// resolve replaces the current component name only outside a boundary.
func (w *walker) resolve(decl *node.Node, st state) state {
	if st.inChild {
		return st
	}

	if res := ResolveComponent(decl); res.Component {
		st.component = res.Name
	}

	return st
}

func (w *walker) visitElement(elem *node.Node, st state) (state, error) {
	opening := elem.Opening()
	if opening == nil {
		return w.visitChildren(elem.Children, st)
	}

	root := !st.inChild

	next, err := w.visitOpening(elem, opening, st)
	if err != nil {
		return next, err
	}

	if err = w.visitAttributeValues(opening, next); err != nil {
		return next, err
	}

	next, err = w.visitChildren(elem.ElementChildren(), next)
	if err != nil {
		return next, err
	}

	if closing := elem.Closing(); closing != nil && w.nameMatched {
		next = closeByName(closing, next)
	}

	if !w.nameMatched && root && next.owner == elem {
		next.inChild = false
		next.owner = nil
	}

	return next, nil
}

// visitOpening applies the attribute rules and, at a root, injection and the
// boundary transition.
func (w *walker) visitOpening(elem, opening *node.Node, st state) (state, error) {
	for _, attr := range opening.Attributes() {
		if w.rules.normalizeBoolean(attr) {
			w.result.Normalized++
		}

		// The diagnostic attribute is never renamed, or the next pass would
		// inject it again.
		if attr.AttrName() != w.cfg.AttrName && w.rules.renameAttr(attr) {
			w.result.RenamedAttrs++
		}
	}

	if st.inChild {
		return st, nil
	}

	hasAttr := opening.FindAttr(w.cfg.AttrName) != nil

	if !hasAttr && st.component != "" && !w.cfg.ignoresComponent(st.component) {
		value := KebabID(st.component)
		opening.AddChild(node.NewStringAttr(w.cfg.AttrName, value))

		w.result.Injected = append(w.result.Injected, Injection{
			Component: st.component,
			Value:     value,
			Element:   tagLabel(opening),
			Pos:       opening.Pos,
		})
	}

	if !opening.IsSelfClosing() {
		st.inChild = true
		st.owner = elem
	}

	name := opening.TagName()
	if name == nil || name.Type != node.TypeJSXName {
		return st, &UnsupportedNameError{
			Name:      tagLabel(opening),
			Kind:      nameKind(name),
			Component: st.component,
			Pos:       opening.Pos,
		}
	}

	st.tracked = name.Token

	return st, nil
}

// visitAttributeValues descends into attribute values as descendants; the
// resulting state is discarded.
func (w *walker) visitAttributeValues(opening *node.Node, st state) error {
	inner := st
	inner.inChild = true

	for _, attr := range opening.Attributes() {
		var values []*node.Node

		switch attr.Type {
		case node.TypeJSXSpreadAttribute:
			values = attr.Children
		default:
			if value := attr.AttrValue(); value != nil && value.Type != node.TypeStringLiteral {
				values = []*node.Node{value}
			}
		}

		if _, err := w.visitChildren(values, inner); err != nil {
			return err
		}
	}

	return nil
}

func closeByName(closing *node.Node, st state) state {
	name := closing.TagName()
	if name != nil && name.Type == node.TypeJSXName && name.Token == st.tracked {
		st.inChild = false
		st.owner = nil
	}

	return st
}

func tagLabel(tag *node.Node) string {
	if name := tag.TagName(); name != nil {
		return name.Token
	}

	return ""
}

func nameKind(name *node.Node) node.Type {
	if name == nil {
		return ""
	}

	return name.Type
}

// ErrUnsupportedElementName reports a root element whose tag name is not a simple identifier.
var ErrUnsupportedElementName = errors.New("unsupported element name")

// UnsupportedNameError is returned when a root element is named with a
// member-style or namespaced tag. Rewrites made before it stay applied.
type UnsupportedNameError struct {
	Name      string
	Kind      node.Type
	Component string
	Pos       *node.Positions
}

func (e *UnsupportedNameError) Error() string {
	location := ""
	if e.Pos != nil {
		location = fmt.Sprintf(" at %d:%d", e.Pos.StartLine, e.Pos.StartCol)
	}

	return fmt.Sprintf("%s: <%s> (%s)%s", ErrUnsupportedElementName, e.Name, e.Kind, location)
}

func (e *UnsupportedNameError) Unwrap() error {
	return ErrUnsupportedElementName
}
