package node

// Opening returns the opening tag of a JSXElement, or nil.
func (targetNode *Node) Opening() *Node {
	if targetNode == nil || targetNode.Type != TypeJSXElement {
		return nil
	}

	return targetNode.ChildByRole(RoleOpening)
}

// Closing returns the closing tag of a JSXElement, or nil when self-closing.
func (targetNode *Node) Closing() *Node {
	if targetNode == nil || targetNode.Type != TypeJSXElement {
		return nil
	}

	return targetNode.ChildByRole(RoleClosing)
}

// ElementChildren returns the content children of a JSXElement or JSXFragment,
// excluding the opening and closing tags.
func (targetNode *Node) ElementChildren() []*Node {
	if targetNode == nil {
		return nil
	}

	result := make([]*Node, 0, len(targetNode.Children))

	for _, child := range targetNode.Children {
		if child.HasRole(RoleOpening) || child.HasRole(RoleClosing) {
			continue
		}

		result = append(result, child)
	}

	return result
}

// IsSelfClosing reports whether an opening tag was written as <x />.
func (targetNode *Node) IsSelfClosing() bool {
	return targetNode.Prop(PropSelfClosing) == "true"
}

// TagName returns the name node of an opening or closing tag.
func (targetNode *Node) TagName() *Node {
	if targetNode == nil {
		return nil
	}

	for _, child := range targetNode.Children {
		if child.HasRole(RoleName) && IsElementName(child.Type) {
			return child
		}
	}

	return nil
}

// Attributes returns the JSXAttribute and JSXSpreadAttribute children of an opening tag.
func (targetNode *Node) Attributes() []*Node {
	if targetNode == nil {
		return nil
	}

	var result []*Node

	for _, child := range targetNode.Children {
		if child.Type == TypeJSXAttribute || child.Type == TypeJSXSpreadAttribute {
			result = append(result, child)
		}
	}

	return result
}

// AttrName returns the spelled name of a JSXAttribute, or "".
func (targetNode *Node) AttrName() string {
	if targetNode == nil || targetNode.Type != TypeJSXAttribute {
		return ""
	}

	name := targetNode.ChildByRole(RoleName)
	if name == nil {
		return ""
	}

	return name.Token
}

// AttrValue returns the value node of a JSXAttribute, or nil for a bare attribute.
func (targetNode *Node) AttrValue() *Node {
	if targetNode == nil || targetNode.Type != TypeJSXAttribute {
		return nil
	}

	return targetNode.ChildByRole(RoleValue)
}

// FindAttr returns the first attribute of an opening tag spelled name, or nil.
func (targetNode *Node) FindAttr(name string) *Node {
	for _, attr := range targetNode.Attributes() {
		if attr.Type == TypeJSXAttribute && attr.AttrName() == name {
			return attr
		}
	}

	return nil
}
