// Package node provides the mutable program tree shared by the TSX frontend,
// the printer, and the rewrite passes, together with traversal helpers.
package node

import (
	"crypto/sha1" //nolint:gosec // SHA1 used for content fingerprinting, not security.
	"encoding/binary"
	"fmt"
	"hash"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Role represents the slot a node occupies within its parent.
type Role string

// Type represents the kind of a node.
type Type string

// Positions represents the byte and line/col offsets for a node.
// All fields are 1-based except StartOffset/EndOffset, which are byte offsets.
type Positions struct {
	StartLine   uint `json:"start_line,omitempty"   msgpack:"start_line,omitempty"`
	StartCol    uint `json:"start_col,omitempty"    msgpack:"start_col,omitempty"`
	StartOffset uint `json:"start_offset,omitempty" msgpack:"start_offset,omitempty"`
	EndLine     uint `json:"end_line,omitempty"     msgpack:"end_line,omitempty"`
	EndCol      uint `json:"end_col,omitempty"      msgpack:"end_col,omitempty"`
	EndOffset   uint `json:"end_offset,omitempty"   msgpack:"end_offset,omitempty"`
}

// NewPositions creates a Positions value.
func NewPositions(startLine, startCol, startOffset, endLine, endCol, endOffset uint) *Positions {
	return &Positions{
		StartLine:   startLine,
		StartCol:    startCol,
		StartOffset: startOffset,
		EndLine:     endLine,
		EndCol:      endCol,
		EndOffset:   endOffset,
	}
}

// Node is the program tree node.
//
// Fields:
//
//	ID: unique node identifier (optional).
//	Type: node kind (e.g., "JSXElement", "Identifier").
//	Token: string value for leaf nodes.
//	Roles: slots this node fills in its parent (see Role).
//	Pos: source position info; nil for synthesized nodes.
//	Props: additional properties (see Prop* constants).
//	Children: child nodes in source order.
//	Modified: set when a rewrite changed this node's own content.
type Node struct {
	ID       string            `json:"id,omitempty"       msgpack:"id,omitempty"`
	Token    string            `json:"token,omitempty"    msgpack:"token,omitempty"`
	Type     Type              `json:"type,omitempty"     msgpack:"type,omitempty"`
	Roles    []Role            `json:"roles,omitempty"    msgpack:"roles,omitempty"`
	Pos      *Positions        `json:"pos,omitempty"      msgpack:"pos,omitempty"`
	Props    map[string]string `json:"props,omitempty"    msgpack:"props,omitempty"`
	Children []*Node           `json:"children,omitempty" msgpack:"children,omitempty"`
	Modified bool              `json:"modified,omitempty" msgpack:"modified,omitempty"`
}

// Builder provides a fluent interface for building Node instances.
type Builder struct {
	node *Node
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{node: &Node{}}
}

// WithType sets the node type.
func (builder *Builder) WithType(nodeType Type) *Builder {
	builder.node.Type = nodeType

	return builder
}

// WithToken sets the node token.
func (builder *Builder) WithToken(token string) *Builder {
	builder.node.Token = token

	return builder
}

// WithRoles sets the node roles.
func (builder *Builder) WithRoles(roles ...Role) *Builder {
	builder.node.Roles = roles

	return builder
}

// WithPosition sets the node position.
func (builder *Builder) WithPosition(pos *Positions) *Builder {
	builder.node.Pos = pos

	return builder
}

// WithProp sets a single property.
func (builder *Builder) WithProp(key, value string) *Builder {
	if builder.node.Props == nil {
		builder.node.Props = make(map[string]string)
	}

	builder.node.Props[key] = value

	return builder
}

// WithChildren appends children, skipping nil entries.
func (builder *Builder) WithChildren(children ...*Node) *Builder {
	for _, child := range children {
		if child != nil {
			builder.node.Children = append(builder.node.Children, child)
		}
	}

	return builder
}

// Build returns the built Node.
func (builder *Builder) Build() *Node {
	return builder.node
}

// HasRole reports whether the node fills the given role.
func (targetNode *Node) HasRole(role Role) bool {
	if targetNode == nil {
		return false
	}

	return slices.Contains(targetNode.Roles, role)
}

// ChildByRole returns the first child filling role, or nil.
func (targetNode *Node) ChildByRole(role Role) *Node {
	if targetNode == nil {
		return nil
	}

	for _, child := range targetNode.Children {
		if child.HasRole(role) {
			return child
		}
	}

	return nil
}

// ChildrenByRole returns every child filling role.
func (targetNode *Node) ChildrenByRole(role Role) []*Node {
	if targetNode == nil {
		return nil
	}

	var result []*Node

	for _, child := range targetNode.Children {
		if child.HasRole(role) {
			result = append(result, child)
		}
	}

	return result
}

// ChildByType returns the first child of the given type, or nil.
func (targetNode *Node) ChildByType(nodeType Type) *Node {
	if targetNode == nil {
		return nil
	}

	for _, child := range targetNode.Children {
		if child.Type == nodeType {
			return child
		}
	}

	return nil
}

// Prop returns a property value or "".
func (targetNode *Node) Prop(key string) string {
	if targetNode == nil || targetNode.Props == nil {
		return ""
	}

	return targetNode.Props[key]
}

// SetProp sets a property, allocating the map on first use.
func (targetNode *Node) SetProp(key, value string) {
	if targetNode.Props == nil {
		targetNode.Props = make(map[string]string)
	}

	targetNode.Props[key] = value
}

// Touch marks the node as rewritten so printers regenerate its text.
func (targetNode *Node) Touch() {
	targetNode.Modified = true
}

// AddChild appends a child node.
func (targetNode *Node) AddChild(child *Node) {
	targetNode.Children = append(targetNode.Children, child)
}

// Find returns all nodes in the tree (including root) for which predicate(node) is true.
// Traversal is pre-order. Returns nil if n is nil.
func (targetNode *Node) Find(predicate func(*Node) bool) []*Node {
	if targetNode == nil {
		return nil
	}

	var result []*Node

	targetNode.VisitPreOrder(func(visited *Node) {
		if predicate(visited) {
			result = append(result, visited)
		}
	})

	return result
}

// VisitPreOrder visits all nodes in pre-order (root, then children left-to-right).
func (targetNode *Node) VisitPreOrder(fn func(*Node)) {
	if targetNode == nil {
		return
	}

	stack := []*Node{targetNode}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fn(curr)

		for idx := len(curr.Children) - 1; idx >= 0; idx-- {
			stack = append(stack, curr.Children[idx])
		}
	}
}

type postOrderFrame struct {
	node     *Node
	childIdx int
}

// VisitPostOrder visits all nodes in post-order (children left-to-right, then root).
func (targetNode *Node) VisitPostOrder(fn func(*Node)) {
	if targetNode == nil {
		return
	}

	stack := []postOrderFrame{{node: targetNode}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.childIdx < len(top.node.Children) {
			child := top.node.Children[top.childIdx]
			top.childIdx++

			stack = append(stack, postOrderFrame{node: child})

			continue
		}

		fn(top.node)
		stack = stack[:len(stack)-1]
	}
}

// Count returns the number of nodes in the tree.
func (targetNode *Node) Count() int {
	total := 0

	targetNode.VisitPreOrder(func(*Node) { total++ })

	return total
}

// Clone returns a deep copy of the tree.
func (targetNode *Node) Clone() *Node {
	if targetNode == nil {
		return nil
	}

	clone := &Node{
		ID:       targetNode.ID,
		Token:    targetNode.Token,
		Type:     targetNode.Type,
		Modified: targetNode.Modified,
	}

	if targetNode.Roles != nil {
		clone.Roles = slices.Clone(targetNode.Roles)
	}

	if targetNode.Pos != nil {
		pos := *targetNode.Pos
		clone.Pos = &pos
	}

	if targetNode.Props != nil {
		clone.Props = maps.Clone(targetNode.Props)
	}

	if len(targetNode.Children) > 0 {
		clone.Children = make([]*Node, len(targetNode.Children))

		for idx, child := range targetNode.Children {
			clone.Children[idx] = child.Clone()
		}
	}

	return clone
}

// Equal reports whether two trees have the same structure and content.
// IDs and the Modified flag are ignored.
func Equal(left, right *Node) bool {
	if left == nil || right == nil {
		return left == right
	}

	if left.Type != right.Type || left.Token != right.Token {
		return false
	}

	if !slices.Equal(left.Roles, right.Roles) || !maps.Equal(left.Props, right.Props) {
		return false
	}

	if !equalPositions(left.Pos, right.Pos) {
		return false
	}

	if len(left.Children) != len(right.Children) {
		return false
	}

	for idx := range left.Children {
		if !Equal(left.Children[idx], right.Children[idx]) {
			return false
		}
	}

	return true
}

func equalPositions(left, right *Positions) bool {
	if left == nil || right == nil {
		return left == right
	}

	return *left == *right
}

// ToMap converts the node to a map representation.
func (targetNode *Node) ToMap() map[string]any {
	if targetNode == nil {
		return nil
	}

	result := map[string]any{
		"type": targetNode.Type,
	}

	if targetNode.ID != "" {
		result["id"] = targetNode.ID
	}

	if targetNode.Token != "" {
		result["token"] = targetNode.Token
	}

	if len(targetNode.Props) > 0 {
		result["props"] = targetNode.Props
	}

	if len(targetNode.Roles) > 0 {
		roleStrings := make([]string, len(targetNode.Roles))

		for idx, role := range targetNode.Roles {
			roleStrings[idx] = string(role)
		}

		result["roles"] = roleStrings
	}

	if targetNode.Pos != nil {
		result["pos"] = map[string]any{
			"start_line":   targetNode.Pos.StartLine,
			"start_col":    targetNode.Pos.StartCol,
			"start_offset": targetNode.Pos.StartOffset,
			"end_line":     targetNode.Pos.EndLine,
			"end_col":      targetNode.Pos.EndCol,
			"end_offset":   targetNode.Pos.EndOffset,
		}
	}

	if targetNode.Modified {
		result["modified"] = true
	}

	if len(targetNode.Children) > 0 {
		children := make([]map[string]any, len(targetNode.Children))

		for idx, child := range targetNode.Children {
			children[idx] = child.ToMap()
		}

		result["children"] = children
	}

	return result
}

// String returns a compact representation of the node.
func (targetNode *Node) String() string {
	if targetNode == nil {
		return "nil"
	}

	var buf strings.Builder

	buf.WriteString("Node{Type:")
	buf.WriteString(string(targetNode.Type))

	if targetNode.Token != "" {
		buf.WriteString(",Token:")
		buf.WriteString(targetNode.Token)
	}

	if len(targetNode.Roles) > 0 {
		buf.WriteString(",Roles:[")

		for idx, role := range targetNode.Roles {
			if idx > 0 {
				buf.WriteString(" ")
			}

			buf.WriteString(string(role))
		}

		buf.WriteString("]")
	}

	if len(targetNode.Props) > 0 {
		fmt.Fprintf(&buf, ",Props:%v", targetNode.Props)
	}

	if len(targetNode.Children) > 0 {
		buf.WriteString(",Children:")
		buf.WriteString(strconv.Itoa(len(targetNode.Children)))
	}

	buf.WriteString("}")

	return buf.String()
}

// Hash buffer size constants.
const (
	hashBufSize  = 8
	posBufFields = 6
)

// AssignStableIDs assigns a stable id to each node in the tree based on its content and position.
func (targetNode *Node) AssignStableIDs() {
	if targetNode == nil {
		return
	}

	assignStableIDRecursive(targetNode)
}

func assignStableIDRecursive(targetNode *Node) {
	hasher := sha1.New() //nolint:gosec // SHA1 used for content fingerprinting, not security.

	writeNodeContentToHash(hasher, targetNode)

	for _, child := range targetNode.Children {
		assignStableIDRecursive(child)
		hasher.Write([]byte(child.ID))
	}

	targetNode.ID = fmt.Sprintf("%x", hasher.Sum(nil)[:hashBufSize])
}

func writeNodeContentToHash(hasher hash.Hash, targetNode *Node) {
	hasher.Write([]byte(targetNode.Type))
	hasher.Write([]byte(targetNode.Token))

	if targetNode.Pos != nil {
		buf := make([]byte, hashBufSize*posBufFields)

		binary.LittleEndian.PutUint64(buf[0:8], uint64(targetNode.Pos.StartLine))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(targetNode.Pos.StartCol))
		binary.LittleEndian.PutUint64(buf[16:24], uint64(targetNode.Pos.StartOffset))
		binary.LittleEndian.PutUint64(buf[24:32], uint64(targetNode.Pos.EndLine))
		binary.LittleEndian.PutUint64(buf[32:40], uint64(targetNode.Pos.EndCol))
		binary.LittleEndian.PutUint64(buf[40:48], uint64(targetNode.Pos.EndOffset))

		hasher.Write(buf)
	}

	for _, role := range targetNode.Roles {
		hasher.Write([]byte(role))
	}
}
