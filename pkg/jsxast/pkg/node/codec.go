package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the wire encoding of a tree.
type Format string

// Supported tree encodings.
const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// Codec errors.
var (
	ErrUnknownFormat = errors.New("unknown tree format")
	ErrInvalidTree   = errors.New("invalid tree")
)

// ParseFormat maps a user-supplied name onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Encode writes the tree to w in the given format.
func Encode(w io.Writer, root *Node, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(root); err != nil {
			return fmt.Errorf("encode json tree: %w", err)
		}

		return nil
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(root); err != nil {
			return fmt.Errorf("encode msgpack tree: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Decode reads a tree from r in the given format.
func Decode(r io.Reader, format Format) (*Node, error) {
	root := &Node{}

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(root); err != nil {
			return nil, fmt.Errorf("decode json tree: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(root); err != nil {
			return nil, fmt.Errorf("decode msgpack tree: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := Validate(root); err != nil {
		return nil, err
	}

	return root, nil
}

// Validate rejects trees with nil children, wrapping ErrInvalidTree. The error
// names the parent by types and child indexes from the root, e.g.
// Program/0/ExprStmt.
func Validate(root *Node) error {
	type frame struct {
		node *Node
		path string
	}

	stack := []frame{{node: root, path: string(root.Type)}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for idx, child := range top.node.Children {
			if child == nil {
				return fmt.Errorf("%w: null child %d under %s", ErrInvalidTree, idx, top.path)
			}

			stack = append(stack, frame{node: child, path: fmt.Sprintf("%s/%d/%s", top.path, idx, child.Type)})
		}
	}

	return nil
}
