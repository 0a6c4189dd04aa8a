package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameTransform = "jsx_transform"
	ToolNameTree      = "jsx_tree"
)

// MaxCodeInputBytes bounds inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

const defaultFilename = "component.tsx"

// Sentinel errors for tool input validation.
var (
	ErrEmptyCode       = errors.New("code parameter is required and must not be empty")
	ErrCodeTooLarge    = errors.New("code input exceeds maximum size")
	ErrUnsupportedFile = errors.New("filename must have a .tsx or .jsx extension")
)

// TransformInput is the input schema for jsx_transform.
type TransformInput struct {
	Code     string `json:"code"               jsonschema:"TSX or JSX source to rewrite"`
	Config   string `json:"config,omitempty"   jsonschema:"plugin configuration JSON with attrName, ignoreComponents and ignoreFiles (default: data-testid, no ignores)"`
	Diff     bool   `json:"diff,omitempty"     jsonschema:"also return a unified diff of the rewrite"`
	Filename string `json:"filename,omitempty" jsonschema:"logical file name used for ignoreFiles matching (default: component.tsx)"`
}

// TreeInput is the input schema for jsx_tree.
type TreeInput struct {
	Code     string `json:"code"               jsonschema:"TSX or JSX source to parse"`
	Filename string `json:"filename,omitempty" jsonschema:"logical file name (default: component.tsx)"`
	Query    string `json:"query,omitempty"    jsonschema:"optional node type filter (e.g. JSXOpening)"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, ToolOutput{Data: value}, nil
}

func validateCode(code string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}

func filenameOrDefault(name string) string {
	if name == "" {
		return defaultFilename
	}

	return name
}
