package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
)

func (s *Server) handleTree(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input TreeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateCode(input.Code); err != nil {
		return errorResult(err)
	}

	filename := filenameOrDefault(input.Filename)
	if !s.parser.IsSupported(filename, nil) {
		return errorResult(fmt.Errorf("%w: %s", ErrUnsupportedFile, filename))
	}

	root, err := s.parser.Parse(ctx, filename, []byte(input.Code))
	if err != nil {
		return errorResult(err)
	}

	root.AssignStableIDs()

	if input.Query == "" {
		return jsonResult(root.ToMap())
	}

	want, err := node.ParseType(input.Query)
	if err != nil {
		return errorResult(err)
	}

	matches := root.Find(func(candidate *node.Node) bool {
		return candidate.Type == want
	})

	out := make([]map[string]any, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.ToMap())
	}

	return jsonResult(out)
}
