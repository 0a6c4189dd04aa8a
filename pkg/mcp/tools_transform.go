package mcp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/jsxtestid/internal/runner"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/plugin"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/transform"
)

const defaultPluginConfig = `{"attrName":"data-testid","ignoreComponents":[],"ignoreFiles":[]}`

// TransformOutput is the jsx_transform result payload.
type TransformOutput struct {
	Output  string           `json:"output"`
	Changed bool             `json:"changed"`
	Result  transform.Result `json:"result"`
	Diff    string           `json:"diff,omitempty"`
}

func (s *Server) handleTransform(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input TransformInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateCode(input.Code); err != nil {
		return errorResult(err)
	}

	filename := filenameOrDefault(input.Filename)
	if !s.parser.IsSupported(filename, nil) {
		return errorResult(fmt.Errorf("%w: %s", ErrUnsupportedFile, filename))
	}

	config := input.Config
	if config == "" {
		config = defaultPluginConfig
	}

	key := cacheKey(filename, config, input.Diff, input.Code)
	if cached, ok := s.results.Get(key); ok {
		return jsonResult(cached)
	}

	source := []byte(input.Code)

	program, err := s.parser.Parse(ctx, filename, source)
	if err != nil {
		return errorResult(err)
	}

	result, err := plugin.Process(ctx, program, plugin.Metadata{Filename: filename, Config: []byte(config)}, s.options...)
	if err != nil {
		return errorResult(err)
	}

	output, err := jsxast.Print(program, source)
	if err != nil {
		return errorResult(fmt.Errorf("print %s: %w", filename, err))
	}

	payload := TransformOutput{
		Output:  string(output),
		Changed: string(output) != input.Code,
		Result:  result,
	}

	if input.Diff {
		payload.Diff = runner.UnifiedDiff(filename, source, output)
	}

	s.results.Put(key, payload)

	return jsonResult(payload)
}

// cacheKey digests every input that shapes a transform response.
func cacheKey(filename, config string, diff bool, code string) string {
	hasher := sha256.New()

	for _, part := range []string{filename, config, strconv.FormatBool(diff), code} {
		hasher.Write([]byte(part))
		hasher.Write([]byte{0})
	}

	return hex.EncodeToString(hasher.Sum(nil))
}

func outputSize(out TransformOutput) int64 {
	return int64(len(out.Output) + len(out.Diff))
}
