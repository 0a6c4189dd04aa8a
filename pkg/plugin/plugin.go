// Package plugin is the host-facing entry point: it decodes the host's strict
// JSON configuration and runs one transform over a program tree.
package plugin

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/transform"
)

// Metadata is what the host supplies alongside the program tree.
type Metadata struct {
	// Filename is the logical path of the unit; empty for anonymous input.
	Filename string
	// Config is the raw plugin configuration JSON.
	Config []byte
}

// Process decodes metadata.Config and rewrites program in place. A
// configuration failure returns before the tree is touched.
func Process(ctx context.Context, program *node.Node, metadata Metadata, opts ...transform.Option) (transform.Result, error) {
	cfg, err := transform.ParseConfig(metadata.Config)
	if err != nil {
		return transform.Result{Filename: metadata.Filename}, fmt.Errorf("plugin config: %w", err)
	}

	return transform.New(cfg, opts...).Transform(ctx, metadata.Filename, program)
}
