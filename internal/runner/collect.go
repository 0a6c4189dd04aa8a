package runner

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/src-d/enry/v2"
)

// ErrNoFiles is returned by Collect when no supported file was found.
var ErrNoFiles = errors.New("no supported source files found")

// Collect expands paths into the sorted list of supported files. Directories
// are walked recursively, skipping hidden and vendored directories. Files named
// explicitly only need a supported extension.
func (r *Runner) Collect(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]struct{})

	var files []string

	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}

		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			if slices.Contains(r.parser.Extensions(), extension(root)) {
				add(filepath.Clean(root))
			}

			continue
		}

		err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}

			if entry.IsDir() {
				if path != root && SkipDir(path, entry.Name()) {
					return filepath.SkipDir
				}

				return nil
			}

			if r.parser.IsSupported(path, nil) {
				add(path)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	slices.Sort(files)

	return files, nil
}

// SkipDir reports hidden directories and the vendored trees enry knows
// about, such as node_modules.
func SkipDir(path, name string) bool {
	if len(name) > 1 && name[0] == '.' {
		return true
	}

	return enry.IsVendor(filepath.ToSlash(path) + "/")
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// binarySniffLength bounds the prefix searched for a NUL byte, as git does.
const binarySniffLength = 8000

// isBinary reports whether a NUL byte appears near the start of data.
func isBinary(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), binarySniffLength)], 0) >= 0
}
