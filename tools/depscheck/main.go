// Command depscheck fails when a package imports across a forbidden
// boundary. Network packages may only reach the simulation through
// internal/sim commands and internal/notify messages.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type packageInfo struct {
	ImportPath string
	Imports    []string
}

type rule struct {
	from      string
	forbidden []string
}

var rules = []rule{
	{
		from: "voxelfront/server/internal/net",
		forbidden: []string{
			"voxelfront/server/internal/world",
			"voxelfront/server/internal/combat",
			"voxelfront/server/internal/inventory",
			"voxelfront/server/internal/terrain",
			"voxelfront/server/internal/physics",
		},
	},
	{
		from:      "voxelfront/server/internal/combat",
		forbidden: []string{"voxelfront/server/internal/world", "voxelfront/server/internal/notify"},
	},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	violations, err := check(bytes.NewReader(output), rules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "depscheck: %v\n", err)
		os.Exit(1)
	}
	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

// check decodes a `go list -json` stream and reports every import that
// breaks a rule, sorted.
func check(r io.Reader, rules []rule) ([]string, error) {
	decoder := json.NewDecoder(r)
	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode package info: %w", err)
		}
		for _, rule := range rules {
			if !within(pkg.ImportPath, rule.from) {
				continue
			}
			for _, imp := range pkg.Imports {
				for _, forbidden := range rule.forbidden {
					if within(imp, forbidden) {
						violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
					}
				}
			}
		}
	}
	sort.Strings(violations)
	return violations, nil
}

func within(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}
