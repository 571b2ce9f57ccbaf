// Package algo executes user-supplied coloring scripts against a graph.
package algo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Runner executes a script against serialized vertices and edges and
// returns the node label to color assignment it prints.
type Runner interface {
	Run(ctx context.Context, script []byte, verticesJSON, edgesJSON string) (map[string]string, error)
}

// PythonRunner runs scripts with a python interpreter. The script is
// written to a temp file and invoked with the vertex and edge JSON as
// its two arguments; stdout and stderr are merged.
type PythonRunner struct {
	interpreter string
	timeout     time.Duration
}

// NewPythonRunner creates a runner using the given interpreter binary.
func NewPythonRunner(interpreter string, timeout time.Duration) *PythonRunner {
	return &PythonRunner{interpreter: interpreter, timeout: timeout}
}

// Run executes the script and parses its output as a JSON object mapping
// node labels to colors. A non-zero exit or unparsable output is an error.
func (r *PythonRunner) Run(ctx context.Context, script []byte, verticesJSON, edgesJSON string) (map[string]string, error) {
	f, err := os.CreateTemp("", "algo-*.py")
	if err != nil {
		return nil, fmt.Errorf("create script file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(script); err != nil {
		f.Close()
		return nil, fmt.Errorf("write script file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close script file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.interpreter, f.Name(), verticesJSON, edgesJSON) // #nosec G204 -- interpreter comes from config, not the request
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("script timed out after %s", r.timeout)
		}
		return nil, fmt.Errorf("script failed: %s", out.String())
	}

	colors := map[string]string{}
	if err := json.Unmarshal(out.Bytes(), &colors); err != nil {
		return nil, fmt.Errorf("parse script output: %w", err)
	}

	return colors, nil
}
