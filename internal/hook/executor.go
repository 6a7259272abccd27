package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Executor runs hooks with a timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates a new Executor with the specified timeout in milliseconds.
func NewExecutor(timeoutMs int) *Executor {
	return &Executor{
		timeout: time.Duration(timeoutMs) * time.Millisecond,
	}
}

// Execute runs the hook with req on stdin and parses its stdout as a Response.
// The process is killed when ctx is done or the executor's timeout passes.
func (e *Executor) Execute(ctx context.Context, h *Hook, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	cmd := exec.CommandContext(ctx, h.Executable)
	cmd.Dir = h.Path
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("hook %s timed out after %s", h.Manifest.Name, e.timeout)
	}

	if err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("hook %s failed: %w, stderr: %s", h.Manifest.Name, err, stderr.String())
		}
		return nil, fmt.Errorf("hook %s failed: %w", h.Manifest.Name, err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to parse hook response: %w, stdout: %s", err, stdout.String())
	}

	return &response, nil
}
