package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

const waitDelay = 2 * time.Second

// Invoker runs the browser forensics tool. Create once, use many times.
type Invoker struct {
	// Command is the executable, looked up on PATH. Defaults to "python".
	Command string

	// Args precede the request flags, e.g. the script name.
	Args []string

	// Timeout bounds a single run. Zero means no timeout.
	Timeout time.Duration
}

// Response holds the captured output of one run.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ToolError reports a run that exited with a non-zero status.
type ToolError struct {
	Command  string
	ExitCode int
	Stderr   string
}

// Error implements the error interface for ToolError.
func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

// Invoke validates req and runs Command Args... -i <in> -o <out> -f <fmt>.
// Arguments are passed directly to the process, never through a shell.
// A non-zero exit returns the Response together with a *ToolError.
func (inv *Invoker) Invoke(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid browser request: %w", err)
	}

	ctxToUse := ctx
	var cancel context.CancelFunc
	if inv.Timeout > 0 {
		ctxToUse, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	command := inv.Command
	if command == "" {
		command = "python"
	}

	args := append(append([]string{}, inv.Args...), req.Args()...)
	cmd := exec.CommandContext(ctxToUse, command, args...)
	// Children that inherit stdout must not hold Wait open after a kill.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	resp := &Response{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctxToUse.Err(); ctxErr != nil {
		resp.ExitCode = -1
		return resp, fmt.Errorf("browser tool %s stopped: %w", command, ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			resp.ExitCode = exitErr.ExitCode()
			return resp, &ToolError{Command: command, ExitCode: resp.ExitCode, Stderr: resp.Stderr}
		}
		return nil, fmt.Errorf("browser tool invocation failed: %w", err)
	}

	return resp, nil
}
