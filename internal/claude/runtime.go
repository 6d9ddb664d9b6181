// Package claude runs the review agent as a `claude` CLI subprocess and
// decodes its stream-json output into session events.
package claude

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/RevCBH/hodor/internal/config"
	"github.com/RevCBH/hodor/internal/session"
)

// stderrTail bounds how much process stderr is kept for error messages.
const stderrTail = 8 * 1024

// Runtime implements session.Runtime with the claude CLI
type Runtime struct {
	// binary is the path to the claude binary (default: "claude")
	binary string

	// Stderr, when set, also receives the process's standard error
	Stderr io.Writer

	// environ returns the base environment (default: os.Environ)
	environ func() []string
}

// NewRuntime creates a Runtime invoking binary, or "claude" when empty
func NewRuntime(binary string) *Runtime {
	if binary == "" {
		binary = config.DefaultClaudeCommand
	}
	return &Runtime{binary: binary, environ: os.Environ}
}

// Run starts claude in conv.WorkDir and blocks until it exits
func (r *Runtime) Run(ctx context.Context, conv session.Conversation, emit func(session.Event)) error {
	if strings.TrimSpace(conv.Instruction) == "" {
		return ErrEmptyPrompt
	}
	if conv.WorkDir == "" {
		return ErrEmptyWorkDir
	}

	cmd := exec.CommandContext(ctx, r.binary, buildArgs(conv)...)
	cmd.Dir = conv.WorkDir
	cmd.Env = append(r.baseEnv(), conv.Env...)

	stderr := &tailBuffer{max: stderrTail}
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(stderr, r.Stderr)
	} else {
		cmd.Stderr = stderr
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &session.StartError{Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &session.StartError{Err: err}
	}

	decodeErr := NewDecoder(emit).Decode(stdout)
	if decodeErr != nil {
		// Keep the pipe drained so the process can exit.
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("claude interrupted: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return NewExecutionError(exitErr.ExitCode(), err, stderr.String())
		}
		return fmt.Errorf("waiting for claude: %w", err)
	}
	if decodeErr != nil {
		return fmt.Errorf("reading claude stream: %w", decodeErr)
	}
	return nil
}

func (r *Runtime) baseEnv() []string {
	if r.environ == nil {
		return os.Environ()
	}
	return r.environ()
}

// buildArgs constructs the command-line arguments for the claude binary
func buildArgs(conv session.Conversation) []string {
	args := []string{
		"-p", conv.Instruction,
		"--output-format", "stream-json",
		"--verbose",
	}

	if model := config.NormalizeModel(conv.Model); model != "" {
		args = append(args, "--model", model)
	}

	// -1 means unlimited
	if conv.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(conv.MaxTurns))
	}

	if len(conv.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(conv.AllowedTools, ","))
	}

	return args
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
