package cargo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/foamium/cargo-sources/pkg/observability"
)

// Runner starts external commands on behalf of a [Client].
type Runner interface {
	// Run executes name with args in dir, streaming its output to the
	// runner's writers. It returns once the process has exited.
	Run(ctx context.Context, dir, name string, args ...string) error

	// Output executes name with args in dir and returns its standard output.
	// On a non-zero exit the returned error carries the captured stderr.
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner is a [Runner] backed by os/exec.
type ExecRunner struct {
	Stdout io.Writer // destination for Run's stdout (default os.Stdout)
	Stderr io.Writer // destination for Run's stderr (default os.Stderr)
	Env    []string  // extra environment entries appended to os.Environ
}

// NewExecRunner returns a runner whose children share this process's
// standard output and error.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements [Runner].
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := r.command(ctx, dir, name, args)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	return observe(ctx, name, args, cmd.Run)
}

// Output implements [Runner].
func (r *ExecRunner) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := r.command(ctx, dir, name, args)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := observe(ctx, name, args, cmd.Run)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &CommandError{Err: exitErr, Stderr: strings.TrimSpace(stderr.String())}
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

func (r *ExecRunner) command(ctx context.Context, dir, name string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	return cmd
}

func observe(ctx context.Context, name string, args []string, run func() error) error {
	hooks := observability.Command()
	hooks.OnCommandStart(ctx, name, args)
	start := time.Now()
	err := run()
	hooks.OnCommandComplete(ctx, name, args, time.Since(start), err)
	return err
}

// CommandError is returned by [ExecRunner.Output] when the child exits
// non-zero. Stderr holds whatever the child wrote to its error stream.
type CommandError struct {
	Err    *exec.ExitError
	Stderr string
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Stderr
}

func (e *CommandError) Unwrap() error { return e.Err }

// Ensure ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)
