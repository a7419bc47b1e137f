package cargo

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"

	cserrors "github.com/foamium/cargo-sources/pkg/errors"
)

// DefaultBinary is the cargo executable used when none is configured.
const DefaultBinary = "cargo"

// MetadataFormatVersion is the `cargo metadata` schema requested.
const MetadataFormatVersion = 1

// Client runs cargo subcommands inside a project directory.
//
// A Client holds no state between calls; Fetch and Metadata may be called
// in any order, but the manifest pipeline always calls Fetch first.
type Client struct {
	bin    string
	dir    string
	runner Runner
}

// NewClient creates a client that runs bin inside dir.
// An empty bin means [DefaultBinary]; an empty dir means the current
// working directory. A nil runner means [NewExecRunner].
func NewClient(bin, dir string, runner Runner) *Client {
	if bin == "" {
		bin = DefaultBinary
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	return &Client{bin: bin, dir: dir, runner: runner}
}

// Binary returns the cargo executable this client runs.
func (c *Client) Binary() string { return c.bin }

// Dir returns the directory commands run in.
func (c *Client) Dir() string { return c.dir }

// Fetch runs `cargo fetch`, downloading every dependency in Cargo.lock.
// Output goes straight to the runner's writers.
func (c *Client) Fetch(ctx context.Context) error {
	args := []string{"fetch"}
	if err := c.runner.Run(ctx, c.dir, c.bin, args...); err != nil {
		return c.commandError(err, args)
	}
	return nil
}

// Metadata runs `cargo metadata --format-version=1` and parses its output.
func (c *Client) Metadata(ctx context.Context) (*Metadata, error) {
	args := []string{"metadata", "--format-version=1"}
	out, err := c.runner.Output(ctx, c.dir, c.bin, args...)
	if err != nil {
		return nil, c.commandError(err, args)
	}
	return ParseMetadata(out)
}

func (c *Client) commandError(err error, args []string) error {
	cmdline := c.bin + " " + strings.Join(args, " ")
	// A missing binary surfaces as exec.ErrNotFound when looked up in PATH
	// and as fs.ErrNotExist when given by path.
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return cserrors.Wrap(cserrors.ErrCodeCommandNotFound, err, "%s", cmdline)
	}
	return cserrors.Wrap(cserrors.ErrCodeCommandFailed, err, "%s", cmdline)
}
