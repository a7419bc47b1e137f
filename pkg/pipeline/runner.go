package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/foamium/cargo-sources/pkg/cargo"
	"github.com/foamium/cargo-sources/pkg/flatpak"
	"github.com/foamium/cargo-sources/pkg/observability"
)

// Runner executes the pipeline against a cargo client.
//
// The Runner holds no per-run state; Out receives the guidance text printed
// in the default mode.
type Runner struct {
	Cargo  *cargo.Client
	Logger *log.Logger
	Out    io.Writer
}

// NewRunner creates a runner. A nil logger means log.Default() and a nil
// out means os.Stdout.
func NewRunner(client *cargo.Client, logger *log.Logger, out io.Writer) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Runner{Cargo: client, Logger: logger, Out: out}
}

// Execute runs fetch, metadata and emit in order and stops at the first
// failure.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Output: opts.OutputPath()}

	// Step 1: Fetch
	d, err := r.step(ctx, StepFetch, func() error {
		r.Logger.Debug("running cargo fetch", "cargo", r.Cargo.Binary(), "dir", r.Cargo.Dir())
		return r.Cargo.Fetch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Stats.FetchTime = d
	r.Logger.Info("fetched dependencies", "duration", d.Round(time.Millisecond))

	// Step 2: Metadata
	d, err = r.step(ctx, StepMetadata, func() error {
		md, err := r.Cargo.Metadata(ctx)
		result.Metadata = md
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	result.Stats.MetadataTime = d
	if result.Metadata.Partial {
		r.Logger.Warn("cargo metadata has an unexpected shape; continuing")
	}
	r.Logger.Info("read cargo metadata",
		"packages", len(result.Metadata.Packages),
		"third_party", len(result.Metadata.ThirdParty()),
		"duration", d.Round(time.Millisecond))

	// Step 3: Emit
	d, err = r.step(ctx, StepEmit, func() error {
		sources, err := r.emit(opts, result.Output)
		result.Sources = sources
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	result.Stats.EmitTime = d
	r.Logger.Info("wrote manifest", "path", result.Output, "sources", len(result.Sources))

	return result, nil
}

func (r *Runner) emit(opts Options, path string) ([]flatpak.Source, error) {
	if !opts.FromLock {
		return r.emitPlaceholder(opts, path)
	}

	lockPath := opts.LockfilePath()
	r.Logger.Debug("reading lock file", "path", lockPath)
	lock, err := cargo.ReadLockfile(lockPath)
	if err != nil {
		return nil, err
	}
	sources, err := flatpak.VendorSources(lock, flatpak.VendorOptions{
		VendorDir: opts.VendorDir,
		Logger:    r.Logger.Debugf,
	})
	if err != nil {
		return nil, err
	}
	if err := flatpak.WriteManifest(path, sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// emitPlaceholder writes an empty manifest and tells the operator how to
// produce a complete one.
func (r *Runner) emitPlaceholder(opts Options, path string) ([]flatpak.Source, error) {
	sources := []flatpak.Source{}

	fmt.Fprintln(r.Out, "Note: For full Flatpak builds, run:")
	fmt.Fprintln(r.Out, "  pip install flatpak-cargo-generator")
	fmt.Fprintf(r.Out, "  flatpak-cargo-generator Cargo.lock -o %s\n", opts.Output)

	if err := flatpak.WriteManifest(path, sources); err != nil {
		return nil, err
	}

	fmt.Fprintf(r.Out, "Created empty %s\n", opts.Output)
	fmt.Fprintln(r.Out, "Run flatpak-cargo-generator for proper offline builds.")
	return sources, nil
}

func (r *Runner) step(ctx context.Context, name string, fn func() error) (time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnStepStart(ctx, name)
	start := time.Now()
	err := fn()
	d := time.Since(start)
	hooks.OnStepComplete(ctx, name, d, err)
	return d, err
}
