// Package pipeline runs the fetch → metadata → emit sequence that produces
// a Flatpak cargo sources manifest.
//
// # Architecture
//
// The pipeline consists of three steps, run strictly in order:
//
//  1. Fetch: `cargo fetch` downloads every locked dependency
//  2. Metadata: `cargo metadata --format-version=1` is captured and parsed
//  3. Emit: the sources list is written to the output file
//
// The first failing step aborts the run; later steps never start and the
// output file is left untouched.
//
// By default the emitted list is empty whatever the metadata contains, and
// guidance for running flatpak-cargo-generator is printed around the
// write. With FromLock set, the list is generated from Cargo.lock instead.
//
// # Usage
//
//	client := cargo.NewClient("cargo", dir, nil)
//	runner := pipeline.NewRunner(client, logger, os.Stdout)
//	result, err := runner.Execute(ctx, pipeline.Options{Dir: dir})
package pipeline

import (
	"path/filepath"
	"time"

	"github.com/foamium/cargo-sources/pkg/cargo"
	cserrors "github.com/foamium/cargo-sources/pkg/errors"
	"github.com/foamium/cargo-sources/pkg/flatpak"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultOutput is the manifest path relative to the project directory.
	DefaultOutput = flatpak.DefaultOutput

	// DefaultLockfile is the lock file read in FromLock mode.
	DefaultLockfile = "Cargo.lock"
)

// Step names reported to observability hooks.
const (
	StepFetch    = "fetch"
	StepMetadata = "metadata"
	StepEmit     = "emit"
)

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Dir is the project directory. Relative paths below are resolved
	// against it; empty means the current directory.
	Dir string

	// Output is where the manifest is written.
	Output string

	// FromLock enables generation from Cargo.lock. When false the manifest
	// is always an empty list.
	FromLock bool

	// Lockfile is the Cargo.lock path used when FromLock is set.
	Lockfile string

	// VendorDir is the vendor directory inside the Flatpak build.
	VendorDir string
}

// SetDefaults fills unset fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.Lockfile == "" {
		o.Lockfile = DefaultLockfile
	}
	if o.VendorDir == "" {
		o.VendorDir = flatpak.DefaultVendorDir
	}
}

// Validate checks options after defaults have been applied.
func (o *Options) Validate() error {
	if o.Output == "" {
		return cserrors.New(cserrors.ErrCodeInvalidInput, "output path cannot be empty")
	}
	if o.FromLock {
		if err := cserrors.ValidatePath(o.VendorDir); err != nil {
			return cserrors.Wrap(cserrors.ErrCodeInvalidInput, err, "vendor dir %q", o.VendorDir)
		}
	}
	return nil
}

// OutputPath returns Output resolved against Dir.
func (o *Options) OutputPath() string {
	return o.resolve(o.Output)
}

// LockfilePath returns Lockfile resolved against Dir.
func (o *Options) LockfilePath() string {
	return o.resolve(o.Lockfile)
}

func (o *Options) resolve(p string) string {
	if filepath.IsAbs(p) || o.Dir == "" {
		return p
	}
	return filepath.Join(o.Dir, p)
}

// =============================================================================
// Result
// =============================================================================

// Result describes a successful run.
type Result struct {
	// Output is the path the manifest was written to.
	Output string

	// Sources is the manifest that was written.
	Sources []flatpak.Source

	// Metadata is the parsed cargo metadata.
	Metadata *cargo.Metadata

	Stats Stats
}

// Stats holds per-step timings.
type Stats struct {
	FetchTime    time.Duration
	MetadataTime time.Duration
	EmitTime     time.Duration
}
