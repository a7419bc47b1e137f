// Package pkg provides the libraries behind cargo-sources.
//
// # Overview
//
// cargo-sources prepares the cargo dependencies of a Rust project for an
// offline Flatpak build. The pkg directory is organized into:
//
//  1. [cargo] - Running cargo and reading its outputs (metadata, Cargo.lock)
//  2. [flatpak] - Flatpak source entries and the manifest file
//  3. [pipeline] - Orchestration (fetch → metadata → emit)
//  4. [errors] - Coded errors and input validation
//  5. [observability] - Hooks around pipeline steps and cargo commands
//
// # Architecture
//
// The data flow of one run:
//
//	cargo fetch
//	     ↓
//	cargo metadata --format-version=1
//	     ↓
//	[cargo] package (parse metadata, optionally Cargo.lock)
//	     ↓
//	[flatpak] package (build sources, write manifest)
//	     ↓
//	flatpak/cargo-sources.json
//
// # Quick Start
//
// Run the pipeline programmatically:
//
//	client := cargo.NewClient("cargo", "path/to/project", cargo.NewExecRunner())
//	runner := pipeline.NewRunner(client, nil, os.Stdout)
//	result, err := runner.Execute(ctx, pipeline.Options{Dir: "path/to/project"})
//
// Generate sources from a lock file without running cargo:
//
//	lock, _ := cargo.ReadLockfile("Cargo.lock")
//	sources, _ := flatpak.VendorSources(lock, flatpak.VendorOptions{})
//	_ = flatpak.WriteManifest("flatpak/cargo-sources.json", sources)
//
// # Testing
//
//	go test ./pkg/...
//
// [cargo]: https://pkg.go.dev/github.com/foamium/cargo-sources/pkg/cargo
// [flatpak]: https://pkg.go.dev/github.com/foamium/cargo-sources/pkg/flatpak
// [pipeline]: https://pkg.go.dev/github.com/foamium/cargo-sources/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/foamium/cargo-sources/pkg/errors
// [observability]: https://pkg.go.dev/github.com/foamium/cargo-sources/pkg/observability
package pkg
