// Package flatpak builds and writes flatpak-builder source lists for Cargo
// projects.
//
// # Sources
//
// A [Source] is one entry of a flatpak-builder module's "sources" array.
// Only the types a vendored cargo build needs are modelled: archive, git
// and inline.
//
// # Vendoring
//
// [VendorSources] turns a parsed Cargo.lock into the list of sources that
// recreates cargo's vendor directory inside the sandbox, followed by a
// cargo config that points crates.io (and every git dependency) at it:
//
//	lock, _ := cargo.ReadLockfile("Cargo.lock")
//	sources, _ := flatpak.VendorSources(lock, flatpak.VendorOptions{})
//	_ = flatpak.WriteManifest("flatpak/cargo-sources.json", sources)
//
// # Output
//
// [MarshalManifest] produces 2-space indented JSON without a trailing
// newline; identical input always yields identical bytes.
package flatpak
