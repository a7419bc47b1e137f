// Package cargo drives the cargo binary and reads the files it produces.
//
// # Commands
//
// [Client] runs the two cargo subcommands the manifest generator needs,
// strictly one after the other:
//
//	c := cargo.NewClient("cargo", dir, cargo.NewExecRunner())
//	if err := c.Fetch(ctx); err != nil {
//	    return err
//	}
//	md, err := c.Metadata(ctx)
//
// Processes are started through a [Runner], so tests can substitute a fake
// without touching the filesystem or PATH.
//
// # Lock files
//
// [ReadLockfile] parses Cargo.lock (all format versions) and resolves each
// package's checksum, including the legacy v1 [metadata] table.
package cargo
