package flatpak

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"

	"github.com/BurntSushi/toml"

	"github.com/foamium/cargo-sources/pkg/cargo"
	cserrors "github.com/foamium/cargo-sources/pkg/errors"
)

const (
	// DefaultVendorDir is where crates are unpacked inside the build directory.
	DefaultVendorDir = "cargo/vendor"

	// CargoHome is the directory the generated cargo config is written to.
	// Builds point CARGO_HOME at it.
	CargoHome = "cargo"

	// VendoredSourcesName is the cargo source every dependency is replaced with.
	VendoredSourcesName = "vendored-sources"

	crateDownloadURL = "https://static.crates.io/crates/%s/%s-%s.crate"
	checksumFile     = ".cargo-checksum.json"
)

// VendorOptions configures [VendorSources].
type VendorOptions struct {
	// VendorDir overrides DefaultVendorDir. It must be a relative path.
	VendorDir string

	// Logger receives progress messages. May be nil.
	Logger func(format string, args ...any)
}

func (o *VendorOptions) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger(format, args...)
	}
}

// CrateURL returns the crates.io download URL of a crate version.
func CrateURL(name, version string) string {
	return fmt.Sprintf(crateDownloadURL, name, name, version)
}

// VendorSources converts a lock file into flatpak-builder sources.
//
// Each crates.io package becomes a .crate archive plus its
// .cargo-checksum.json; each git package becomes a git checkout plus an
// empty checksum file. Local packages are skipped. The last entry is an
// inline cargo config redirecting crates.io and every git source to the
// vendor directory. Packages from other registries are rejected.
func VendorSources(lock *cargo.Lockfile, opts VendorOptions) ([]Source, error) {
	vendorDir := opts.VendorDir
	if vendorDir == "" {
		vendorDir = DefaultVendorDir
	}
	if err := cserrors.ValidatePath(vendorDir); err != nil {
		return nil, err
	}

	sources := []Source{}
	var gitSources []*cargo.GitSource
	seenGit := make(map[string]bool)

	for _, p := range lock.Packages {
		kind := p.Kind()
		if kind == cargo.SourceLocal {
			opts.logf("skipping local package %s", p)
			continue
		}
		if err := validatePackage(p); err != nil {
			return nil, err
		}
		dest := path.Join(vendorDir, p.Name+"-"+p.Version)

		switch kind {
		case cargo.SourceCratesIO:
			if p.Checksum == "" {
				return nil, cserrors.New(cserrors.ErrCodeInvalidLockfile, "no checksum for %s", p)
			}
			sum, err := checksumJSON(&p.Checksum)
			if err != nil {
				return nil, err
			}
			sources = append(sources,
				Archive(CrateURL(p.Name, p.Version), p.Checksum, dest),
				Inline(sum, dest, checksumFile),
			)

		case cargo.SourceGit:
			gs, err := cargo.ParseGitSource(p.Source)
			if err != nil {
				return nil, err
			}
			sum, err := checksumJSON(nil)
			if err != nil {
				return nil, err
			}
			sources = append(sources,
				Git(gs.URL, gs.Commit, dest),
				Inline(sum, dest, checksumFile),
			)
			if key := gs.Key(); !seenGit[key] {
				seenGit[key] = true
				gitSources = append(gitSources, gs)
			}

		default:
			return nil, cserrors.New(cserrors.ErrCodeUnsupportedSource,
				"%s: %s sources are not supported (%s)", p, kind, p.Source)
		}
	}

	config, err := CargoConfig(vendorDir, gitSources)
	if err != nil {
		return nil, err
	}
	sources = append(sources, Inline(config, CargoHome, "config"))

	opts.logf("vendored %d crates, %d git sources", countType(sources, TypeArchive), len(gitSources))
	return sources, nil
}

func validatePackage(p cargo.LockedPackage) error {
	if err := cserrors.ValidateCrateName(p.Name); err != nil {
		return cserrors.Wrap(cserrors.ErrCodeInvalidLockfile, err, "package %q", p.Name)
	}
	if err := cserrors.ValidateVersion(p.Version); err != nil {
		return cserrors.Wrap(cserrors.ErrCodeInvalidLockfile, err, "package %s", p.Name)
	}
	return nil
}

// checksumJSON renders a .cargo-checksum.json. Git checkouts have no
// package checksum, which cargo expects as null.
func checksumJSON(pkg *string) (string, error) {
	doc := struct {
		Package *string           `json:"package"`
		Files   map[string]string `json:"files"`
	}{Package: pkg, Files: map[string]string{}}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", cserrors.Wrap(cserrors.ErrCodeInternal, err, "encode checksum file")
	}
	return string(data), nil
}

// CargoConfig renders the cargo config that replaces crates.io and the
// given git sources with the vendor directory.
func CargoConfig(vendorDir string, gitSources []*cargo.GitSource) (string, error) {
	replace := map[string]string{"replace-with": VendoredSourcesName}
	sources := map[string]map[string]string{
		VendoredSourcesName: {"directory": vendorDir},
		"crates-io":         replace,
	}
	for _, gs := range gitSources {
		entry := map[string]string{
			"git":          gs.URL,
			"replace-with": VendoredSourcesName,
		}
		if name, value := gs.Reference(); name != "" {
			entry[name] = value
		}
		sources[gs.Key()] = entry
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(map[string]any{"source": sources}); err != nil {
		return "", cserrors.Wrap(cserrors.ErrCodeInternal, err, "encode cargo config")
	}
	return buf.String(), nil
}

func countType(sources []Source, typ string) int {
	n := 0
	for _, s := range sources {
		if s.Type == typ {
			n++
		}
	}
	return n
}
