package cargo

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	cserrors "github.com/foamium/cargo-sources/pkg/errors"
)

// Well-known crates.io index locations as they appear in Cargo.lock.
const (
	CratesIOGitIndex    = "registry+https://github.com/rust-lang/crates.io-index"
	CratesIOSparseIndex = "sparse+https://index.crates.io/"
)

// SourceKind classifies where a locked package comes from.
type SourceKind int

const (
	SourceLocal    SourceKind = iota // path dependency or workspace member
	SourceCratesIO                   // the crates.io registry
	SourceRegistry                   // any other registry
	SourceGit                        // a git repository
	SourceUnknown
)

func (k SourceKind) String() string {
	switch k {
	case SourceLocal:
		return "local"
	case SourceCratesIO:
		return "crates.io"
	case SourceRegistry:
		return "registry"
	case SourceGit:
		return "git"
	default:
		return "unknown"
	}
}

// Lockfile is a parsed Cargo.lock.
type Lockfile struct {
	Version  int               `toml:"version"`
	Packages []LockedPackage   `toml:"package"`
	Metadata map[string]string `toml:"metadata"`
}

// LockedPackage is one [[package]] entry of Cargo.lock.
type LockedPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Checksum     string   `toml:"checksum"`
	Dependencies []string `toml:"dependencies"`
}

// Kind reports where the package comes from.
func (p LockedPackage) Kind() SourceKind {
	switch {
	case p.Source == "":
		return SourceLocal
	case p.Source == CratesIOGitIndex || p.Source == CratesIOSparseIndex:
		return SourceCratesIO
	case strings.HasPrefix(p.Source, "registry+"), strings.HasPrefix(p.Source, "sparse+"):
		return SourceRegistry
	case strings.HasPrefix(p.Source, "git+"):
		return SourceGit
	default:
		return SourceUnknown
	}
}

// String returns "name version", the way cargo prints package ids.
func (p LockedPackage) String() string {
	return p.Name + " " + p.Version
}

// ReadLockfile reads and parses the Cargo.lock at path.
func ReadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cserrors.Wrap(cserrors.ErrCodeInvalidLockfile, err, "read %s", path)
	}
	lock, err := ParseLockfile(data)
	if err != nil {
		return nil, cserrors.Wrap(cserrors.ErrCodeInvalidLockfile, err, "parse %s", path)
	}
	return lock, nil
}

// ParseLockfile decodes Cargo.lock contents. Checksums recorded in the
// legacy [metadata] table (format v1) are copied onto their packages.
func ParseLockfile(data []byte) (*Lockfile, error) {
	var lock Lockfile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, err
	}
	if lock.Version == 0 {
		lock.Version = 1
	}
	for i := range lock.Packages {
		p := &lock.Packages[i]
		if p.Checksum != "" || p.Source == "" {
			continue
		}
		key := fmt.Sprintf("checksum %s %s (%s)", p.Name, p.Version, p.Source)
		if sum, ok := lock.Metadata[key]; ok && sum != "<none>" {
			p.Checksum = sum
		}
	}
	return &lock, nil
}

// GitSource is a parsed `git+` package source such as
// git+https://github.com/servo/rust-url?branch=main#8a4fbb2e.
type GitSource struct {
	URL    string // repository URL without the git+ prefix
	Branch string
	Tag    string
	Rev    string
	Commit string // the locked commit after '#'
}

// ParseGitSource parses the source field of a git package.
func ParseGitSource(source string) (*GitSource, error) {
	raw, ok := strings.CutPrefix(source, "git+")
	if !ok {
		return nil, cserrors.New(cserrors.ErrCodeUnsupportedSource, "not a git source: %q", source)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, cserrors.Wrap(cserrors.ErrCodeInvalidLockfile, err, "parse git source %q", source)
	}
	if u.Fragment == "" {
		return nil, cserrors.New(cserrors.ErrCodeInvalidLockfile, "git source without locked commit: %q", source)
	}

	q := u.Query()
	gs := &GitSource{
		Branch: q.Get("branch"),
		Tag:    q.Get("tag"),
		Rev:    q.Get("rev"),
		Commit: u.Fragment,
	}
	u.RawQuery = ""
	u.Fragment = ""
	gs.URL = u.String()
	if err := cserrors.ValidateURL(gs.URL); err != nil {
		return nil, err
	}
	return gs, nil
}

// Key identifies the repository and reference, ignoring the locked commit.
// Packages sharing a Key come from the same checkout.
func (g *GitSource) Key() string {
	name, value := g.Reference()
	if name == "" {
		return g.URL
	}
	return g.URL + "?" + name + "=" + value
}

// Reference returns the kind and value of the requested reference, or two
// empty strings when the dependency tracks the default branch.
func (g *GitSource) Reference() (name, value string) {
	switch {
	case g.Branch != "":
		return "branch", g.Branch
	case g.Tag != "":
		return "tag", g.Tag
	case g.Rev != "":
		return "rev", g.Rev
	default:
		return "", ""
	}
}
