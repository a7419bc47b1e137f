package cargo

import (
	"encoding/json"

	cserrors "github.com/foamium/cargo-sources/pkg/errors"
)

// Metadata is the subset of `cargo metadata --format-version=1` output the
// generator inspects. Raw always holds the complete document.
type Metadata struct {
	Packages         []Package       `json:"packages"`
	WorkspaceMembers []string        `json:"workspace_members"`
	WorkspaceRoot    string          `json:"workspace_root"`
	TargetDirectory  string          `json:"target_directory"`
	Version          int             `json:"version"`
	Resolve          *Resolve        `json:"resolve"`
	Raw              json.RawMessage `json:"-"`

	// Partial is set when the document was valid JSON but did not match
	// the expected schema; the typed fields hold what could be decoded.
	Partial bool `json:"-"`
}

// Package describes one package known to cargo.
// Source is empty for local path packages.
type Package struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	ID           string       `json:"id"`
	Source       string       `json:"source"`
	License      string       `json:"license"`
	ManifestPath string       `json:"manifest_path"`
	Dependencies []Dependency `json:"dependencies"`
}

// Dependency is a declared dependency of a [Package].
type Dependency struct {
	Name     string `json:"name"`
	Req      string `json:"req"`
	Kind     string `json:"kind"`
	Source   string `json:"source"`
	Optional bool   `json:"optional"`
}

// Resolve is the resolved dependency graph. Root is empty for virtual
// workspaces.
type Resolve struct {
	Root  string        `json:"root"`
	Nodes []ResolveNode `json:"nodes"`
}

// ResolveNode is one node of the resolved graph.
type ResolveNode struct {
	ID           string   `json:"id"`
	Dependencies []string `json:"dependencies"`
}

// ParseMetadata decodes cargo metadata output.
//
// Input that is not syntactically valid JSON fails with
// ErrCodeInvalidMetadata. Valid JSON with an unexpected shape is accepted:
// the typed fields are filled best-effort and Partial is set.
func ParseMetadata(data []byte) (*Metadata, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, cserrors.Wrap(cserrors.ErrCodeInvalidMetadata, err, "parse cargo metadata")
	}

	md := &Metadata{Raw: append(json.RawMessage(nil), data...)}
	if err := json.Unmarshal(data, md); err != nil {
		md.Partial = true
	}
	return md, nil
}

// ThirdParty returns the packages that come from a registry or git
// repository, i.e. everything a vendored build needs to download.
func (m *Metadata) ThirdParty() []Package {
	var pkgs []Package
	for _, p := range m.Packages {
		if p.Source != "" {
			pkgs = append(pkgs, p)
		}
	}
	return pkgs
}
