package flatpak

import (
	"bytes"
	"encoding/json"
	"os"

	cserrors "github.com/foamium/cargo-sources/pkg/errors"
)

// DefaultOutput is where the manifest is written, relative to the project.
const DefaultOutput = "flatpak/cargo-sources.json"

// MarshalManifest encodes sources as a JSON array indented with two
// spaces. A nil slice encodes as [] rather than null. The result has no
// trailing newline.
func MarshalManifest(sources []Source) ([]byte, error) {
	if sources == nil {
		sources = []Source{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sources); err != nil {
		return nil, cserrors.Wrap(cserrors.ErrCodeInternal, err, "encode sources")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteManifest writes sources to path, replacing any existing file.
// The parent directory must already exist.
func WriteManifest(path string, sources []Source) error {
	data, err := MarshalManifest(sources)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return cserrors.Wrap(cserrors.ErrCodeWriteFailed, err, "write %s", path)
	}
	return nil
}
