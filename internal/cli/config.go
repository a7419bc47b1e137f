package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/foamium/cargo-sources/pkg/cargo"
	cserrors "github.com/foamium/cargo-sources/pkg/errors"
	"github.com/foamium/cargo-sources/pkg/flatpak"
	"github.com/foamium/cargo-sources/pkg/pipeline"
)

// configFileName is looked up in the project directory when --config is
// not given.
const configFileName = "cargo-sources.toml"

// Config holds the settings that can come from a config file.
type Config struct {
	Cargo     string `toml:"cargo"`
	Output    string `toml:"output"`
	FromLock  bool   `toml:"from-lock"`
	Lockfile  string `toml:"lockfile"`
	VendorDir string `toml:"vendor-dir"`
}

// defaultConfig returns the built-in settings. The cargo binary honours
// $CARGO, which cargo itself sets for subcommands.
func defaultConfig() Config {
	bin := os.Getenv("CARGO")
	if bin == "" {
		bin = cargo.DefaultBinary
	}
	return Config{
		Cargo:     bin,
		Output:    pipeline.DefaultOutput,
		Lockfile:  pipeline.DefaultLockfile,
		VendorDir: flatpak.DefaultVendorDir,
	}
}

// loadConfig overlays the TOML file at path onto base. A missing file is
// only an error when required is set. Unknown keys are rejected.
func loadConfig(path string, required bool, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return base, nil
	}
	if err != nil {
		return base, cserrors.Wrap(cserrors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, cserrors.Wrap(cserrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return base, cserrors.New(cserrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// configPath returns the config file to read and whether it must exist.
func configPath(dir, explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	return filepath.Join(dir, configFileName), false
}
