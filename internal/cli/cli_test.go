package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foamium/cargo-sources/pkg/buildinfo"
	cserrors "github.com/foamium/cargo-sources/pkg/errors"
)

const guidance = `Note: For full Flatpak builds, run:
  pip install flatpak-cargo-generator
  flatpak-cargo-generator Cargo.lock -o flatpak/cargo-sources.json
Created empty flatpak/cargo-sources.json
Run flatpak-cargo-generator for proper offline builds.
`

// fakeCargo records invocations instead of starting cargo.
type fakeCargo struct {
	names    []string
	calls    []string
	fetchErr error
	metadata string
}

func (f *fakeCargo) Run(ctx context.Context, dir, name string, args ...string) error {
	f.names = append(f.names, name)
	f.calls = append(f.calls, strings.Join(args, " "))
	return f.fetchErr
}

func (f *fakeCargo) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	f.names = append(f.names, name)
	f.calls = append(f.calls, strings.Join(args, " "))
	return []byte(f.metadata), nil
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "flatpak"), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func execute(t *testing.T, fc *fakeCargo, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("CARGO", "")

	var out, errOut, logs bytes.Buffer
	c := &CLI{Logger: newLogger(&logs, LogInfo), Runner: fc}
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func TestRootWritesEmptyManifest(t *testing.T) {
	dir := newProject(t)
	fc := &fakeCargo{metadata: `{"packages": []}`}

	out, logs, err := execute(t, fc, "-C", dir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != guidance {
		t.Errorf("stdout =\n%s\nwant\n%s", out, guidance)
	}
	if !strings.Contains(logs, "Generated manifest") {
		t.Errorf("logs should report completion, got %q", logs)
	}

	data, err := os.ReadFile(filepath.Join(dir, "flatpak", "cargo-sources.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("manifest = %q, want []", data)
	}

	want := []string{"fetch", "metadata --format-version=1"}
	if strings.Join(fc.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", fc.calls, want)
	}
	for _, name := range fc.names {
		if name != "cargo" {
			t.Errorf("binary = %q, want cargo", name)
		}
	}
}

func TestRootFetchFailure(t *testing.T) {
	dir := newProject(t)
	fc := &fakeCargo{fetchErr: errors.New("exit status 101")}

	out, _, err := execute(t, fc, "-C", dir)
	if !cserrors.Is(err, cserrors.ErrCodeCommandFailed) {
		t.Fatalf("err = %v, want COMMAND_FAILED", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want nothing", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "flatpak", "cargo-sources.json")); !os.IsNotExist(err) {
		t.Errorf("manifest should not exist, stat err = %v", err)
	}
}

func TestRootConfigFile(t *testing.T) {
	dir := newProject(t)
	config := "cargo = \"/opt/rust/bin/cargo\"\noutput = \"flatpak/deps.json\"\n"
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	fc := &fakeCargo{metadata: `{}`}

	out, _, err := execute(t, fc, "-C", dir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fc.names[0] != "/opt/rust/bin/cargo" {
		t.Errorf("binary = %q, want config value", fc.names[0])
	}
	if !strings.Contains(out, "Created empty flatpak/deps.json") {
		t.Errorf("stdout should name the configured output, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "flatpak", "deps.json")); err != nil {
		t.Errorf("configured output missing: %v", err)
	}
}

func TestRootFlagsOverrideConfig(t *testing.T) {
	dir := newProject(t)
	config := "cargo = \"/opt/rust/bin/cargo\"\noutput = \"flatpak/deps.json\"\n"
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	fc := &fakeCargo{metadata: `{}`}

	_, _, err := execute(t, fc, "-C", dir, "--cargo", "cargo-nightly", "-o", "flatpak/other.json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fc.names[0] != "cargo-nightly" {
		t.Errorf("binary = %q, want flag value", fc.names[0])
	}
	if _, err := os.Stat(filepath.Join(dir, "flatpak", "other.json")); err != nil {
		t.Errorf("flag output missing: %v", err)
	}
}

func TestRootExplicitConfigMissing(t *testing.T) {
	dir := newProject(t)
	fc := &fakeCargo{}

	_, _, err := execute(t, fc, "-C", dir, "--config", filepath.Join(dir, "absent.toml"))
	if !cserrors.Is(err, cserrors.ErrCodeInvalidConfig) {
		t.Fatalf("err = %v, want INVALID_CONFIG", err)
	}
	if len(fc.calls) != 0 {
		t.Errorf("cargo should not run, calls = %v", fc.calls)
	}
}

func TestRootFromLock(t *testing.T) {
	dir := newProject(t)
	lock := `version = 3

[[package]]
name = "app"
version = "0.1.0"
dependencies = ["libc"]

[[package]]
name = "libc"
version = "0.2.155"
source = "registry+https://github.com/rust-lang/crates.io-index"
checksum = "97b3888a4aecf77e811145cadf6eef5901f4782c53886191b2f693f24761847c"
`
	if err := os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte(lock), 0644); err != nil {
		t.Fatal(err)
	}
	fc := &fakeCargo{metadata: `{"packages": []}`}

	out, _, err := execute(t, fc, "-C", dir, "--from-lock")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "with 3 sources") {
		t.Errorf("summary should count sources, got %q", out)
	}
	if strings.Contains(out, "Created empty") {
		t.Errorf("lock mode should not print placeholder guidance, got %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "flatpak", "cargo-sources.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "https://static.crates.io/crates/libc/libc-0.2.155.crate") {
		t.Errorf("manifest missing crate url:\n%s", data)
	}
}

func TestRootRejectsArgs(t *testing.T) {
	fc := &fakeCargo{}
	if _, _, err := execute(t, fc, "extra"); err == nil {
		t.Error("expected error for positional argument")
	}
	if len(fc.calls) != 0 {
		t.Errorf("cargo should not run, calls = %v", fc.calls)
	}
}

func TestRootVersion(t *testing.T) {
	out, _, err := execute(t, &fakeCargo{}, "--version")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, buildinfo.Version) {
		t.Errorf("version output %q should contain %q", out, buildinfo.Version)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := execute(t, &fakeCargo{}, "completion", shell)
			if err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("completion script should mention %s", appName)
			}
		})
	}

	if _, _, err := execute(t, &fakeCargo{}, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
