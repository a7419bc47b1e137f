package cargo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"reflect"
	"testing"

	cserrors "github.com/foamium/cargo-sources/pkg/errors"
)

// fakeRunner records invocations and replays canned results.
type fakeRunner struct {
	calls     [][]string
	dirs      []string
	runErr    error
	output    []byte
	outputErr error
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	f.dirs = append(f.dirs, dir)
	return f.runErr
}

func (f *fakeRunner) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	f.dirs = append(f.dirs, dir)
	return f.output, f.outputErr
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", "", nil)
	if c.Binary() != DefaultBinary {
		t.Errorf("Binary() = %q, want %q", c.Binary(), DefaultBinary)
	}
	if c.Dir() != "" {
		t.Errorf("Dir() = %q, want empty", c.Dir())
	}
	if _, ok := c.runner.(*ExecRunner); !ok {
		t.Errorf("runner = %T, want *ExecRunner", c.runner)
	}
}

func TestClientFetch(t *testing.T) {
	r := &fakeRunner{}
	c := NewClient("cargo", "/src/project", r)

	if err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	want := [][]string{{"cargo", "fetch"}}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
	if r.dirs[0] != "/src/project" {
		t.Errorf("dir = %q, want /src/project", r.dirs[0])
	}
}

func TestClientFetchErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code cserrors.Code
	}{
		{"not in PATH", &exec.Error{Name: "cargo", Err: exec.ErrNotFound}, cserrors.ErrCodeCommandNotFound},
		{"start failure", fmt.Errorf("fork/exec /opt/cargo: %w", errors.New("permission denied")), cserrors.ErrCodeCommandFailed},
		{"non-zero exit", errors.New("exit status 101"), cserrors.ErrCodeCommandFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient("cargo", "", &fakeRunner{runErr: tt.err})
			err := c.Fetch(context.Background())
			if err == nil {
				t.Fatal("Fetch() should fail")
			}
			if !cserrors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v (%v)", cserrors.GetCode(err), tt.code, err)
			}
			if !errors.Is(err, tt.err) {
				t.Error("cause should be preserved")
			}
		})
	}
}

func TestClientMetadata(t *testing.T) {
	r := &fakeRunner{output: []byte(`{"packages": [], "version": 1}`)}
	c := NewClient("/usr/bin/cargo", "", r)

	md, err := c.Metadata(context.Background())
	if err != nil {
		t.Fatalf("Metadata() error: %v", err)
	}
	if md.Version != 1 {
		t.Errorf("Version = %d, want 1", md.Version)
	}

	want := [][]string{{"/usr/bin/cargo", "metadata", "--format-version=1"}}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestClientMetadataErrors(t *testing.T) {
	t.Run("command fails", func(t *testing.T) {
		c := NewClient("cargo", "", &fakeRunner{outputErr: errors.New("exit status 101")})
		_, err := c.Metadata(context.Background())
		if !cserrors.Is(err, cserrors.ErrCodeCommandFailed) {
			t.Errorf("err = %v, want COMMAND_FAILED", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		c := NewClient("cargo", "", &fakeRunner{output: []byte("error: could not find Cargo.toml")})
		_, err := c.Metadata(context.Background())
		if !cserrors.Is(err, cserrors.ErrCodeInvalidMetadata) {
			t.Errorf("err = %v, want INVALID_METADATA", err)
		}
	})
}
