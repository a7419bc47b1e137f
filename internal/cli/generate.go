package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/foamium/cargo-sources/pkg/cargo"
	"github.com/foamium/cargo-sources/pkg/flatpak"
	"github.com/foamium/cargo-sources/pkg/pipeline"
)

// generateFlags holds the root command's flags.
type generateFlags struct {
	dir       string
	config    string
	cargo     string
	output    string
	fromLock  bool
	lockfile  string
	vendorDir string
}

func (f *generateFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.dir, "dir", "C", "", "project directory (default: current directory)")
	flags.StringVar(&f.config, "config", "", "config file (default: <dir>/"+configFileName+" if present)")
	flags.StringVar(&f.cargo, "cargo", "", "cargo binary (default: $CARGO or cargo)")
	flags.StringVarP(&f.output, "output", "o", pipeline.DefaultOutput, "manifest path, relative to the project directory")
	flags.BoolVar(&f.fromLock, "from-lock", false, "generate sources from Cargo.lock instead of writing an empty list")
	flags.StringVar(&f.lockfile, "lockfile", pipeline.DefaultLockfile, "lock file read with --from-lock")
	flags.StringVar(&f.vendorDir, "vendor-dir", flatpak.DefaultVendorDir, "vendor directory inside the Flatpak build")
}

// resolve merges defaults, the config file and explicitly set flags.
func (f *generateFlags) resolve(cmd *cobra.Command) (Config, error) {
	path, required := configPath(f.dir, f.config)
	cfg, err := loadConfig(path, required, defaultConfig())
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("cargo") {
		cfg.Cargo = f.cargo
	}
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("from-lock") {
		cfg.FromLock = f.fromLock
	}
	if flags.Changed("lockfile") {
		cfg.Lockfile = f.lockfile
	}
	if flags.Changed("vendor-dir") {
		cfg.VendorDir = f.vendorDir
	}
	return cfg, nil
}

func (c *CLI) runGenerate(cmd *cobra.Command, f generateFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := f.resolve(cmd)
	if err != nil {
		return err
	}
	logger.Debug("configuration", "cargo", cfg.Cargo, "output", cfg.Output, "from_lock", cfg.FromLock)

	client := cargo.NewClient(cfg.Cargo, f.dir, c.runner(cmd))
	runner := pipeline.NewRunner(client, logger, cmd.OutOrStdout())

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Dir:       f.dir,
		Output:    cfg.Output,
		FromLock:  cfg.FromLock,
		Lockfile:  cfg.Lockfile,
		VendorDir: cfg.VendorDir,
	})
	if err != nil {
		return err
	}
	prog.done("Generated manifest")

	if cfg.FromLock {
		printSummary(cmd, result)
	}
	return nil
}

// printSummary reports what --from-lock generated.
func printSummary(cmd *cobra.Command, result *pipeline.Result) {
	w := cmd.OutOrStdout()
	counts := map[string]int{}
	for _, s := range result.Sources {
		counts[s.Type]++
	}
	printSuccess(w, "Created %s with %d sources", result.Output, len(result.Sources))
	printKeyValue(w, "crates", strconv.Itoa(counts[flatpak.TypeArchive]))
	printKeyValue(w, "git", strconv.Itoa(counts[flatpak.TypeGit]))
	printDetail(w, "Add the file to your module's sources and set CARGO_HOME=%s", flatpak.CargoHome)
	printFile(w, result.Output)
}
