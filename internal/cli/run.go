package cli

import (
	"fmt"
	"os"
	"os/signal"
	"regexp"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/hsm/internal/adapters"
	"github.com/wesleyorama2/hsm/internal/bench"
	"github.com/wesleyorama2/hsm/internal/config"
	"github.com/wesleyorama2/hsm/internal/metrics"
	"github.com/wesleyorama2/hsm/internal/output"
	"github.com/wesleyorama2/hsm/internal/pkginfo"
	"github.com/wesleyorama2/hsm/internal/registry"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [test]",
		Short: "Run the tests and chart their average times",
		Long: `run spawns one process per test and iteration, waits for all of them
and charts the average time of each mode. The first failure stops the run.

Without a test name or --pattern every registered test runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTests,
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file (YAML, JSON or TOML)")
	cmd.Flags().StringP("url", "u", config.DefaultURL, "URL the tests request")
	cmd.Flags().IntP("iterations", "i", config.DefaultIterations, "Number of isolated runs per test")
	cmd.Flags().StringP("mock", "m", "", "Load the results from a file instead of running the tests")
	cmd.Flags().StringP("test", "t", "", "Run only the test with this name")
	cmd.Flags().StringP("pattern", "p", "", "Run only the tests whose name matches this regular expression")
	cmd.Flags().String("tests-dir", "", "Directory with script tests")
	cmd.Flags().Int("max-columns", config.DefaultMaxColumns, "Width of the slowest bar")
	cmd.Flags().Int("concurrency", 0, "Maximum number of processes in flight (0 means no limit)")
	cmd.Flags().Duration("timeout", 0, "Timeout of a single iteration (0 means no limit)")
	cmd.Flags().Bool("packages", false, "Print the packages behind each test")
	cmd.Flags().String("save", "", "Save the results to a file that --mock can load")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics of the run to this file")
	cmd.Flags().StringP("format", "f", "", "Output format: text, json or yaml")

	return cmd
}

func runTests(cmd *cobra.Command, args []string) error {
	mock, _ := cmd.Flags().GetString("mock")
	packages, _ := cmd.Flags().GetBool("packages")
	save, _ := cmd.Flags().GetString("save")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	noColor, _ := cmd.Flags().GetBool("no-color")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sel, err := selector(cmd, args)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	source, err := buildSource(cfg.Metadata)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	options := []bench.Option{
		bench.WithSource(source),
		bench.WithNoColor(noColor),
		bench.WithLogger(log.WithField("command", "run")),
		bench.WithIndicator(func() bench.Indicator {
			return output.NewSpinner(output.SpinnerConfig{
				Text:    "Making the requests %s",
				Writer:  stderr,
				NoColor: noColor,
			})
		}),
	}
	if mock != "" {
		options = append(options, bench.WithMock(mock))
	}

	var recorder *metrics.Recorder
	if metricsFile != "" {
		recorder = metrics.NewRecorder()
		options = append(options, bench.WithMetrics(recorder))
	}

	tester, err := bench.New(cfg, reg, options...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if _, err := tester.Run(ctx, sel); err != nil {
		if recorder != nil {
			if werr := recorder.WriteTextfile(metricsFile); werr != nil {
				log.WithError(werr).Warn("failed to write metrics")
			}
		}
		return err
	}

	out := cmd.OutOrStdout()
	if err := tester.WriteResults(out, format); err != nil {
		return err
	}

	if packages {
		rows, err := tester.PackageRows()
		if err != nil {
			return err
		}
		fmt.Fprint(out, output.PackageTable(rows, noColor))
	}

	if save != "" {
		if err := tester.Save(save); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Results saved to %s\n", output.SuccessIcon(noColor), save)
	}

	if recorder != nil {
		if err := tester.RecordMetrics(); err != nil {
			return err
		}
		if err := recorder.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}

	return nil
}

func changed(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

// loadConfig reads the configuration file, if any, and applies the flags
// the user set on top of it
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")

	cfg := config.Defaults()
	if configFile != "" {
		var err error
		cfg, err = config.LoadConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	}

	if changed(cmd, "url") {
		cfg.URL, _ = cmd.Flags().GetString("url")
	}
	if changed(cmd, "iterations") {
		cfg.Iterations, _ = cmd.Flags().GetInt("iterations")
	}
	if changed(cmd, "tests-dir") {
		cfg.TestsDir, _ = cmd.Flags().GetString("tests-dir")
	}
	if changed(cmd, "max-columns") {
		cfg.MaxColumns, _ = cmd.Flags().GetInt("max-columns")
	}
	if changed(cmd, "concurrency") {
		cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if changed(cmd, "timeout") {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		cfg.Timeout = config.Duration(timeout)
	}
	if changed(cmd, "format") {
		cfg.Format, _ = cmd.Flags().GetString("format")
	}

	return cfg, nil
}

func selector(cmd *cobra.Command, args []string) (registry.Selector, error) {
	name, _ := cmd.Flags().GetString("test")
	pattern, _ := cmd.Flags().GetString("pattern")

	if len(args) > 0 {
		if name != "" && name != args[0] {
			return registry.Selector{}, fmt.Errorf("two different tests were selected: %q and %q", args[0], name)
		}
		name = args[0]
	}

	if pattern != "" {
		if name != "" {
			return registry.Selector{}, fmt.Errorf("select tests by name or by --pattern, not both")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return registry.Selector{}, fmt.Errorf("invalid pattern: %w", err)
		}
		return registry.Match(re), nil
	}

	return registry.Exact(name), nil
}

// buildRegistry registers the built-in adapters, run through this same
// executable, and the scripts of the tests directory
func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	names := cfg.Adapters
	if len(names) == 0 {
		names = adapters.Names()
	}
	for _, name := range names {
		if _, err := adapters.New(name); err != nil {
			return nil, err
		}
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate the hsm executable: %w", err)
	}

	reg := registry.New()
	if err := reg.RegisterBuiltins(exe, names); err != nil {
		return nil, err
	}
	if cfg.TestsDir != "" {
		if err := reg.Discover(cfg.TestsDir, cfg.Runtimes); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// buildSource chains the Go module metadata with the npm manifest. In auto
// mode the manifest is only used when it exists.
func buildSource(md config.Metadata) (pkginfo.Source, error) {
	var chain pkginfo.Chain

	if md.Source == config.SourceAuto || md.Source == config.SourceGo {
		var (
			source *pkginfo.ModuleSource
			err    error
		)
		if md.GoMod != "" {
			source, err = pkginfo.NewModuleSource(md.GoMod)
		} else {
			source, err = pkginfo.NewBuildInfoSource()
		}
		if err != nil {
			return nil, err
		}
		chain = append(chain, source)
	}

	if md.Source == config.SourceNPM || (md.Source == config.SourceAuto && fileExists(md.PackageJSON)) {
		source, err := pkginfo.NewNPMSource(md.PackageJSON, md.NodeModules)
		if err != nil {
			return nil, err
		}
		chain = append(chain, source)
	}

	return chain, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
