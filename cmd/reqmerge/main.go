package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantmind-br/reqmerge/internal/app"
	"github.com/quantmind-br/reqmerge/internal/config"
	"github.com/quantmind-br/reqmerge/internal/domain"
	"github.com/quantmind-br/reqmerge/internal/markers"
	"github.com/quantmind-br/reqmerge/internal/utils"
	"github.com/quantmind-br/reqmerge/pkg/version"
)

var (
	// Dependencies for testing
	execLookPath = exec.LookPath
	osStat       = os.Stat
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage formats a command failure for stderr. Conflicts and
// missing includes abort the merge itself; anything else is an I/O or
// usage error.
func errorMessage(err error) string {
	if domain.IsFatal(err) {
		return "Merge aborted: " + err.Error()
	}
	return "Error: " + err.Error()
}

// cli holds the state shared by the commands of one invocation
type cli struct {
	v       *viper.Viper
	cfgFile string
	debug   bool
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "reqmerge FILE [FILE ...]",
		Short: "Merge requirement files into one manifest",
		Long: `reqmerge merges pip requirement files, one per subsystem or application,
into a single sorted manifest on stdout.

Unpinned packages are reported as warnings. A package required with two
different version specifiers aborts the run with exit status 1 and no output.

Given explicit files, reqmerge also follows their -r includes and every
requirements file under their directories. Use "reqmerge scan ROOT" to merge
a tree from its root manifest and require that the root includes every
nested manifest.`,
		Version:       version.Short(),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, app.ModeExplicit, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is ~/.reqmerge/config.yaml)")
	flags.BoolVarP(&c.debug, "debug", "d", false, "Debug diagnostics on stderr")
	flags.StringP("output", "o", "", "Write the merged manifest to a file instead of stdout")
	flags.Bool("force", false, "Overwrite an existing output file")
	flags.String("report", "", "Write a run report: YAML, or JSON/TOML by .json/.toml extension")
	flags.String("pattern", config.DefaultPattern, "Glob that requirement file names must match")
	flags.String("python-version", config.DefaultPythonVersion, "Python version used when the interpreter cannot be probed")
	flags.Bool("no-probe", false, "Do not run the Python interpreter to detect the marker environment")
	flags.StringSlice("env-file", nil, "Dotenv file supplying ${VAR} values to requirement files (repeatable)")

	_ = c.v.BindPFlag("output.force", flags.Lookup("force"))
	_ = c.v.BindPFlag("discovery.pattern", flags.Lookup("pattern"))
	_ = c.v.BindPFlag("markers.python_version", flags.Lookup("python-version"))
	_ = c.v.BindPFlag("manifest.env_files", flags.Lookup("env-file"))

	rootCmd.AddCommand(c.scanCmd())
	rootCmd.AddCommand(c.doctorCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func (c *cli) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan ROOT_FILE",
		Short: "Merge a manifest tree and check its includes",
		Long: `Merges every requirements file under the root file's directory.

Every requirements file in a subdirectory must be included from the root
file with -r; otherwise the missing files are listed and the run fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, app.ModeScan, args)
		},
	}
}

// loadConfig loads configuration through the invocation's viper instance
func (c *cli) loadConfig() (*config.Config, error) {
	if c.cfgFile != "" {
		c.v.SetConfigFile(utils.ExpandPath(c.cfgFile))
	}
	cfg, err := config.LoadWithViper(c.v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	for i, path := range cfg.Manifest.EnvFiles {
		cfg.Manifest.EnvFiles[i] = utils.ExpandPath(path)
	}
	return cfg, nil
}

func (c *cli) newLogger(cfg *config.Config, w io.Writer) *utils.Logger {
	return utils.NewLogger(utils.LoggerOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: w,
		Debug:  c.debug,
	})
}

func (c *cli) run(cmd *cobra.Command, mode app.Mode, args []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	noProbe, _ := cmd.Flags().GetBool("no-probe")
	if noProbe {
		cfg.Markers.Probe = false
	}

	log := c.newLogger(cfg, cmd.ErrOrStderr())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			log.Info().Msg("Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	outputPath, _ := cmd.Flags().GetString("output")
	reportPath, _ := cmd.Flags().GetString("report")

	orchestrator, err := app.NewOrchestrator(app.OrchestratorOptions{
		Config:     cfg,
		Logger:     log,
		Stdout:     cmd.OutOrStdout(),
		OutputPath: utils.ExpandPath(outputPath),
		ReportPath: utils.ExpandPath(reportPath),
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	_, err = orchestrator.Run(ctx, mode, args)
	return err
}

func (c *cli) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment reqmerge runs in",
		Long:  "Verifies the configuration and the Python interpreter used to evaluate environment markers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Checking environment...")

			fmt.Fprint(out, "  Config file: ")
			cfg, err := c.loadConfig()
			if err != nil {
				fmt.Fprintf(out, "FAILED (%v)\n", err)
				return err
			}
			if used := c.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(out, "OK (%s)\n", used)
			} else {
				fmt.Fprintln(out, "OK (defaults)")
			}

			if noProbe, _ := cmd.Flags().GetBool("no-probe"); noProbe {
				cfg.Markers.Probe = false
			}

			fmt.Fprint(out, "  Python interpreter: ")
			if path := checkInterpreter(cfg.Markers.Interpreter); path != "" {
				fmt.Fprintf(out, "OK (%s)\n", path)
			} else {
				fmt.Fprintf(out, "NOT FOUND (%s; markers use the built-in environment)\n", cfg.Markers.Interpreter)
			}

			fmt.Fprint(out, "  Marker environment: ")
			env := probeEnvironment(cmd.Context(), cfg, c.newLogger(cfg, cmd.ErrOrStderr()))
			fmt.Fprintf(out, "python %s on %s/%s\n",
				env["python_full_version"], env["sys_platform"], env["platform_machine"])

			fmt.Fprintln(out)
			fmt.Fprintln(out, "All checks passed!")
			return nil
		},
	}
}

// checkInterpreter returns the resolved path of the interpreter, empty
// when it cannot be found
func checkInterpreter(interpreter string) string {
	if _, err := osStat(interpreter); err == nil {
		return interpreter
	}
	if path, err := execLookPath(interpreter); err == nil {
		return path
	}
	return ""
}

func probeEnvironment(ctx context.Context, cfg *config.Config, log *utils.Logger) markers.Environment {
	var prober markers.Prober
	if cfg.Markers.Probe {
		prober = markers.NewInterpreterProber(cfg.Markers.Interpreter, cfg.Markers.ProbeTimeout)
	}
	fallback := markers.DefaultEnvironment(cfg.Markers.PythonVersion)
	return markers.Resolve(ctx, prober, fallback, cfg.Markers.Environment, log)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
