package cli

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/hsm/internal/output"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hsm",
		Short:   "HTTP Speed Meter, a benchmark for HTTP clients",
		Version: version,
		Long: `hsm runs the same requests through different HTTP clients, each one
in its own process, and compares how long they take to fetch a URL as
text and as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	cmd.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newProbeCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func setupLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	noColor, _ := cmd.Flags().GetBool("no-color")

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&log.TextFormatter{
		DisableColors: noColor,
		FullTimestamp: true,
	})
	return nil
}

// ExitError carries the exit code of a command that already reported its
// failure
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode maps the error returned by Execute to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Execute runs the root command and prints the error it fails with, if any.
// This is called by main.main().
func Execute() error {
	cmd, err := RootCmd.ExecuteC()
	if err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			if cmd == nil {
				cmd = RootCmd
			}
			noColor, _ := cmd.Flags().GetBool("no-color")
			fmt.Fprintf(os.Stderr, "%s %v\n", output.ErrorIcon(noColor), err)
		}
		return err
	}
	return nil
}
