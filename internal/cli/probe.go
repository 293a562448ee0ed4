package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/hsm/internal/adapters"
	"github.com/wesleyorama2/hsm/internal/timing"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "probe <adapter>",
		Short:     "Time one request of each mode with a built-in adapter",
		Long:      `probe is what run spawns for every iteration of a built-in adapter. It prints one line of JSON timings, or an error on stderr and exits with 1.`,
		Hidden:    true,
		Args:      cobra.ExactArgs(1),
		ValidArgs: adapters.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")

			adapter, err := adapters.New(args[0])
			if err != nil {
				return err
			}
			harness, err := timing.NewHarness(adapter, url)
			if err != nil {
				return err
			}

			if code := harness.Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr()); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().String("url", "", "URL to request")

	return cmd
}
