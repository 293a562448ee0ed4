package cli

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tests run can select",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Test", "Command"})
			for _, name := range reg.Names() {
				def, _ := reg.Lookup(name)
				t.AppendRow(table.Row{name, strings.Join(def.Argv(cfg.URL), " ")})
			}
			if noColor {
				t.SetStyle(table.StyleDefault)
			} else {
				t.SetStyle(table.StyleColoredBright)
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file (YAML, JSON or TOML)")
	cmd.Flags().String("tests-dir", "", "Directory with script tests")
	cmd.Flags().StringP("url", "u", "", "URL shown in the commands")

	return cmd
}
