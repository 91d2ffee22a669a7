package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOutputsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "List finished files in the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.layout()
			if err != nil {
				return err
			}
			files, err := layout.Outputs()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, files)
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "No output files in %s\n", layout.OutputDir())
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{f.Name, formatBytes(f.Size), f.ModTime.Local().Format("2006-01-02 15:04")})
			}
			fmt.Fprint(out, renderTable([]column{col("File"), numCol("Size"), col("Modified")}, rows))
			fmt.Fprintf(out, "Directory: %s\n", layout.OutputDir())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
