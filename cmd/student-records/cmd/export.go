package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every record as CSV",
		Long: `Write every record, unfiltered and in stored order, in the CSV file
format. Without --output the CSV goes to stdout.

Example:
  student-records export --output=data_mahasiswa.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return a.records.Export(cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := a.records.Export(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			cmd.PrintErrf("Data diekspor ke %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}
