package cmd

import "github.com/spf13/cobra"

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <nim>",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.records.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Println("Data berhasil dihapus.")
			return nil
		},
	}
}
