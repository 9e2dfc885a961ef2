package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/sorting"
)

func newSortCmd(a *app) *cobra.Command {
	var key, dir, algo string

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Reorder the stored records",
		Long: `Reorder the records and save the new order.

Example:
  student-records sort --key=gpa --dir=desc --algo=merge`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := sorting.ParseOptions(algo, key, dir)
			if err != nil {
				return err
			}
			if err := a.records.Sort(cmd.Context(), opts); err != nil {
				return err
			}
			cmd.Printf("Data diurutkan berdasarkan %s (%s, %s).\n", opts.Key, opts.Direction, opts.Algorithm)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "sort key: id, name or gpa (default id)")
	cmd.Flags().StringVar(&dir, "dir", "", "sort direction: asc or desc (default asc)")
	cmd.Flags().StringVar(&algo, "algo", "", "sort algorithm: bubble, insertion or merge (default merge)")
	return cmd
}
