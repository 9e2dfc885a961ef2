package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/sorting"
)

func newListCmd(a *app) *cobra.Command {
	var query, key, dir, algo, format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the records, optionally filtered and sorted",
		Long: `Show the records. --query keeps those whose NIM or name contains the
keyword. Sorting here only changes what is shown; use "sort" to store a
new order.

Examples:
  student-records list
  student-records list --query=siti
  student-records list --key=gpa --dir=desc --algo=bubble --format=json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := sorting.ParseOptions(algo, key, dir)
			if err != nil {
				return err
			}

			list, err := a.records.View(query, opts)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			case "table":
				if len(list) == 0 {
					cmd.Println("Tidak ada data.")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(list))
				return nil
			default:
				return fmt.Errorf("unknown format %q (table or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "keyword matched against NIM and name")
	cmd.Flags().StringVar(&key, "key", "", "sort key: id, name or gpa (default id)")
	cmd.Flags().StringVar(&dir, "dir", "", "sort direction: asc or desc (default asc)")
	cmd.Flags().StringVar(&algo, "algo", "", "sort algorithm: bubble, insertion or merge (default merge)")
	cmd.Flags().StringVarP(&format, "format", "o", "table", "output format: table or json")
	return cmd
}
