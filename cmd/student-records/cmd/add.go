package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/validation"
)

func newAddCmd(a *app) *cobra.Command {
	var form validation.Form

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Long: `Add a student. The NIM must be 12 digits and not already taken.

Example:
  student-records add --id=200300400500 --name="Siti Aminah" \
    --gender=Perempuan --department="Teknik Informatika" --term=3 --gpa=3.75`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := validation.ParseForm(form)
			if err != nil {
				return err
			}
			if err := a.records.Insert(cmd.Context(), st); err != nil {
				return err
			}
			cmd.Println("Data berhasil ditambahkan.")
			return nil
		},
	}

	cmd.Flags().StringVar(&form.ID, "id", "", "NIM, 12 digits")
	cmd.Flags().StringVar(&form.Name, "name", "", "full name")
	cmd.Flags().StringVar(&form.Gender, "gender", "Laki-laki", "Laki-laki or Perempuan")
	cmd.Flags().StringVar(&form.Department, "department", "", "department")
	cmd.Flags().StringVar(&form.Term, "term", "1", "term, 1 to 14")
	cmd.Flags().StringVar(&form.GPA, "gpa", "0", "GPA, 0.0 to 4.0")
	return cmd
}
