package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/store"
	"github.com/aanand-mishra/student-records/internal/validation"
)

func newUpdateCmd(a *app) *cobra.Command {
	var name, gender, department, term, gpa string

	cmd := &cobra.Command{
		Use:   "update <nim>",
		Short: "Change a student's details",
		Long: `Change the details of the student with the given NIM. Fields without a
flag keep their current value; the NIM itself cannot change.

Example:
  student-records update 200300400500 --name="Siti A." --gpa=3.8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			cur, ok := a.records.FindByID(id)
			if !ok {
				return fmt.Errorf("%w: %s", store.ErrNotFound, id)
			}

			flags := cmd.Flags()
			pick := func(flag, value, current string) string {
				if flags.Changed(flag) {
					return value
				}
				return current
			}

			fields, err := validation.ParseFields(
				pick("name", name, cur.Name),
				pick("gender", gender, string(cur.Gender)),
				pick("department", department, cur.Department),
				pick("term", term, strconv.Itoa(cur.Term)),
				pick("gpa", gpa, codec.FormatGPA(cur.GPA)),
			)
			if err != nil {
				return err
			}
			if err := a.records.Update(cmd.Context(), id, fields); err != nil {
				return err
			}
			cmd.Println("Data berhasil diperbarui.")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&gender, "gender", "", "Laki-laki or Perempuan")
	cmd.Flags().StringVar(&department, "department", "", "department")
	cmd.Flags().StringVar(&term, "term", "", "term, 1 to 14")
	cmd.Flags().StringVar(&gpa, "gpa", "", "GPA, 0.0 to 4.0")
	return cmd
}
