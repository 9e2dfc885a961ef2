// student-records manages a list of students (NIM, name, gender,
// department, term, GPA) persisted in a CSV file, SQLite or Pebble.
//
//	student-records serve --config=config/local.yaml
//	student-records list --key=gpa --dir=desc
//	student-records add --id=200300400500 --name="Siti Aminah" ...
//
// Configuration comes from --config, else CONFIG_PATH, else environment
// variables and defaults alone. A .env file in the working directory is
// loaded first.
package main

import "github.com/aanand-mishra/student-records/cmd/student-records/cmd"

func main() {
	cmd.Execute()
}
