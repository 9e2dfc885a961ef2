// Package codec reads and writes the flat student data file:
//
//	NIM,NAMA,JENIS KELAMIN,JURUSAN,SEMESTER,IPK
//	200300400500,Siti Aminah,Perempuan,Informatics,3,3.75
//
// The same format is used for the persisted file and for exports.
package codec

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Header is the first line of every file, in field order.
var Header = []string{"NIM", "NAMA", "JENIS KELAMIN", "JURUSAN", "SEMESTER", "IPK"}

// NumFields is the number of columns in a row.
const NumFields = 6

// ErrBadHeader is returned by Decode when the first line is not Header.
var ErrBadHeader = errors.New("codec: unexpected header")

// Result is the outcome of a Decode.
type Result struct {
	Records []types.Student
	// Dropped counts rows that were skipped as malformed.
	Dropped int
}

// Encode writes the header followed by one line per record.
func Encode(w io.Writer, records []types.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("codec.Encode: header: %w", err)
	}
	for _, s := range records {
		if err := cw.Write(Row(s)); err != nil {
			return fmt.Errorf("codec.Encode: row %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("codec.Encode: flush: %w", err)
	}
	return nil
}

// maxLine bounds a single line of the file.
const maxLine = 1 << 20

// Decode parses a whole file. An empty input decodes to zero records.
//
// Every physical line is decoded on its own, so a broken line (an
// unterminated quote, the wrong number of fields, a term or GPA that is not
// a number) is skipped and counted in Result.Dropped without touching the
// lines after it. Records never span lines: Normalize folds line breaks
// inside text fields into spaces.
func Decode(r io.Reader) (Result, error) {
	res := Result{Records: make([]types.Student, 0)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	header := true
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields, err := splitLine(line)
		if header {
			if err != nil || !isHeader(fields) {
				return res, fmt.Errorf("%w: %q", ErrBadHeader, line)
			}
			header = false
			continue
		}
		if err != nil {
			res.Dropped++
			continue
		}

		s, err := ParseRow(fields)
		if err != nil {
			res.Dropped++
			continue
		}
		res.Records = append(res.Records, s)
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("codec.Decode: read: %w", err)
	}

	return res, nil
}

// splitLine decodes one line of the file into its fields.
func splitLine(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	return cr.Read()
}

// Row returns the fields of s in file order.
func Row(s types.Student) []string {
	return []string{
		s.ID,
		s.Name,
		string(s.Gender),
		s.Department,
		strconv.Itoa(s.Term),
		FormatGPA(s.GPA),
	}
}

// ParseRow converts one row of fields into a Student.
func ParseRow(fields []string) (types.Student, error) {
	if len(fields) != NumFields {
		return types.Student{}, fmt.Errorf("codec.ParseRow: want %d fields, got %d", NumFields, len(fields))
	}

	term, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return types.Student{}, fmt.Errorf("codec.ParseRow: term: %w", err)
	}
	gpa, err := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
	if err != nil {
		return types.Student{}, fmt.Errorf("codec.ParseRow: gpa: %w", err)
	}

	return types.Student{
		ID:         strings.TrimSpace(fields[0]),
		Name:       fields[1],
		Gender:     types.Gender(strings.TrimSpace(fields[2])),
		Department: fields[3],
		Term:       term,
		GPA:        gpa,
	}, nil
}

// MarshalRow encodes a single record as one line without the header.
func MarshalRow(s types.Student) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(Row(s)); err != nil {
		return nil, fmt.Errorf("codec.MarshalRow: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("codec.MarshalRow: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalRow decodes a line produced by MarshalRow.
func UnmarshalRow(b []byte) (types.Student, error) {
	fields, err := splitLine(strings.TrimRight(string(b), "\r\n"))
	if err != nil {
		return types.Student{}, fmt.Errorf("codec.UnmarshalRow: %w", err)
	}
	return ParseRow(fields)
}

// FormatGPA renders a GPA with exactly two decimals.
func FormatGPA(g float64) string {
	return strconv.FormatFloat(g, 'f', 2, 64)
}

func isHeader(fields []string) bool {
	if len(fields) != len(Header) {
		return false
	}
	for i, f := range fields {
		// Files saved with a UTF-8 BOM by spreadsheet tools still count.
		f = strings.TrimPrefix(f, "\ufeff")
		if !strings.EqualFold(strings.TrimSpace(f), Header[i]) {
			return false
		}
	}
	return true
}
