package validation

import (
	"strconv"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Form is a student record as typed by a user: every field is still text.
type Form struct {
	ID         string
	Name       string
	Gender     string
	Department string
	Term       string
	GPA        string
}

// ParseForm checks raw input and converts it to a normalized Student.
// Checks run in the order the entry form reports them and stop at the first
// failure, so the user sees one message at a time.
func ParseForm(f Form) (types.Student, error) {
	if !HasRequiredFields(f.ID, f.Name, f.Department, f.GPA) {
		return types.Student{}, Invalid("form", "required", "Semua field harus diisi")
	}
	if !IsValidID(strings.TrimSpace(f.ID)) {
		return types.Student{}, Invalid("id", "len", "NIM harus 12 digit angka")
	}

	fields, err := ParseFields(f.Name, f.Gender, f.Department, f.Term, f.GPA)
	if err != nil {
		return types.Student{}, err
	}
	return types.Student{ID: strings.TrimSpace(f.ID)}.WithFields(fields), nil
}

// ParseFields checks and converts the non-key fields used by an update.
// An empty term defaults to 1, as the entry form does.
func ParseFields(name, gender, department, term, gpa string) (types.StudentFields, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(department) == "" {
		return types.StudentFields{}, Invalid("form", "required", "Nama dan Jurusan harus diisi")
	}

	if strings.TrimSpace(term) == "" {
		term = strconv.Itoa(MinTerm)
	}
	if !IsValidTerm(term) {
		return types.StudentFields{}, Invalid("term", "range", "Semester harus antara 1 dan 14")
	}
	if !IsValidGPA(gpa) {
		return types.StudentFields{}, Invalid("gpa", "range", "IPK harus antara 0.0 dan 4.0")
	}
	if !IsValidGender(gender) {
		return types.StudentFields{}, Invalid("gender", "oneof", "Jenis kelamin harus Laki-laki atau Perempuan")
	}

	t, _ := strconv.Atoi(strings.TrimSpace(term))
	g, _ := strconv.ParseFloat(strings.TrimSpace(gpa), 64)

	return types.StudentFields{
		Name:       strings.TrimSpace(name),
		Gender:     types.Gender(strings.TrimSpace(gender)),
		Department: strings.TrimSpace(department),
		Term:       t,
		GPA:        types.RoundGPA(g),
	}, nil
}
