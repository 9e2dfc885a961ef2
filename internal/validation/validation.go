// Package validation checks student input before it reaches the store.
//
// Two layers live here:
//
//   - string predicates (IsValidID, IsValidGPA, IsValidTerm, ...) used on
//     raw form or CLI input, before anything is parsed;
//   - Student, which runs the validate:"..." struct tags of types.Student
//     through go-playground/validator.
//
// Every function is pure. Failures come back as *ValidationError so the
// caller can show which field broke which rule.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/go-playground/validator/v10"
)

// Bounds of the numeric fields.
const (
	MinGPA  = 0.0
	MaxGPA  = 4.0
	MinTerm = 1
	MaxTerm = 14
)

// validate caches struct metadata, so one instance is shared.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name ("gpa") instead of the Go name ("GPA").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// IsValidID reports whether s is exactly 12 decimal digits.
func IsValidID(s string) bool {
	return validate.Var(s, "required,len=12,number") == nil
}

// IsValidGPA reports whether s parses as a number within [0.0, 4.0].
func IsValidGPA(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return false
	}
	return v >= MinGPA && v <= MaxGPA
}

// IsValidTerm reports whether s parses as an integer within [1, 14].
func IsValidTerm(s string) bool {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return v >= MinTerm && v <= MaxTerm
}

// IsValidGender reports whether s is one of the accepted gender labels.
func IsValidGender(s string) bool {
	return validate.Var(strings.TrimSpace(s), "required,oneof=Laki-laki Perempuan") == nil
}

// HasRequiredFields reports whether id, name, department and gpa are all
// non-empty once surrounding whitespace is removed.
func HasRequiredFields(id, name, department, gpa string) bool {
	for _, v := range []string{id, name, department, gpa} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Student validates a fully typed record against the rules in its struct tags.
func Student(s types.Student) error {
	return fieldErrors("validation.Student", validate.Struct(s))
}

// Fields validates the non-key part of a record. The key is left out, so a
// record loaded with an irregular NIM can still be corrected.
func Fields(f types.StudentFields) error {
	return fieldErrors("validation.Fields", validate.StructExcept(types.Student{}.WithFields(f), "ID"))
}

func fieldErrors(op string, err error) error {
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.ActualTag(),
			Message: message(fe),
		})
	}
	return verr
}

// message turns a validator.FieldError into a sentence.
func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "id":
		return "NIM harus 12 digit angka"
	case "gpa":
		return "IPK harus antara 0.0 dan 4.0"
	case "term":
		return "Semester harus antara 1 dan 14"
	case "gender":
		return "Jenis kelamin harus Laki-laki atau Perempuan"
	}

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is required", fe.Field())
	default:
		return fmt.Sprintf("field %s is invalid", fe.Field())
	}
}
