// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// the store, the storage backends, the codec and the HTTP handlers can all
// import types without depending on each other.
package types

import (
	"math"
	"strings"
)

// Gender is one of the two labels the data file uses for a student's sex.
type Gender string

const (
	Male   Gender = "Laki-laki"
	Female Gender = "Perempuan"
)

// Genders lists the accepted labels in the order the forms offer them.
var Genders = []Gender{Male, Female}

// Student represents one row of the student data file.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  controls how the field appears when encoded to JSON.
//
//  2. validate:"..." are the rules checked by the go-playground/validator
//     package (see internal/validation).
type Student struct {
	ID         string  `json:"id"         validate:"required,len=12,number"`
	Name       string  `json:"name"       validate:"required"`
	Gender     Gender  `json:"gender"     validate:"required,oneof=Laki-laki Perempuan"`
	Department string  `json:"department" validate:"required"`
	Term       int     `json:"term"       validate:"gte=1,lte=14"`
	GPA        float64 `json:"gpa"        validate:"gte=0,lte=4"`
}

// StudentFields is everything in a Student except the key.
// Updates carry a StudentFields because the ID never changes after creation.
type StudentFields struct {
	Name       string  `json:"name"`
	Gender     Gender  `json:"gender"`
	Department string  `json:"department"`
	Term       int     `json:"term"`
	GPA        float64 `json:"gpa"`
}

// Fields returns the non-key part of s.
func (s Student) Fields() StudentFields {
	return StudentFields{
		Name:       s.Name,
		Gender:     s.Gender,
		Department: s.Department,
		Term:       s.Term,
		GPA:        s.GPA,
	}
}

// WithFields returns a copy of s whose non-key fields are replaced by f.
func (s Student) WithFields(f StudentFields) Student {
	s.Name = f.Name
	s.Gender = f.Gender
	s.Department = f.Department
	s.Term = f.Term
	s.GPA = f.GPA
	return s
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Normalize trims the text fields and rounds the GPA to two decimal places,
// the precision the data file keeps. Line breaks inside text become spaces
// so a record always fits on one line of the file.
func (s Student) Normalize() Student {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(lineBreaks.Replace(s.Name))
	s.Gender = Gender(strings.TrimSpace(string(s.Gender)))
	s.Department = strings.TrimSpace(lineBreaks.Replace(s.Department))
	s.GPA = RoundGPA(s.GPA)
	return s
}

// RoundGPA rounds g to two decimal places.
func RoundGPA(g float64) float64 {
	return math.Round(g*100) / 100
}
