// Package sorting orders student records by one key with one of three
// interchangeable algorithms.
//
// Bubble and Insertion reorder the given slice in place. Merge is stable and
// returns a new slice. All three produce the same order for a key and
// direction, except that only Merge promises to keep equal keys in their
// original relative order.
package sorting

import (
	"fmt"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Algorithm selects how Sort orders the records.
type Algorithm string

const (
	Bubble    Algorithm = "bubble"
	Insertion Algorithm = "insertion"
	Merge     Algorithm = "merge"
)

// Key selects which field records are compared on.
type Key string

const (
	KeyID   Key = "id"
	KeyName Key = "name"
	KeyGPA  Key = "gpa"
)

// Direction selects ascending or descending order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Options groups the three choices a caller makes.
type Options struct {
	Algorithm Algorithm
	Key       Key
	Direction Direction
}

// DefaultOptions sorts by NIM, ascending, with merge sort.
func DefaultOptions() Options {
	return Options{Algorithm: Merge, Key: KeyID, Direction: Ascending}
}

// Validate reports whether every choice in o is known.
func (o Options) Validate() error {
	_, err := o.Canonical()
	return err
}

// Canonical returns o with every choice mapped to its constant, so aliases
// and case variants ("IPK", "DESC") select the same order as "gpa" and
// "desc".
func (o Options) Canonical() (Options, error) {
	var (
		c   Options
		err error
	)
	if c.Algorithm, err = ParseAlgorithm(string(o.Algorithm)); err != nil {
		return Options{}, err
	}
	if c.Key, err = ParseKey(string(o.Key)); err != nil {
		return Options{}, err
	}
	if c.Direction, err = ParseDirection(string(o.Direction)); err != nil {
		return Options{}, err
	}
	return c, nil
}

// ParseOptions builds Options from user input. Empty values fall back to
// DefaultOptions.
func ParseOptions(algorithm, key, direction string) (Options, error) {
	o := DefaultOptions()
	var err error
	if strings.TrimSpace(algorithm) != "" {
		if o.Algorithm, err = ParseAlgorithm(algorithm); err != nil {
			return Options{}, err
		}
	}
	if strings.TrimSpace(key) != "" {
		if o.Key, err = ParseKey(key); err != nil {
			return Options{}, err
		}
	}
	if strings.TrimSpace(direction) != "" {
		if o.Direction, err = ParseDirection(direction); err != nil {
			return Options{}, err
		}
	}
	return o, nil
}

// ParseAlgorithm maps user input to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bubble":
		return Bubble, nil
	case "insertion":
		return Insertion, nil
	case "merge":
		return Merge, nil
	}
	return "", fmt.Errorf("sorting: unknown algorithm %q", s)
}

// ParseKey maps user input to a Key. The file's column names are accepted too.
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "id", "nim":
		return KeyID, nil
	case "name", "nama":
		return KeyName, nil
	case "gpa", "ipk":
		return KeyGPA, nil
	}
	return "", fmt.Errorf("sorting: unknown key %q", s)
}

// ParseDirection maps user input to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("sorting: unknown direction %q", s)
}

// Sort orders records according to o and returns the ordered slice.
// For Bubble and Insertion that is records itself; for Merge it is a new
// slice and records is left untouched. Unknown options are an error.
func Sort(records []types.Student, o Options) ([]types.Student, error) {
	o, err := o.Canonical()
	if err != nil {
		return nil, err
	}

	less := lessFunc(o.Key, o.Direction)

	switch o.Algorithm {
	case Bubble:
		bubbleSort(records, less)
		return records, nil
	case Insertion:
		insertionSort(records, less)
		return records, nil
	default:
		return mergeSort(records, less), nil
	}
}

// lessFn reports whether a belongs strictly before b.
type lessFn func(a, b types.Student) bool

func lessFunc(k Key, d Direction) lessFn {
	var less lessFn
	switch k {
	case KeyName:
		less = func(a, b types.Student) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case KeyGPA:
		less = func(a, b types.Student) bool { return a.GPA < b.GPA }
	default:
		less = func(a, b types.Student) bool { return a.ID < b.ID }
	}

	if d == Descending {
		return func(a, b types.Student) bool { return less(b, a) }
	}
	return less
}
