package validation

import (
	"testing"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "twelve digits", in: "123456789012", want: true},
		{name: "too short", in: "12345", want: false},
		{name: "letter", in: "12345678901a", want: false},
		{name: "too long", in: "1234567890123", want: false},
		{name: "sign", in: "+12345678901", want: false},
		{name: "empty", in: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidID(tt.in))
		})
	}
}

func TestIsValidGPA(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"4.00", true},
		{"0", true},
		{"3.75", true},
		{" 2.5 ", true},
		{"4.01", false},
		{"-0.01", false},
		{"abc", false},
		{"", false},
		{"NaN", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidGPA(tt.in))
		})
	}
}

func TestIsValidTerm(t *testing.T) {
	assert.True(t, IsValidTerm("1"))
	assert.True(t, IsValidTerm("14"))
	assert.False(t, IsValidTerm("0"))
	assert.False(t, IsValidTerm("15"))
	assert.False(t, IsValidTerm("3.5"))
	assert.False(t, IsValidTerm("x"))
}

func TestHasRequiredFields(t *testing.T) {
	assert.True(t, HasRequiredFields("1", "a", "b", "3"))
	assert.False(t, HasRequiredFields("1", "  ", "b", "3"))
	assert.False(t, HasRequiredFields("", "a", "b", "3"))
}

func TestStudent(t *testing.T) {
	valid := types.Student{
		ID:         "200300400500",
		Name:       "Siti Aminah",
		Gender:     types.Female,
		Department: "Informatics",
		Term:       3,
		GPA:        3.75,
	}
	require.NoError(t, Student(valid))

	bad := valid
	bad.ID = "123"
	bad.GPA = 4.5
	bad.Term = 0

	err := Student(bad)
	require.Error(t, err)

	verr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has("id"))
	assert.True(t, verr.Has("gpa"))
	assert.True(t, verr.Has("term"))
	assert.False(t, verr.Has("name"))
	assert.Contains(t, err.Error(), "IPK harus antara 0.0 dan 4.0")
}

func TestParseForm(t *testing.T) {
	form := Form{
		ID:         " 200300400500 ",
		Name:       " Siti Aminah ",
		Gender:     "Perempuan",
		Department: "Informatics",
		Term:       "3",
		GPA:        "3.754",
	}

	s, err := ParseForm(form)
	require.NoError(t, err)
	assert.Equal(t, "200300400500", s.ID)
	assert.Equal(t, "Siti Aminah", s.Name)
	assert.Equal(t, types.Female, s.Gender)
	assert.Equal(t, 3, s.Term)
	assert.Equal(t, 3.75, s.GPA)

	t.Run("missing field", func(t *testing.T) {
		f := form
		f.Department = " "
		_, err := ParseForm(f)
		verr, ok := AsValidationError(err)
		require.True(t, ok)
		assert.True(t, verr.Has("form"))
	})

	t.Run("bad id", func(t *testing.T) {
		f := form
		f.ID = "12345"
		_, err := ParseForm(f)
		verr, ok := AsValidationError(err)
		require.True(t, ok)
		assert.True(t, verr.Has("id"))
	})

	t.Run("bad gpa", func(t *testing.T) {
		f := form
		f.GPA = "4.01"
		_, err := ParseForm(f)
		verr, ok := AsValidationError(err)
		require.True(t, ok)
		assert.True(t, verr.Has("gpa"))
	})

	t.Run("bad gender", func(t *testing.T) {
		f := form
		f.Gender = "X"
		_, err := ParseForm(f)
		verr, ok := AsValidationError(err)
		require.True(t, ok)
		assert.True(t, verr.Has("gender"))
	})

	t.Run("empty term defaults to one", func(t *testing.T) {
		f := form
		f.Term = ""
		s, err := ParseForm(f)
		require.NoError(t, err)
		assert.Equal(t, 1, s.Term)
	})
}

func TestFields(t *testing.T) {
	f := types.StudentFields{Name: "Siti", Gender: types.Female, Department: "Informatics", Term: 3, GPA: 3.75}
	assert.NoError(t, Fields(f))

	f.Term = 0
	f.GPA = 4.5
	var verr *ValidationError
	require.ErrorAs(t, Fields(f), &verr)
	require.Len(t, verr.Fields, 2)
	for _, fe := range verr.Fields {
		assert.NotEqual(t, "id", fe.Field)
	}
}
