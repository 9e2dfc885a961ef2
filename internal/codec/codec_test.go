package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []types.Student {
	return []types.Student{
		{ID: "200300400500", Name: "Siti Aminah", Gender: types.Female, Department: "Informatics", Term: 3, GPA: 3.75},
		{ID: "200300400501", Name: "Budi Santoso", Gender: types.Male, Department: "Teknik Sipil", Term: 14, GPA: 2},
		{ID: "200300400502", Name: "Dewi", Gender: types.Female, Department: "Hukum", Term: 1, GPA: 0},
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleRecords()[:2]))

	want := "NIM,NAMA,JENIS KELAMIN,JURUSAN,SEMESTER,IPK\n" +
		"200300400500,Siti Aminah,Perempuan,Informatics,3,3.75\n" +
		"200300400501,Budi Santoso,Laki-laki,Teknik Sipil,14,2.00\n"
	assert.Equal(t, want, buf.String())
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.Equal(t, "NIM,NAMA,JENIS KELAMIN,JURUSAN,SEMESTER,IPK\n", buf.String())
}

func TestRoundTrip(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, records))

	res, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Dropped)
	assert.Equal(t, records, res.Records)
}

func TestRoundTrip_EmbeddedComma(t *testing.T) {
	records := []types.Student{
		{ID: "200300400500", Name: "Aminah, Siti", Gender: types.Female, Department: "Informatics", Term: 3, GPA: 3.75},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, records))

	res, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, res.Records)
}

func TestDecode_SkipsMalformedRows(t *testing.T) {
	in := strings.Join([]string{
		"NIM,NAMA,JENIS KELAMIN,JURUSAN,SEMESTER,IPK",
		"200300400500,Siti Aminah,Perempuan,Informatics,3,3.75",
		"200300400501,Too,Few,Fields",
		"200300400502,Bad Term,Laki-laki,Hukum,three,3.00",
		"200300400503,Bad GPA,Laki-laki,Hukum,3,abc",
		"200300400504,Too,Many,Fields,3,3.00,extra",
		"200300400505,Budi,Laki-laki,Hukum,2,2.5",
	}, "\n")

	res, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Dropped)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "200300400500", res.Records[0].ID)
	assert.Equal(t, "200300400505", res.Records[1].ID)
	assert.Equal(t, 2.5, res.Records[1].GPA)
}

func TestDecode_Empty(t *testing.T) {
	res, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, res.Records)

	res, err = Decode(strings.NewReader("NIM,NAMA,JENIS KELAMIN,JURUSAN,SEMESTER,IPK\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestDecode_BadHeader(t *testing.T) {
	_, err := Decode(strings.NewReader("id,name\n1,2\n"))
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestDecode_HeaderCaseInsensitive(t *testing.T) {
	in := "\ufeffnim,nama,jenis kelamin,jurusan,semester,ipk\n200300400500,Siti,Perempuan,Informatics,3,3.75\n"
	res, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
}

func TestMarshalRow(t *testing.T) {
	s := sampleRecords()[0]

	b, err := MarshalRow(s)
	require.NoError(t, err)
	assert.Equal(t, "200300400500,Siti Aminah,Perempuan,Informatics,3,3.75\n", string(b))

	got, err := UnmarshalRow(b)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestDecode_UnterminatedQuoteKeepsLaterRows(t *testing.T) {
	in := strings.Join([]string{
		"NIM,NAMA,JENIS KELAMIN,JURUSAN,SEMESTER,IPK",
		`111111111111,"Budi,Laki-laki,X,3,3.00`,
		"200300400500,Siti Aminah,Perempuan,Informatics,3,3.75",
		`200300400501,"Santoso, Budi",Laki-laki,Hukum,2,2.50`,
	}, "\r\n")

	res, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "200300400500", res.Records[0].ID)
	assert.Equal(t, "Santoso, Budi", res.Records[1].Name)
}

func TestDecode_SkipsBlankLines(t *testing.T) {
	in := "\nNIM,NAMA,JENIS KELAMIN,JURUSAN,SEMESTER,IPK\n\n200300400500,Siti,Perempuan,Informatics,3,3.75\n\n"
	res, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	assert.Zero(t, res.Dropped)
	assert.Len(t, res.Records, 1)
}
