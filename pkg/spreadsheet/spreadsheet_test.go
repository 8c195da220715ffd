package spreadsheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	input := "\xef\xbb\xbfID,Name,Male\n1024,Ahmad,1\n,,\n2048,Sara\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Name", "Male"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1024", "Ahmad", "1"}, table.Rows[0])
	assert.Equal(t, []string{"2048", "Sara"}, table.Rows[1])
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"ID", "Name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"7", "Layla"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := Read(bytes.NewReader(buf.Bytes()), "students.xlsx", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Name"}, table.Header)
	assert.Equal(t, [][]string{{"7", "Layla"}}, table.Rows)
}

func TestDetectFormat(t *testing.T) {
	format, err := DetectFormat("Roster.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	_, err = DetectFormat("roster.ods")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
