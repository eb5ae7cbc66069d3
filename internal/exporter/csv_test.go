package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name: "basic write with headers",
			options: WriteOptions{
				Headers: []string{"Name", "Age", "City"},
				Records: [][]string{
					{"John", "25", "New York"},
					{"Jane", "30", "London"},
				},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 3)
				assert.Equal(t, "Name,Age,City", lines[0])
				assert.Equal(t, "John,25,New York", lines[1])
				assert.Equal(t, "Jane,30,London", lines[2])
			},
		},
		{
			name: "write with BOM prefix",
			options: WriteOptions{
				Headers:   []string{"Region", "Total"},
				Records:   [][]string{{"North", "150.25"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				require.True(t, bytes.HasPrefix(content, utf8BOM))
				lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
				assert.Equal(t, "Region,Total", lines[0])
				assert.Equal(t, "North,150.25", lines[1])
			},
		},
		{
			name: "write without headers",
			options: WriteOptions{
				Records: [][]string{{"Data1", "Data2"}, {"Data3", "Data4"}},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Equal(t, []string{"Data1,Data2", "Data3,Data4"}, lines)
			},
		},
		{
			name: "empty records",
			options: WriteOptions{
				Headers: []string{"Col1", "Col2"},
				Records: [][]string{},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Col1,Col2", strings.TrimSpace(string(content)))
			},
		},
	}

	writer := NewCSVWriter(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")
			require.NoError(t, writer.WriteCSV(path, tt.options))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_TruncatesExistingFile(t *testing.T) {
	writer := NewCSVWriter(nil)
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, writer.WriteSimpleCSV(path, []string{"A"}, [][]string{{"1"}, {"2"}, {"3"}}))
	require.NoError(t, writer.WriteSimpleCSV(path, []string{"A"}, [][]string{{"9"}}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\n9", strings.TrimSpace(string(content[3:])))
}

func TestCSVWriter_SpecialCharacters(t *testing.T) {
	writer := NewCSVWriter(nil)
	path := filepath.Join(t.TempDir(), "special.csv")

	headers := []string{"Name", "Description", "Notes"}
	records := [][]string{
		{"Company, Inc", `Description with "quotes"`, "Notes with\nnewlines"},
		{"Åpple", "Ünïcödé", "tabs\tinside"},
	}
	require.NoError(t, writer.WriteSimpleCSV(path, headers, records))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	all, err := csv.NewReader(bytes.NewReader(content[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, headers, all[0])
	assert.Equal(t, records[0], all[1])
	assert.Equal(t, records[1], all[2])
}
