package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Run("header and rows", func(t *testing.T) {
		src := "short_title,fo_max_years\nCompanies Act,5\n\"Penal Code, 1860\",\n"
		tbl, err := ReadCSV(strings.NewReader(src), ',')
		require.NoError(t, err)
		assert.Equal(t, []string{"short_title", "fo_max_years"}, tbl.Columns())
		assert.Equal(t, 2, tbl.Len())

		v, ok := tbl.Cell(1, "short_title")
		assert.True(t, ok)
		assert.Equal(t, "Penal Code, 1860", v)

		v, ok = tbl.Cell(1, "fo_max_years")
		assert.True(t, ok)
		assert.Equal(t, "", v)
	})

	t.Run("missing column", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("a\n1\n"), ',')
		require.NoError(t, err)
		assert.False(t, tbl.HasColumn("b"))
		_, ok := tbl.Cell(0, "b")
		assert.False(t, ok)
	})

	t.Run("ragged rows are padded", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("a,b,c\n1\n1,2,3,4\n"), ',')
		require.NoError(t, err)
		v, ok := tbl.Cell(0, "c")
		assert.True(t, ok)
		assert.Equal(t, "", v)
		v, _ = tbl.Cell(1, "c")
		assert.Equal(t, "3", v)
	})

	t.Run("byte order mark is stripped", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("\ufeffshort_title\nX\n"), ',')
		require.NoError(t, err)
		assert.True(t, tbl.HasColumn("short_title"))
	})

	t.Run("custom delimiter", func(t *testing.T) {
		tbl, err := ReadCSV(strings.NewReader("a;b\n1;2\n"), ';')
		require.NoError(t, err)
		v, _ := tbl.Cell(0, "b")
		assert.Equal(t, "2", v)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""), ',')
		assert.Error(t, err)
	})
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("does-not-exist.csv", ',')
	assert.Error(t, err)
}
