package indexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalbot/internal/domain"
	"legalbot/internal/table"
)

func mustTable(t *testing.T, src string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(strings.NewReader(src), ',')
	require.NoError(t, err)
	return tbl
}

func TestBuild_AllColumns(t *testing.T) {
	tbl := mustTable(t, "short_title,subject_matter_name,offence_title,offence_description,fo_max_years,fo_max_fine\n"+
		"Companies Act,Financial Laws,Fraud,  Deceptive   financial reporting ,5,1000000\n")

	corpus := Build(tbl)
	require.Equal(t, 1, corpus.Len())

	rec := corpus.Records[0]
	assert.Equal(t, domain.Text("Companies Act"), rec.ShortTitle)
	assert.Equal(t, domain.Text("Financial Laws"), rec.SubjectMatterName)
	assert.Equal(t, domain.Number(5), rec.MaxYears)
	assert.Equal(t, domain.Number(1000000), rec.MaxFine)
	assert.Equal(t, "companies act financial laws fraud deceptive financial reporting", rec.SearchText)
	assert.NotEmpty(t, rec.ID)
}

func TestBuild_MissingColumnsAreSkipped(t *testing.T) {
	tbl := mustTable(t, "offence_title,short_title\nTheft,Penal Code\n")

	rec := Build(tbl).Records[0]
	assert.False(t, rec.SubjectMatterName.Present)
	assert.False(t, rec.OffenceDescription.Present)
	assert.False(t, rec.MaxYears.Present)
	assert.False(t, rec.MaxFine.Present)
	// declared order, not file order
	assert.Equal(t, "penal code theft", rec.SearchText)
}

func TestBuild_BadNumbersBecomeAbsent(t *testing.T) {
	tbl := mustTable(t, "short_title,fo_max_years,fo_max_fine\n"+
		"A,life,1 lakh\n"+
		"B,,NaN\n"+
		"C, 2.5 ,1e5\n")

	corpus := Build(tbl)
	require.Equal(t, 3, corpus.Len())

	assert.False(t, corpus.Records[0].MaxYears.Present)
	assert.False(t, corpus.Records[0].MaxFine.Present)
	assert.False(t, corpus.Records[1].MaxYears.Present)
	assert.False(t, corpus.Records[1].MaxFine.Present)
	assert.Equal(t, domain.Number(2.5), corpus.Records[2].MaxYears)
	assert.Equal(t, domain.Number(100000), corpus.Records[2].MaxFine)
}

func TestBuild_Deterministic(t *testing.T) {
	src := "short_title,offence_title\nA,X\nB,Y\nA,X\n"
	first := Build(mustTable(t, src))
	second := Build(mustTable(t, src))
	assert.Equal(t, first, second)
	// identical rows at different positions still get distinct IDs
	assert.NotEqual(t, first.Records[0].ID, first.Records[2].ID)
	assert.Equal(t, first.Records[0].SearchText, first.Records[2].SearchText)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Hello   World ", "hello world"},
		{"Tab\tand\nnewline", "tab and newline"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"5", 5, true},
		{" 7.0 ", 7, true},
		{"-1", -1, true},
		{"abc", 0, false},
		{"", 0, false},
		{"nan", 0, false},
		{"1,000", 0, false},
		{"0x10", 0, false},
		{"0X1p4", 0, false},
		{"1_000", 0, false},
		{"1e3", 1000, true},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
