// Package indexer turns rows of a legal provisions table into corpus records.
package indexer

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"legalbot/internal/domain"
	"legalbot/internal/table"
)

// Source column names.
const (
	ColumnShortTitle         = "short_title"
	ColumnSubjectMatterName  = "subject_matter_name"
	ColumnOffenceTitle       = "offence_title"
	ColumnOffenceDescription = "offence_description"
	ColumnMaxYears           = "fo_max_years"
	ColumnMaxFine            = "fo_max_fine"
)

// SearchColumns lists the text columns concatenated into the search text,
// in concatenation order.
var SearchColumns = []string{
	ColumnShortTitle,
	ColumnSubjectMatterName,
	ColumnOffenceTitle,
	ColumnOffenceDescription,
}

// recordNamespace seeds the name-based record IDs.
var recordNamespace = uuid.MustParse("5b0c3c1e-8f1d-4b7e-9a57-4c1f2d6e8a10")

// Build indexes every row of t. Missing columns and unparsable numbers never
// fail the build; they surface as absent fields.
func Build(t *table.Table) domain.Corpus {
	records := make([]domain.LegalRecord, t.Len())
	for i := range records {
		records[i] = buildRecord(t, i)
	}
	return domain.Corpus{Records: records}
}

func buildRecord(t *table.Table, i int) domain.LegalRecord {
	rec := domain.LegalRecord{
		ShortTitle:         textField(t, i, ColumnShortTitle),
		SubjectMatterName:  textField(t, i, ColumnSubjectMatterName),
		OffenceTitle:       textField(t, i, ColumnOffenceTitle),
		OffenceDescription: textField(t, i, ColumnOffenceDescription),
		MaxYears:           numberField(t, i, ColumnMaxYears),
		MaxFine:            numberField(t, i, ColumnMaxFine),
	}
	rec.SearchText = SearchText(t, i)
	rec.ID = uuid.NewSHA1(recordNamespace, []byte(strconv.Itoa(i)+"\x00"+rec.SearchText)).String()
	return rec
}

// SearchText joins the search columns present in t for row i with single
// spaces, lowercases the result and collapses whitespace runs.
func SearchText(t *table.Table, i int) string {
	parts := make([]string, 0, len(SearchColumns))
	for _, col := range SearchColumns {
		if v, ok := t.Cell(i, col); ok {
			parts = append(parts, v)
		}
	}
	return Normalize(strings.Join(parts, " "))
}

// Normalize lowercases s, trims it and collapses internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func textField(t *table.Table, i int, col string) domain.OptionalText {
	v, ok := t.Cell(i, col)
	if !ok {
		return domain.OptionalText{}
	}
	return domain.Text(v)
}

func numberField(t *table.Table, i int, col string) domain.OptionalNumber {
	v, ok := t.Cell(i, col)
	if !ok {
		return domain.OptionalNumber{}
	}
	n, ok := ParseNumber(v)
	if !ok {
		return domain.OptionalNumber{}
	}
	return domain.Number(n)
}

// ParseNumber coerces a cell to a decimal number. Blank, NaN and non-numeric
// cells report ok=false, as do Go literal forms such as "0x10" and "1_000".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
