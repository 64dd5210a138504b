package synthesis

import (
	"strings"

	"legalbot/internal/domain"
)

// SeverityRule labels a record whose penalty reaches either bound.
type SeverityRule struct {
	MinYears float64
	MinFine  float64
	Label    string
}

// Matches reports whether max_years >= MinYears or max_fine >= MinFine.
func (r SeverityRule) Matches(rec domain.LegalRecord) bool {
	return rec.MaxYears.AtLeast(r.MinYears) || rec.MaxFine.AtLeast(r.MinFine)
}

// DefaultSeverity is used when no rule matches.
const DefaultSeverity = "This is treated as a legal violation"

// SeverityRules is ordered most severe first.
var SeverityRules = []SeverityRule{
	{MinYears: 5, MinFine: 500000, Label: "This is considered a serious offense"},
	{MinYears: 3, MinFine: 300000, Label: "This is treated as a significant violation"},
	{MinYears: 1, MinFine: 100000, Label: "This is classified as a regulatory infraction"},
}

// Classify returns the label of the first matching rule.
func Classify(rules []SeverityRule, rec domain.LegalRecord) string {
	for _, r := range rules {
		if r.Matches(rec) {
			return r.Label
		}
	}
	return DefaultSeverity
}

// Penalties renders the known penalty fragments in years, fine order.
func Penalties(rec domain.LegalRecord, currency string) []string {
	var out []string
	if rec.MaxYears.Present {
		unit := "years"
		if rec.MaxYears.Value == 1 {
			unit = "year"
		}
		out = append(out, "imprisonment for up to "+rec.MaxYears.String()+" "+unit)
	}
	if rec.MaxFine.Present {
		out = append(out, "monetary penalties reaching "+currency+rec.MaxFine.String())
	}
	return out
}

// PenaltyClause is joined with "and"; empty when no penalty is known.
func PenaltyClause(rec domain.LegalRecord, currency string) string {
	return strings.Join(Penalties(rec, currency), " and ")
}
