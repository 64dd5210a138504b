package domain

import "strconv"

// OptionalText is a text field whose column may be missing from the source table.
type OptionalText struct {
	Value   string
	Present bool
}

// Text returns a present text field.
func Text(v string) OptionalText { return OptionalText{Value: v, Present: true} }

// String returns the value, or "" when the field is absent.
func (t OptionalText) String() string {
	if !t.Present {
		return ""
	}
	return t.Value
}

// OptionalNumber is a numeric field that is absent when the source cell is
// missing or not a number.
type OptionalNumber struct {
	Value   float64
	Present bool
}

// Number returns a present numeric field.
func Number(v float64) OptionalNumber { return OptionalNumber{Value: v, Present: true} }

// AtLeast reports whether the field is present and >= bound.
func (n OptionalNumber) AtLeast(bound float64) bool {
	return n.Present && n.Value >= bound
}

// String renders the number without a trailing ".0"; absent renders "".
func (n OptionalNumber) String() string {
	if !n.Present {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// LegalRecord is one indexed provision. It is never mutated after indexing.
type LegalRecord struct {
	ID                 string
	ShortTitle         OptionalText
	SubjectMatterName  OptionalText
	OffenceTitle       OptionalText
	OffenceDescription OptionalText
	MaxYears           OptionalNumber
	MaxFine            OptionalNumber
	// SearchText is the normalized string that gets embedded.
	SearchText string
}

// HasPenalty reports whether either penalty bound is known.
func (r LegalRecord) HasPenalty() bool {
	return r.MaxYears.Present || r.MaxFine.Present
}

// Corpus is the ordered sequence of indexed records. Position i pairs with
// row i of the embedding matrix held by the vector store.
type Corpus struct {
	Records []LegalRecord
}

// Len returns the number of records.
func (c Corpus) Len() int { return len(c.Records) }

// Record returns the record at index i.
func (c Corpus) Record(i int) (LegalRecord, bool) {
	if i < 0 || i >= len(c.Records) {
		return LegalRecord{}, false
	}
	return c.Records[i], true
}

// Texts returns the search texts of the corpus in record order.
func (c Corpus) Texts() []string {
	out := make([]string, len(c.Records))
	for i, r := range c.Records {
		out[i] = r.SearchText
	}
	return out
}
