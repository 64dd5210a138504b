// Package synthesis composes the narrative reply for one matched record.
package synthesis

import (
	"strings"

	"legalbot/internal/domain"
)

// DefaultCurrency prefixes fine amounts.
const DefaultCurrency = "₹"

// Synthesizer renders records. It holds no mutable state and is safe for
// concurrent use as long as each caller passes its own Rand.
type Synthesizer struct {
	book     Phrasebook
	rules    []SeverityRule
	currency string
}

type Option func(*Synthesizer)

// WithCurrency overrides the currency symbol.
func WithCurrency(symbol string) Option {
	return func(s *Synthesizer) { s.currency = symbol }
}

func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		book:     DefaultPhrasebook(),
		rules:    SeverityRules,
		currency: DefaultCurrency,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Synthesize composes the opening block, body, optional penalty block and
// disclaimer for rec matched with score. Only the opening and lead-in draw
// from rng.
func (s *Synthesizer) Synthesize(rec domain.LegalRecord, score float64, rng Rand) string {
	var b strings.Builder

	b.WriteString(pick(rng, s.book.Openings[ConfidenceTier(score)]))
	b.WriteString("\n\n")
	b.WriteString(pick(rng, s.book.leadIns(rec.SubjectMatterName.String())))
	b.WriteString(" the ")
	b.WriteString(rec.ShortTitle.String())
	b.WriteString(" provides specific guidance on this matter. This legislation specifically addresses ")
	b.WriteString(strings.ToLower(rec.OffenceTitle.String()))
	b.WriteString(". ")
	b.WriteString(strings.ToLower(rec.OffenceDescription.String()))
	b.WriteString(" ")

	if rec.HasPenalty() {
		b.WriteString("\n\n")
		b.WriteString(Classify(s.rules, rec))
		b.WriteString(". Under the law, the consequences may include ")
		b.WriteString(PenaltyClause(rec, s.currency))
		b.WriteString(".")
	}

	b.WriteString("\n\n")
	b.WriteString(s.book.Disclaimer(score))
	return b.String()
}

func pick(rng Rand, set []string) string {
	switch len(set) {
	case 0:
		return ""
	case 1:
		return set[0]
	}
	return set[rng.IntN(len(set))]
}
