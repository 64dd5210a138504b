package synthesis

// Tier is the confidence band of a match score.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// ConfidenceTier maps a score to its tier: > 0.7 high, > 0.5 medium, else low.
func ConfidenceTier(score float64) Tier {
	switch {
	case score > 0.7:
		return TierHigh
	case score > 0.5:
		return TierMedium
	default:
		return TierLow
	}
}

// Phrasebook holds the candidate sentences a response is assembled from.
type Phrasebook struct {
	Openings      map[Tier][]string
	LeadIns       map[string][]string
	DefaultLeadIn []string
	Confident     string
	General       string
}

// DefaultPhrasebook returns the stock English phrasebook.
func DefaultPhrasebook() Phrasebook {
	return Phrasebook{
		Openings: map[Tier][]string{
			TierHigh: {
				"I'm quite confident I can help you with this.",
				"I've found some very relevant legal information for you.",
				"Let me share some important legal insights about this.",
			},
			TierMedium: {
				"I've found some information that might help answer your question.",
				"Based on my analysis, here's what I understand about your query.",
				"Let me share what I've found in the legal documents.",
			},
			TierLow: {
				"While this might not be exactly what you're looking for,",
				"I found some potentially relevant information,",
				"Here's what I could find that might be helpful,",
			},
		},
		LeadIns: map[string][]string{
			"Financial Laws": {
				"In the realm of financial regulations,",
				"When it comes to financial matters,",
				"Under financial law provisions,",
			},
			"Criminal Laws": {
				"In criminal justice matters,",
				"Under criminal law provisions,",
				"From a criminal law perspective,",
			},
		},
		DefaultLeadIn: []string{"According to the relevant legislation,"},
		Confident: "⚖️ While I'm confident in this interpretation, please note that " +
			"legal matters can be complex. It's advisable to consult with a legal " +
			"professional for specific guidance tailored to your situation.",
		General: "⚖️ Please note that this information is for general guidance only. " +
			"Given the complexity of legal matters, it's essential to consult with " +
			"a qualified legal professional for advice specific to your circumstances.",
	}
}

// leadIns resolves the lead-in set for a subject, falling back to the default set.
func (p Phrasebook) leadIns(subject string) []string {
	if set, ok := p.LeadIns[subject]; ok && len(set) > 0 {
		return set
	}
	return p.DefaultLeadIn
}

// Disclaimer returns the confident variant for scores above 0.8, the general one otherwise.
func (p Phrasebook) Disclaimer(score float64) string {
	if score > 0.8 {
		return p.Confident
	}
	return p.General
}
