package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionalNumber(t *testing.T) {
	assert.Equal(t, "5", Number(5).String())
	assert.Equal(t, "1000000", Number(1000000).String())
	assert.Equal(t, "2.5", Number(2.5).String())
	assert.Equal(t, "", OptionalNumber{}.String())

	assert.True(t, Number(5).AtLeast(5))
	assert.False(t, Number(4.99).AtLeast(5))
	assert.False(t, OptionalNumber{}.AtLeast(-1), "absent never satisfies a bound")
}

func TestOptionalText(t *testing.T) {
	assert.Equal(t, "Fraud", Text("Fraud").String())
	assert.Equal(t, "", OptionalText{Value: "stale"}.String())
}

func TestLegalRecord_HasPenalty(t *testing.T) {
	assert.False(t, LegalRecord{}.HasPenalty())
	assert.True(t, LegalRecord{MaxFine: Number(0)}.HasPenalty())
	assert.True(t, LegalRecord{MaxYears: Number(1)}.HasPenalty())
}

func TestCorpus(t *testing.T) {
	c := Corpus{Records: []LegalRecord{{SearchText: "a"}, {SearchText: "b"}}}
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.Texts())

	r, ok := c.Record(1)
	assert.True(t, ok)
	assert.Equal(t, "b", r.SearchText)
	_, ok = c.Record(2)
	assert.False(t, ok)
	_, ok = c.Record(-1)
	assert.False(t, ok)
}

func TestRetrievalConfig_Normalize(t *testing.T) {
	assert.Equal(t, DefaultTopK, RetrievalConfig{TopK: 0}.Normalize().TopK)
	assert.Equal(t, DefaultTopK, RetrievalConfig{TopK: -4}.Normalize().TopK)
	assert.Equal(t, 7, RetrievalConfig{TopK: 7}.Normalize().TopK)
	assert.Equal(t, RetrievalConfig{Threshold: 0.5, TopK: 3}, DefaultRetrievalConfig())
}
