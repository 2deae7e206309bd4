package i18n

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestLookupFallsBackToCode(t *testing.T) {
	table := Table{"M001": {"en": "Ravi Kumar"}}
	for _, lang := range []string{"en", "ta", "fr", ""} {
		assert.Equal(t, "M999", Lookup(table, "M999", lang))
	}
	assert.Equal(t, "M001", Lookup(table, "M001", "ta"))
	assert.Equal(t, "Ravi Kumar", Lookup(table, "M001", "en"))
	assert.Equal(t, "X", Lookup(nil, "X", "en"))
}

func TestLoadStore(t *testing.T) {
	s := LoadStore("testdata/mappings", quietLogger())

	assert.Equal(t, "ரவி குமார்", s.MemberName("M001", "ta"))
	assert.Equal(t, "Priya Raman", s.MemberName("M002", "en"))
	assert.Equal(t, "M002", s.MemberName("M002", "ta"))

	assert.Equal(t, "எச்டிஎஃப்சி வங்கி", s.StockName("INE040A01034", "ta"))
	assert.Equal(t, "INE009A01021", s.StockName("INE009A01021", "ta"))

	assert.Equal(t, "முதலீடு", s.Text("Investment", "ta"))
	assert.Equal(t, "HPR", s.Text("HPR", "ta"))
}

func TestSectorNameScansByEnglishValue(t *testing.T) {
	s := LoadStore("testdata/mappings", quietLogger())

	// keys are lowercase slugs; lookups go through the English label
	assert.Equal(t, "வங்கி", s.SectorName("Banking", "ta"))
	assert.Equal(t, "banking", s.SectorName("banking", "ta"))
	assert.Equal(t, "Information Technology", s.SectorName("Information Technology", "en"))
	assert.Equal(t, "Pharmaceuticals", s.SectorName("Pharmaceuticals", "ta"))
	assert.Equal(t, "Energy", s.SectorName("Energy", "ta"))
}

func TestSectorNameDuplicateEnglishResolvesBySortedKey(t *testing.T) {
	s := NewStore(nil, Table{
		"b": {"en": "Metals", "ta": "second"},
		"a": {"en": "Metals", "ta": "first"},
		"c": {"ta": "no english"},
	}, nil, nil)
	assert.Equal(t, "first", s.SectorName("Metals", "ta"))
	assert.Equal(t, "", s.SectorName("", "ta"))
}

func TestLoadStoreDegradesToPassThrough(t *testing.T) {
	for _, dir := range []string{"testdata/does-not-exist", "testdata/broken"} {
		s := LoadStore(dir, quietLogger())
		assert.Equal(t, "M001", s.MemberName("M001", "en"), dir)
		assert.Equal(t, "Banking", s.SectorName("Banking", "ta"), dir)
		assert.Equal(t, "INE040A01034", s.StockName("INE040A01034", "ta"), dir)
		assert.Equal(t, "Investment", s.Text("Investment", "ta"), dir)
	}
}

func TestTexts(t *testing.T) {
	s := LoadStore("testdata/mappings", quietLogger())
	texts := s.Texts("ta")
	assert.Equal(t, "போர்ட்ஃபோலியோ சுருக்கம்", texts["Portfolio Summary"])
	assert.Len(t, texts, 2)
}

func TestMatch(t *testing.T) {
	assert.Equal(t, "ta", Match("ta", ""))
	assert.Equal(t, "en", Match("", ""))
	assert.Equal(t, "ta", Match("", "ta-IN,ta;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", Match("", "en-GB"))
	assert.Equal(t, "en", Match("xx", ""))
	assert.True(t, Supported("en"))
	assert.False(t, Supported("fr"))
}
