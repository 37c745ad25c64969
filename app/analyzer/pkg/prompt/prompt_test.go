package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguages(t *testing.T) {
	tests := []struct {
		target, second string
		bilingual      bool
		wantT, wantS   string
	}{
		{"tr", "en", true, "tr", "en"},
		{"tr", "en", false, "tr", ""},
		{"EN", "en", true, "en", ""},
		{"", "de", true, "tr", "de"},
	}
	for _, tt := range tests {
		gotT, gotS := NormalizeLanguages(tt.target, tt.second, tt.bilingual)
		assert.Equal(t, tt.wantT, gotT)
		assert.Equal(t, tt.wantS, gotS)
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "ON", " yes "} {
		assert.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"", "0", "no", "off"} {
		assert.False(t, ParseBool(s), s)
	}
}

func TestLanguageInstruction(t *testing.T) {
	single := LanguageInstruction("de", "", SourcePDF)
	assert.Contains(t, single, "Almanca")
	assert.Contains(t, single, "tek dilli")

	dual := LanguageInstruction("tr", "en", SourceComplaint)
	assert.Contains(t, dual, "İngilizce")
	assert.Contains(t, dual, "İKİ DİLLİ")

	auto := LanguageInstruction("auto", "", SourceComplaint)
	assert.Contains(t, auto, "verilen metnin")
}

func TestPDFSystemCards_ListsEverySystem(t *testing.T) {
	systems := []string{"Tiroid", "Göz", "Cilt"}
	p := PDFSystemCards("device text", systems, Input{TargetLang: "tr", BrandLabel: "OneMore International", Products: []string{"Dekamin"}})
	assert.Contains(t, p, "- Kart 1: Tiroid")
	assert.Contains(t, p, "- Kart 3: Cilt")
	assert.Contains(t, p, "3 sistemin")
	assert.Contains(t, p, "- Dekamin")
	assert.Contains(t, p, "device text")
}

func TestBrandRules_Unbranded(t *testing.T) {
	p := Complaint("baş ağrısı", Input{TargetLang: "tr", Unbranded: true, Products: []string{"omega-3"}})
	assert.Contains(t, p, "Marka ismi ASLA")
	assert.False(t, strings.Contains(p, "ÇALIŞILAN MARKA"))
}

func TestRepair(t *testing.T) {
	p := Repair(`{"a": `)
	assert.True(t, strings.HasSuffix(p, `{"a": `))
}

func TestCompare(t *testing.T) {
	p := Compare("old one", "new one", Input{TargetLang: "tr", BrandLabel: "Atomy"})
	assert.Contains(t, p, "old one")
	assert.Contains(t, p, "new one")
	assert.Contains(t, p, "Atomy")
}
