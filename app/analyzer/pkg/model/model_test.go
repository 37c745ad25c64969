package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Text
	}{
		{"string", `"42 yaş"`, "42 yaş"},
		{"number", `42`, "42"},
		{"null", `null`, ""},
		{"bool", `true`, "true"},
		{"array", `["a", "b", 3]`, "a\nb\n3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductList_DropsMalformedEntries(t *testing.T) {
	in := `[
		{"urun": "Dekamin", "neden": "enerji", "sure": "4 hafta"},
		"just a string",
		42,
		{"urun_adi": "Omevia"},
		{"name": "B12 plus", "neden": "yorgunluk"},
		{"title": "Slim style", "urun": "  "}
	]`
	var got ProductList
	require.NoError(t, json.Unmarshal([]byte(in), &got))
	require.Len(t, got, 4)
	assert.Equal(t, Text("Dekamin"), got[0].Name)
	assert.Equal(t, Text("4 hafta"), got[0].Duration)
	assert.Equal(t, Text("Omevia"), got[1].Name)
	assert.Equal(t, Text("B12 plus"), got[2].Name)
	assert.Equal(t, Text("yorgunluk"), got[2].Reason)
	assert.Equal(t, Text("Slim style"), got[3].Name)
}

func TestProductList_NonArrayIsEmpty(t *testing.T) {
	var got ProductList
	require.NoError(t, json.Unmarshal([]byte(`{"urun": "x"}`), &got))
	assert.Empty(t, got)
}

func TestSystemCards_NonArrayIsEmpty(t *testing.T) {
	for _, in := range []string{`{}`, `"kartlar"`, `5`, `null`} {
		cards := SystemCards{{SystemName: "eski"}}
		require.NoError(t, json.Unmarshal([]byte(in), &cards), in)
		assert.Nil(t, cards, in)
	}

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"kisi_bilgileri": {"ad_soyad": "Ali"}, "sistem_kartlari": {"sistem_adi": "Tiroid"}}`), &rec))
	assert.Equal(t, Text("Ali"), rec.Person.Name)
	assert.Empty(t, rec.SystemCards)
}

func TestRecord_DecodeLenient(t *testing.T) {
	in := `{
		"kisi_bilgileri": {"ad_soyad": "Ali", "yas": 35, "cinsiyet": "Erkek"},
		"sistem_kartlari": [
			{"sistem_adi": "Tiroid", "durum": "iyi", "urun_onerileri": [{"urun": "Dekamin"}, "bad"]},
			"not a card",
			{"sistem_adi": "Göz"}
		]
	}`
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(in), &rec))
	assert.Equal(t, Text("35"), rec.Person.Age)
	require.Len(t, rec.SystemCards, 2)
	assert.Len(t, rec.SystemCards[0].Products, 1)
	assert.True(t, rec.SystemCards[1].Empty())
}

func TestRecord_Clone(t *testing.T) {
	rec := &Record{
		SystemCards: SystemCards{{SystemName: "Tiroid", Products: ProductList{{Name: "Dekamin"}}}},
		General:     GeneralFindings{BrandProducts: ProductList{{Name: "Omevia"}}},
	}
	c := rec.Clone()
	c.SystemCards[0].Products[0].Name = "changed"
	c.General.BrandProducts[0].Name = "changed"
	c.SystemCards[0].Status = "x"

	assert.Equal(t, Text("Dekamin"), rec.SystemCards[0].Products[0].Name)
	assert.Equal(t, Text("Omevia"), rec.General.BrandProducts[0].Name)
	assert.True(t, rec.SystemCards[0].Status.Blank())
}

func TestRecord_ProductLists(t *testing.T) {
	rec := &Record{SystemCards: make(SystemCards, 3)}
	assert.Len(t, rec.ProductLists(), 8+3)
}

func TestParseGender(t *testing.T) {
	tests := map[string]Gender{
		"Erkek":   GenderMale,
		" male":   GenderMale,
		"M":       GenderMale,
		"Kadın":   GenderFemale,
		"female":  GenderFemale,
		"Dişi":    GenderFemale,
		"Woman":   GenderFemale,
		"":        GenderUnisex,
		"unknown": GenderUnisex,
		"?":       GenderUnisex,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseGender(in), in)
	}
}

func TestParseAge(t *testing.T) {
	age, ok := ParseAge(" 8 yaş")
	assert.True(t, ok)
	assert.Equal(t, 8, age)

	age, ok = ParseAge("42")
	assert.True(t, ok)
	assert.Equal(t, 42, age)

	_, ok = ParseAge("yaş bilinmiyor")
	assert.False(t, ok)

	_, ok = ParseAge("")
	assert.False(t, ok)
}
