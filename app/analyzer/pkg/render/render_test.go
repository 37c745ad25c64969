package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/catalog"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/model"
)

func TestRenderer_Report(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := &model.Record{
		Person:   model.Person{Name: "Ayşe Yılmaz", Age: "34", Gender: "Kadın"},
		BodyForm: model.BodyForm{Label: "normal", BMR: "1650"},
		General: model.GeneralFindings{
			Summary:       "genel özet",
			BrandProducts: model.ProductList{{Name: "Dekamin", Reason: "destek", Duration: "4 hafta"}},
		},
		SystemCards: model.SystemCards{
			{SystemName: "Tiroid", Status: "hafif yük"},
			{SystemName: "Göz"},
		},
		Disclaimer: "tıbbi tanı değildir",
	}
	var buf bytes.Buffer
	err = r.Execute(&buf, TemplateReport, View{
		ID:        "pdf_20240101120000_ABCDEF",
		Title:     "Ayşe Yılmaz",
		CreatedAt: "2024-01-01 12:00",
		Context:   model.ReportContext{Brand: "onemore", BrandLabel: "OneMore", TargetLang: "tr", Analysis: rec},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Ayşe Yılmaz")
	assert.Contains(t, out, "1. Tiroid")
	assert.Contains(t, out, "2. Göz")
	assert.Contains(t, out, "system-card empty")
	assert.Contains(t, out, "Dekamin")
	assert.Contains(t, out, "pdf_20240101120000_ABCDEF")
}

func TestRenderer_EscapesModelText(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Execute(&buf, TemplateComplaint, View{
		Context: model.ReportContext{
			ComplaintText: "<script>alert(1)</script>",
			Complaint:     &model.ComplaintReport{Summary: "özet"},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	assert.Contains(t, buf.String(), "özet")
}

func TestRenderer_Compare(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Execute(&buf, TemplateCompare, View{
		Context: model.ReportContext{Comparison: &model.ComparisonReport{
			Person:   model.Person{Name: "Ali"},
			Overall:  "genel iyileşme",
			Improved: []model.SystemChange{{SystemName: "Tiroid", Change: "daha iyi"}},
		}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "genel iyileşme")
	assert.Contains(t, buf.String(), "daha iyi")
}

func TestRenderer_Index(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Execute(&buf, TemplateIndex, IndexView{
		Brands:    catalog.Default().Brands(),
		Languages: Languages(),
		History:   []Link{{ID: "cmp_1", Title: "Şikâyet", Type: "complaint", CreatedAt: "2024-01-01"}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `href="/report/cmp_1"`)
	assert.Contains(t, buf.String(), `value="onemore"`)
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.False(t, r.Has("missing.html"))
	assert.Error(t, r.Execute(&bytes.Buffer{}, "missing.html", nil))
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	require.NotEmpty(t, langs)
	assert.Equal(t, "auto", langs[0].Code)
	for i := 2; i < len(langs); i++ {
		assert.Less(t, langs[i-1].Code, langs[i].Code)
	}
}
