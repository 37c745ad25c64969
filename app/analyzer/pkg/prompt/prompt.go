package prompt

import (
	"fmt"
	"strings"
)

// LanguageLabels 支持的报告语言
var LanguageLabels = map[string]string{
	"auto": "Otomatik (PDF/metin dilini algıla)",
	"tr":   "Türkçe",
	"en":   "İngilizce",
	"de":   "Almanca",
	"es":   "İspanyolca",
	"pt":   "Portekizce",
	"fr":   "Fransızca",
	"ru":   "Rusça",
	"ar":   "Arapça",
	"fa":   "Farsça",
	"mn":   "Moğolca",
	"id":   "Endonezce",
	"it":   "İtalyanca",
	"az":   "Azerbaycanca",
}

// Source 提示词的输入来源
type Source string

const (
	SourcePDF       Source = "pdf"
	SourceComplaint Source = "complaint"
	SourceCompare   Source = "compare"
)

// Input 各类提示词共用的参数
type Input struct {
	TargetLang string
	SecondLang string
	BrandLabel string
	Products   []string
	Unbranded  bool
}

// NormalizeLanguages 处理双语开关：未开启或与主语言相同时清空第二语言
func NormalizeLanguages(target, second string, bilingual bool) (string, string) {
	target = strings.ToLower(strings.TrimSpace(target))
	second = strings.ToLower(strings.TrimSpace(second))
	if target == "" {
		target = "tr"
	}
	if !bilingual || second == target {
		second = ""
	}
	return target, second
}

// ParseBool 表单中的真值
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func label(lang string) string {
	if l, ok := LanguageLabels[lang]; ok {
		return l
	}
	return lang
}

// LanguageInstruction 生成语言要求
func LanguageInstruction(target, second string, src Source) string {
	var sb strings.Builder
	if target == "auto" {
		what := "verilen metnin"
		if src == SourcePDF || src == SourceCompare {
			what = "PDF metninin"
		}
		fmt.Fprintf(&sb, "Raporun birincil dilini %s diline göre belirle. Metin Türkçe ise Türkçe yaz.", what)
	} else {
		fmt.Fprintf(&sb, "Tüm rapor metinlerinin BİRİNCİL dili sadece %s olsun.", label(target))
	}

	if second == "" {
		sb.WriteString("\nİkinci dil seçili değil, sadece tek dilli metin üret.")
		return sb.String()
	}
	fmt.Fprintf(&sb, `

İKİ DİLLİ FORMAT ZORUNLUDUR: İkinci dil %s.
Tüm metin alanlarını iki satır yaz: 1. satır birincil dil, 2. satır ikinci dil çevirisi.
Örnek: "ozet": "Birincil dil cümlesi.\nSecond language sentence."`, label(second))
	return sb.String()
}

func productBlock(in Input) string {
	if len(in.Products) == 0 {
		return "- (liste yok, sadece ürün tipi yaz)"
	}
	lines := make([]string, 0, len(in.Products))
	for _, p := range in.Products {
		lines = append(lines, "- "+p)
	}
	return strings.Join(lines, "\n")
}

func brandRules(in Input) string {
	if in.Unbranded {
		return `ÜRÜN KURALI:
- Marka ismi ASLA kullanma; sadece ürün TİPİ veya KATEGORİ yaz (ör. "omega-3 takviyesi", "probiyotik").
- Örnek tipler:
` + productBlock(in)
	}
	return fmt.Sprintf(`ÇALIŞILAN MARKA: %s
- Ürün önerilerini SADECE aşağıdaki listeden, isimleri birebir yazarak seç.
- Farklı markalara ait ürün isimlerini ASLA kullanma, yeni ürün uydurma.
- Cinsiyete uygun olmayan ürünü yazma.
Ürün listesi:
%s`, in.BrandLabel, productBlock(in))
}

const jsonRules = `❗ Çıktı TAMAMEN ve SADECE JSON olacak; Markdown veya açıklama yazma.
❗ Tüm string alanları eksiksiz kapat, yanıtı yarıda kesme; gerekirse metni kısalt.`

const pdfGeneralTpl = `%s

Aşağıda bir Wellness Analyzer cihazından alınmış test PDF metni var. Tıbbi teşhis
içermeyen, kişiye özel bir WELLNESS RAPORU hazırla. Sistem kartları bu çağrıda üretilmeyecek.

DİL TALİMATI:
%s

%s

- 'genel_bulgu.en_riskli_10_sistem' TAM 10 eleman içersin.
- 'genel_bulgu.onemore_urun_onerileri' 8-12 ürün içersin.
- 'dort_haftalik_plan' 4 eleman (hafta 1-4) içersin.
- Kanallar & kollateraller ve İnsan Bilinç Düzeyi alanlarını 4-6 cümleyle doldur.
- 'tibbi_sorumluluk' alanında marka veya cihaz adı kullanma.

PDF METNİ:
------------------
%s
------------------

JSON şeman:
{
  "kisi_bilgileri": {"ad_soyad": "", "yas": "", "cinsiyet": "", "boy_cm": "", "kilo_kg": "", "test_tarihi": ""},
  "vucut_formu": {"etiket": "", "oran": "", "aciklama": "", "bmr_kcal": "", "form_puani": ""},
  "genel_bulgu": {
    "ozet": "",
    "en_riskli_10_sistem": [{"sistem_adi": "", "sorun_ozeti": ""}],
    "onemore_urun_onerileri": [{"urun": "", "neden": "", "sure": ""}]
  },
  "dort_haftalik_plan": [{"hafta": 1, "odak": "", "detay": "", "urun_kullanimi": ""}],
  "kanallar_ve_kollateraller_detay": {"durum": "", "belirtiler": "", "riskler": "", "yasam_onerileri": "", "detayli_aciklama": "", "onemore_urun_onerileri": []},
  "insan_bilinc_duzeyi_detay": {"durum": "", "belirtiler": "", "riskler": "", "yasam_onerileri": "", "detayli_aciklama": "", "onemore_urun_onerileri": []},
  "tibbi_sorumluluk": ""
}`

// PDFGeneral PDF 报告第一部分：总体发现、计划与详细说明
func PDFGeneral(pdfText string, in Input) string {
	return fmt.Sprintf(pdfGeneralTpl,
		jsonRules,
		LanguageInstruction(in.TargetLang, in.SecondLang, SourcePDF),
		brandRules(in),
		pdfText,
	)
}

const pdfCardsTpl = `%s

Aşağıdaki Wellness Analyzer test metnine göre SADECE sistem kartlarını üret.

DİL TALİMATI:
%s

%s

SİSTEM KARTLARI:
- Aşağıdaki %d sistemin HER BİRİ için sırayla bir kart üret, hiçbirini atlama:
%s
- Her kartta 'sistem_adi', 'durum', 'belirtiler', 'riskler', 'yasam_tavsiyesi', 'urun_onerileri' zorunlu.
- Her metin alanında en fazla 2 cümle yaz; açıklamalar test sonuçlarına uygun olsun.
- 'urun_onerileri' her kartta 2-3 ürün içeren bir liste olsun; aynı ürünü en fazla 6-8 kartta kullan.

PDF METNİ:
------------------
%s
------------------

JSON şeman:
{
  "sistem_kartlari": [
    {"sistem_adi": "", "durum": "", "belirtiler": "", "riskler": "", "yasam_tavsiyesi": "",
     "urun_onerileri": [{"urun": "", "neden": "", "sure": ""}]}
  ]
}`

// PDFSystemCards PDF 报告第二部分：全部系统卡片
func PDFSystemCards(pdfText string, systems []string, in Input) string {
	lines := make([]string, 0, len(systems))
	for i, s := range systems {
		lines = append(lines, fmt.Sprintf("- Kart %d: %s", i+1, s))
	}
	return fmt.Sprintf(pdfCardsTpl,
		jsonRules,
		LanguageInstruction(in.TargetLang, in.SecondLang, SourcePDF),
		brandRules(in),
		len(systems),
		strings.Join(lines, "\n"),
		pdfText,
	)
}

const complaintTpl = `%s

Aşağıda bir kişinin anlattığı şikâyet var. Bu metne göre ŞİKÂYET BAZLI bir WELLNESS RAPORU hazırla.
Tıbbi teşhis koyma, ilaç ismi verme.

DİL TALİMATI:
%s

%s

- 'onemore_urun_onerileri' 6-8 ürün içersin; 'neden' en az 2 cümle, 'sure' ör. "4 hafta".
- 'tibbi_sorumluluk' alanında marka veya cihaz adı kullanma.

ŞİKÂYET METNİ:
------------------
%s
------------------

JSON şeman:
{
  "sikayet_ozeti": "",
  "olasi_sistem_yukleri": [{"sistem_adi": "", "gerekce": ""}],
  "risk_degerlendirmesi": "",
  "yasam_onerileri": "",
  "onemore_urun_onerileri": [{"urun": "", "neden": "", "sure": ""}],
  "tibbi_sorumluluk": ""
}`

// Complaint 基于主诉文本的提示词
func Complaint(complaint string, in Input) string {
	return fmt.Sprintf(complaintTpl,
		jsonRules,
		LanguageInstruction(in.TargetLang, in.SecondLang, SourceComplaint),
		brandRules(in),
		complaint,
	)
}

const compareTpl = `%s

Aşağıda aynı kişiye ait iki Wellness Analyzer test metni var: ESKİ TEST ve YENİ TEST. İkisini karşılaştır.

DİL TALİMATI:
%s

%s

- 'dort_haftalik_plan' 4 elemanlı olsun, 'hafta' sırayla 1-4.
- 'onemore_urun_onerileri' 6-8 ürün içersin; 'neden' değişime göre yazılsın.

ESKİ TEST METNİ:
------------------
%s
------------------

YENİ TEST METNİ:
------------------
%s
------------------

JSON şeman:
{
  "kisi_bilgileri": {"ad_soyad": "", "yas": "", "cinsiyet": ""},
  "genel_degerlendirme": "",
  "vucut_formu_karsilastirma": "",
  "iyilesen_sistemler": [{"sistem_adi": "", "degisim": ""}],
  "kotulesen_sistemler": [{"sistem_adi": "", "degisim": ""}],
  "stabil_sistemler": [{"sistem_adi": "", "degisim": ""}],
  "dort_haftalik_plan": [{"hafta": 1, "odak": "", "detay": "", "urun_kullanimi": ""}],
  "onemore_urun_onerileri": [{"urun": "", "neden": "", "sure": ""}],
  "tibbi_sorumluluk": ""
}`

// Compare 新旧两次检测的对比提示词
func Compare(oldText, newText string, in Input) string {
	return fmt.Sprintf(compareTpl,
		jsonRules,
		LanguageInstruction(in.TargetLang, in.SecondLang, SourceCompare),
		brandRules(in),
		oldText,
		newText,
	)
}

const repairTpl = `Sen bir JSON DÜZELTME motorusun. Aşağıda BOZUK veya YARIM KALMIŞ bir JSON metni var.

GÖREVİN:
- Aynı şemayı ve alan isimlerini KORU; liste ve nesne yapısını bozma.
- Yarım kalmış cümleleri kısaltabilir veya silebilirsin.
- Çıktın TAMAMEN GEÇERLİ JSON olsun; JSON dışında tek kelime yazma.

BOZUK_JSON:
%s`

// Repair JSON 修复提示词
func Repair(broken string) string {
	return fmt.Sprintf(repairTpl, broken)
}
