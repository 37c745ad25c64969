package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/model"
)

var (
	bmrPattern  = regexp.MustCompile(`(?i)Bazal\s+metabolizma\s+h[ıi]z[ıi]\s*\(BMR\)\s*([0-9]+)`)
	formPattern = regexp.MustCompile(`(?i)V[üu]cut\s*formu\s*De[ğg]erlendirmesi\s*[:=]\s*([0-9]+[.,]?[0-9]*)`)
)

// BodyForm 从设备文本中识别基础代谢率和体型评分，识别不到时返回空值
func BodyForm(text string) model.BodyForm {
	var bf model.BodyForm

	if m := bmrPattern.FindStringSubmatch(text); m != nil {
		bf.BMR = model.Text(m[1])
	}

	var score float64
	hasScore := false
	if m := formPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil {
			score = v
			hasScore = true
			bf.Score = model.Text(strings.ReplaceAll(fmt.Sprintf("%.1f", v), ".", ","))
		}
	}

	var explanation strings.Builder
	if hasScore {
		fmt.Fprintf(&explanation, "Vücut formu değerlendirme puanınız %s/100 civarındadır. "+
			"Genel olarak kas-kemik yapısı, yağ oranı ve vücut kompozisyonunuz hakkında bilgi verir. "+
			"Skoru iyileştirmek için dengeli beslenme, düzenli hareket ve kaliteli uyku önemlidir.", bf.Score)

		switch {
		case score >= 70:
			bf.Label = "normal"
		case score >= 60:
			bf.Label = "geliştirilmeli"
		default:
			bf.Label = "riskli"
		}
		bf.Ratio = bf.Score + "%"
	}
	if !bf.BMR.Blank() {
		if explanation.Len() > 0 {
			explanation.WriteString("\n\n")
		}
		fmt.Fprintf(&explanation, "Bazal metabolizma hızınız (BMR) yaklaşık %s kcal/gün'dür. "+
			"Bu değer, hiçbir aktivite yapmasanız bile vücudunuzun temel fonksiyonları için ihtiyaç duyduğu enerji miktarını ifade eder.", bf.BMR)
	}
	bf.Explanation = model.Text(explanation.String())

	return bf
}

// MergeBodyForm 设备识别出的非空字段覆盖模型给出的字段
func MergeBodyForm(fromModel, fromDevice model.BodyForm) model.BodyForm {
	out := fromModel
	if !fromDevice.Label.Blank() {
		out.Label = fromDevice.Label
	}
	if !fromDevice.Ratio.Blank() {
		out.Ratio = fromDevice.Ratio
	}
	if !fromDevice.Explanation.Blank() {
		out.Explanation = fromDevice.Explanation
	}
	if !fromDevice.BMR.Blank() {
		out.BMR = fromDevice.BMR
	}
	if !fromDevice.Score.Blank() {
		out.Score = fromDevice.Score
	}
	return out
}
