package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/logger"
)

// PDF 从内存中的 PDF 提取文本并去掉设备说明块
func PDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	raw, err := readText(r)
	if err != nil {
		return "", err
	}
	return StripDeviceExplanations(raw), nil
}

// File 从磁盘上的 PDF 提取文本
func File(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("pdf open: %w", err)
	}
	defer f.Close()

	raw, err := readText(r)
	if err != nil {
		return "", err
	}
	return StripDeviceExplanations(raw), nil
}

// Upload 把上传内容写入临时文件再提取，任何情况下临时文件都会被删除
func Upload(src io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "wellness-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Log.Warnf("删除临时文件失败 %s: %v", path, err)
		}
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return File(path)
}

// readText 逐页按行读取文本，保留换行以便识别说明块
func readText(r *pdf.Reader) (text string, err error) {
	// 损坏的 PDF 会让解析库 panic
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parse: %v", rec)
		}
	}()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, rowErr := p.GetTextByRow()
		if rowErr != nil {
			logger.Log.Warnf("第 %d 页按行读取失败: %v", i, rowErr)
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		plain, plainErr := r.GetPlainText()
		if plainErr != nil {
			return "", fmt.Errorf("pdf plaintext: %w", plainErr)
		}
		b, readErr := io.ReadAll(plain)
		if readErr != nil {
			return "", fmt.Errorf("pdf read: %w", readErr)
		}
		return string(b), nil
	}
	return sb.String(), nil
}

// 说明块起始标记（土耳其语、英语、德语、西班牙语、俄语）
var startMarkers = []string{
	"Parametre Açıklaması",
	"Parameter Explanation",
	"Explanation of Parameters",
	"Parameter description",
	"Parametererklärung",
	"Erläuterung der Parameter",
	"Explicación de los parámetros",
	"Explicacion de los parametros",
	"Объяснение параметров",
	"Пояснение параметров",
}

// 说明块结束标记，本行也会被丢弃
var endMarkers = []string{
	"Test sonuçları yalnızca referans amaçlıdır",
	"Test sonuçları sadece referans amaçlıdır",
	"Test results are for reference only",
	"The test results are for reference only",
	"Testergebnisse dienen nur als Referenz",
	"Die Testergebnisse dienen nur als Referenz",
	"Los resultados de la prueba son solo de referencia",
	"Los resultados del test son solo de referencia",
	"Результаты теста предназначены только для справки",
	"Результаты исследования предназначены только для справки",
}

// StripDeviceExplanations 删除设备报告中的参数说明块，保留标题、个人信息和结果表格
func StripDeviceExplanations(raw string) string {
	if raw == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	skip := false
	for _, line := range lines {
		lower := strings.ToLower(strings.TrimSpace(line))
		switch {
		case hasMarker(lower, startMarkers):
			skip = true
		case hasMarker(lower, endMarkers):
			skip = false
		case !skip:
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func hasMarker(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
