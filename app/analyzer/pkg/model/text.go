package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Text 宽松字符串：模型经常把数字、布尔值、null 甚至字符串数组放进文本字段
type Text string

// UnmarshalJSON 实现 json.Unmarshaler 接口
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '[':
		var items []any
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			switch v := item.(type) {
			case nil:
			case string:
				parts = append(parts, v)
			default:
				parts = append(parts, fmt.Sprint(v))
			}
		}
		*t = Text(strings.Join(parts, "\n"))
	default:
		// 数字、布尔值和对象保留原始字面量
		*t = Text(b)
	}
	return nil
}

// String 返回原始字符串
func (t Text) String() string {
	return string(t)
}

// Blank 仅包含空白字符时为真
func (t Text) Blank() bool {
	return strings.TrimSpace(string(t)) == ""
}

// ProductRecommendation 产品推荐条目
type ProductRecommendation struct {
	Name     Text `json:"urun"`
	Reason   Text `json:"neden"`
	Duration Text `json:"sure"`
}

// productNameKeys 产品名称的候选键，按优先级排列
var productNameKeys = []string{"urun", "urun_adi", "name", "title"}

// ProductList 产品推荐列表，解码时丢弃无法识别的元素
type ProductList []ProductRecommendation

// UnmarshalJSON 逐个元素解码，非对象元素直接丢弃
func (l *ProductList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		// null、字符串或对象都按空列表处理
		*l = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	list := make(ProductList, 0, len(raw))
	for _, item := range raw {
		var fields map[string]Text
		if err := json.Unmarshal(item, &fields); err != nil {
			continue
		}
		var rec ProductRecommendation
		for _, key := range productNameKeys {
			if v, ok := fields[key]; ok && !v.Blank() {
				rec.Name = v
				break
			}
		}
		rec.Reason = fields["neden"]
		rec.Duration = fields["sure"]
		list = append(list, rec)
	}
	*l = list
	return nil
}
