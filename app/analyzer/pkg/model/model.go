package model

import (
	"bytes"
	"encoding/json"
)

// Person 受检者信息
type Person struct {
	Name     Text `json:"ad_soyad"`
	Age      Text `json:"yas"`
	Gender   Text `json:"cinsiyet"`
	Height   Text `json:"boy_cm"`
	Weight   Text `json:"kilo_kg"`
	TestDate Text `json:"test_tarihi"`
}

// BodyForm 体型评估
type BodyForm struct {
	Label       Text `json:"etiket"`
	Ratio       Text `json:"oran"`
	Explanation Text `json:"aciklama"`
	BMR         Text `json:"bmr_kcal"`
	Score       Text `json:"form_puani"`
}

// Empty 所有字段均为空
func (b BodyForm) Empty() bool {
	return b.Label.Blank() && b.Ratio.Blank() && b.Explanation.Blank() && b.BMR.Blank() && b.Score.Blank()
}

// RiskItem 高风险系统摘要
type RiskItem struct {
	SystemName Text `json:"sistem_adi"`
	Summary    Text `json:"sorun_ozeti"`
}

// GeneralFindings 总体发现
type GeneralFindings struct {
	Summary       Text        `json:"ozet"`
	TopRisks      []RiskItem  `json:"en_riskli_10_sistem"`
	BrandProducts ProductList `json:"onemore_urun_onerileri"`
	Products      ProductList `json:"urun_onerileri,omitempty"`
}

// PlanWeek 四周计划中的一周
type PlanWeek struct {
	Week       Text `json:"hafta"`
	Focus      Text `json:"odak"`
	Detail     Text `json:"detay"`
	ProductUse Text `json:"urun_kullanimi"`
}

// DetailBlock 经络与意识水平的详细说明块
type DetailBlock struct {
	Status        Text        `json:"durum"`
	Symptoms      Text        `json:"belirtiler"`
	Risks         Text        `json:"riskler"`
	Advice        Text        `json:"yasam_onerileri"`
	Explanation   Text        `json:"detayli_aciklama"`
	BrandProducts ProductList `json:"onemore_urun_onerileri"`
	Products      ProductList `json:"urun_onerileri,omitempty"`
}

// SystemCard 单个系统卡片
type SystemCard struct {
	SystemName Text        `json:"sistem_adi"`
	Status     Text        `json:"durum"`
	Symptoms   Text        `json:"belirtiler"`
	Risks      Text        `json:"riskler"`
	Advice     Text        `json:"yasam_tavsiyesi"`
	Products   ProductList `json:"urun_onerileri"`
}

// Empty 四个文本字段全空且没有产品推荐
func (c SystemCard) Empty() bool {
	return c.Status.Blank() && c.Symptoms.Blank() && c.Risks.Blank() && c.Advice.Blank() && len(c.Products) == 0
}

// Blanked 返回保留名称、清空其余内容的卡片
func (c SystemCard) Blanked() SystemCard {
	return SystemCard{SystemName: c.SystemName, Products: ProductList{}}
}

// SystemCards 系统卡片列表，非对象元素在解码时丢弃
type SystemCards []SystemCard

// UnmarshalJSON 实现 json.Unmarshaler 接口，非数组按空列表处理，由补齐阶段补卡
func (s *SystemCards) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		*s = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	cards := make(SystemCards, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var card SystemCard
		if err := json.Unmarshal(item, &card); err != nil {
			return err
		}
		cards = append(cards, card)
	}
	*s = cards
	return nil
}

// Record PDF 检测报告
type Record struct {
	Person        Person          `json:"kisi_bilgileri"`
	BodyForm      BodyForm        `json:"vucut_formu"`
	General       GeneralFindings `json:"genel_bulgu"`
	Plan          []PlanWeek      `json:"dort_haftalik_plan"`
	Channels      DetailBlock     `json:"kanallar_ve_kollateraller_detay"`
	Consciousness DetailBlock     `json:"insan_bilinc_duzeyi_detay"`
	SystemCards   SystemCards     `json:"sistem_kartlari"`
	BrandProducts ProductList     `json:"onemore_urun_onerileri,omitempty"`
	Products      ProductList     `json:"urun_onerileri,omitempty"`
	Disclaimer    Text            `json:"tibbi_sorumluluk"`
}

// ProductLists 返回记录中所有产品列表的位置，包括每张卡片
func (r *Record) ProductLists() []*ProductList {
	lists := []*ProductList{
		&r.General.BrandProducts,
		&r.General.Products,
		&r.Channels.BrandProducts,
		&r.Channels.Products,
		&r.Consciousness.BrandProducts,
		&r.Consciousness.Products,
		&r.BrandProducts,
		&r.Products,
	}
	for i := range r.SystemCards {
		lists = append(lists, &r.SystemCards[i].Products)
	}
	return lists
}

// Clone 深拷贝，流水线的每个阶段都在副本上工作
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.General.TopRisks = append([]RiskItem(nil), r.General.TopRisks...)
	c.General.BrandProducts = cloneProducts(r.General.BrandProducts)
	c.General.Products = cloneProducts(r.General.Products)
	c.Plan = append([]PlanWeek(nil), r.Plan...)
	c.Channels = r.Channels.clone()
	c.Consciousness = r.Consciousness.clone()
	c.BrandProducts = cloneProducts(r.BrandProducts)
	c.Products = cloneProducts(r.Products)
	if r.SystemCards != nil {
		c.SystemCards = make(SystemCards, len(r.SystemCards))
		for i, card := range r.SystemCards {
			card.Products = cloneProducts(card.Products)
			c.SystemCards[i] = card
		}
	}
	return &c
}

func (d DetailBlock) clone() DetailBlock {
	d.BrandProducts = cloneProducts(d.BrandProducts)
	d.Products = cloneProducts(d.Products)
	return d
}

func cloneProducts(l ProductList) ProductList {
	if l == nil {
		return nil
	}
	return append(ProductList{}, l...)
}

// SystemLoad 投诉报告中可能受影响的系统
type SystemLoad struct {
	SystemName Text `json:"sistem_adi"`
	Rationale  Text `json:"gerekce"`
}

// ComplaintReport 基于主诉的报告
type ComplaintReport struct {
	Summary       Text         `json:"sikayet_ozeti"`
	SystemLoads   []SystemLoad `json:"olasi_sistem_yukleri"`
	Risk          Text         `json:"risk_degerlendirmesi"`
	Advice        Text         `json:"yasam_onerileri"`
	BrandProducts ProductList  `json:"onemore_urun_onerileri"`
	Disclaimer    Text         `json:"tibbi_sorumluluk"`
}

// ProductLists 返回投诉报告中的产品列表
func (c *ComplaintReport) ProductLists() []*ProductList {
	return []*ProductList{&c.BrandProducts}
}

// SystemChange 两次检测之间某个系统的变化
type SystemChange struct {
	SystemName Text `json:"sistem_adi"`
	Change     Text `json:"degisim"`
}

// ComparisonReport 新旧两次检测的对比报告
type ComparisonReport struct {
	Person         Person         `json:"kisi_bilgileri"`
	Overall        Text           `json:"genel_degerlendirme"`
	BodyFormChange Text           `json:"vucut_formu_karsilastirma"`
	Improved       []SystemChange `json:"iyilesen_sistemler"`
	Worsened       []SystemChange `json:"kotulesen_sistemler"`
	Stable         []SystemChange `json:"stabil_sistemler"`
	Plan           []PlanWeek     `json:"dort_haftalik_plan"`
	BrandProducts  ProductList    `json:"onemore_urun_onerileri"`
	Disclaimer     Text           `json:"tibbi_sorumluluk"`
}

// ProductLists 返回对比报告中的产品列表
func (c *ComparisonReport) ProductLists() []*ProductList {
	return []*ProductList{&c.BrandProducts}
}

// ReportContext 渲染报告所需的全部数据，整体保存在历史记录中
type ReportContext struct {
	Brand         string            `json:"brand"`
	BrandLabel    string            `json:"brand_label"`
	TargetLang    string            `json:"target_lang"`
	SecondLang    string            `json:"second_lang,omitempty"`
	Bilingual     bool              `json:"bilingual"`
	Analysis      *Record           `json:"analysis,omitempty"`
	Complaint     *ComplaintReport  `json:"complaint,omitempty"`
	ComplaintText string            `json:"complaint_text,omitempty"`
	Comparison    *ComparisonReport `json:"comparison,omitempty"`
}
