package pipeline

import (
	"strings"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/catalog"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/config"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/logger"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/metrics"
	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/model"
)

// Options 流水线参数
type Options struct {
	// TrustThreshold 卡片数不少于该值时原样保留
	TrustThreshold int
	// ChildAgeLimit 年龄小于该值时删除成人卡片
	ChildAgeLimit int
}

// OptionsFromConfig 从配置构造参数
func OptionsFromConfig(c config.PipelineConfig) Options {
	return Options{TrustThreshold: c.TrustThreshold, ChildAgeLimit: c.ChildAgeLimit}
}

// Pipeline 把模型输出整理成完整且合规的报告
type Pipeline struct {
	cat  *catalog.Catalog
	opts Options
}

// New 创建流水线，未设置的参数使用默认值
func New(cat *catalog.Catalog, opts Options) *Pipeline {
	if cat == nil {
		cat = catalog.Default()
	}
	if opts.TrustThreshold <= 0 {
		opts.TrustThreshold = config.DefaultTrustThreshold
	}
	if opts.ChildAgeLimit <= 0 {
		opts.ChildAgeLimit = config.DefaultChildAgeLimit
	}
	return &Pipeline{cat: cat, opts: opts}
}

// Catalog 流水线使用的目录
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.cat
}

// Run 依次执行：补齐卡片、品牌过滤、年龄过滤、性别过滤、空卡填充
func (p *Pipeline) Run(rec *model.Record, brand string) *model.Record {
	out := rec.Clone()
	out.SystemCards = p.EnforceCardinality(out.SystemCards)
	out = p.FilterEligibility(out, brand)
	out = p.FillGaps(out)
	return out
}

// EnforceCardinality 卡片不足时按目录顺序追加缺失系统的空卡片
//
// 卡片数达到信任阈值时直接返回原切片。已有卡片原样保留在前面。
func (p *Pipeline) EnforceCardinality(cards model.SystemCards) model.SystemCards {
	if len(cards) >= p.opts.TrustThreshold {
		return cards
	}

	target := p.cat.SystemCount()
	used := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if key := catalog.NormalizeSystemName(c.SystemName.String()); key != "" {
			used[key] = struct{}{}
		}
	}

	out := make(model.SystemCards, len(cards), max(len(cards), target))
	copy(out, cards)
	appended := 0
	for _, name := range p.cat.Systems() {
		if len(out) >= target {
			break
		}
		key := catalog.NormalizeSystemName(name)
		if _, ok := used[key]; ok {
			continue
		}
		used[key] = struct{}{}
		out = append(out, model.SystemCard{SystemName: model.Text(name), Products: model.ProductList{}})
		appended++
	}

	if appended > 0 {
		metrics.CardsAppendedTotal.Add(float64(appended))
		logger.Log.Infof("模型返回 %d 张卡片，已补齐 %d 张空卡片", len(cards), appended)
	}
	return out
}

// FilterEligibility 品牌 → 年龄 → 性别
func (p *Pipeline) FilterEligibility(rec *model.Record, brand string) *model.Record {
	out := p.FilterBrand(rec, brand)
	out = p.FilterChildCards(out)
	out = p.FilterGenderCards(out)
	return out
}

// FilterBrand 对记录中所有产品列表应用品牌白名单
func (p *Pipeline) FilterBrand(rec *model.Record, brand string) *model.Record {
	out := rec.Clone()
	p.FilterProducts(out.ProductLists(), brand)
	return out
}

// FilterProducts 原地过滤产品列表，返回被丢弃的条目数
//
// 具名品牌：只保留名称（折叠后）在该品牌白名单中的条目。
// 无品牌：丢弃名称包含任一具名品牌产品名的条目。
// 保留的条目统一整理为 {urun, neden, sure}。
func (p *Pipeline) FilterProducts(lists []*model.ProductList, brand string) int {
	key := p.cat.ResolveBrand(brand)
	unbranded := p.cat.IsUnbranded(key)

	dropped := 0
	for _, list := range lists {
		if list == nil {
			continue
		}
		kept := make(model.ProductList, 0, len(*list))
		for _, item := range *list {
			name := strings.TrimSpace(item.Name.String())
			if !p.productAllowed(key, unbranded, name) {
				dropped++
				continue
			}
			kept = append(kept, model.ProductRecommendation{
				Name:     model.Text(name),
				Reason:   item.Reason,
				Duration: item.Duration,
			})
		}
		*list = kept
	}

	if dropped > 0 {
		metrics.ProductsDroppedTotal.WithLabelValues(key).Add(float64(dropped))
		logger.Log.Infof("品牌 [%s] 过滤掉 %d 条产品推荐", key, dropped)
	}
	return dropped
}

func (p *Pipeline) productAllowed(brand string, unbranded bool, name string) bool {
	if name == "" {
		return false
	}
	if unbranded {
		return !p.cat.LeaksBrand(name)
	}
	return p.cat.Allowed(brand, name)
}

// FilterChildCards 儿童报告删除成人专属卡片，这是唯一会改变卡片数量的过滤
func (p *Pipeline) FilterChildCards(rec *model.Record) *model.Record {
	out := rec.Clone()
	age, ok := out.Person.AgeYears()
	if !ok || age >= p.opts.ChildAgeLimit {
		return out
	}

	kept := make(model.SystemCards, 0, len(out.SystemCards))
	for _, c := range out.SystemCards {
		if p.cat.IsChildBlocked(c.SystemName.String()) {
			continue
		}
		kept = append(kept, c)
	}
	if removed := len(out.SystemCards) - len(kept); removed > 0 {
		logger.Log.Infof("年龄 %d 小于 %d，删除 %d 张成人卡片", age, p.opts.ChildAgeLimit, removed)
	}
	out.SystemCards = kept
	return out
}

// FilterGenderCards 清空与受检者性别不符的卡片内容，卡片本身保留
func (p *Pipeline) FilterGenderCards(rec *model.Record) *model.Record {
	out := rec.Clone()

	var blocked func(string) bool
	switch out.Person.GenderValue() {
	case model.GenderMale:
		blocked = p.cat.IsFemaleCard
	case model.GenderFemale:
		blocked = p.cat.IsMaleCard
	default:
		return out
	}

	for i, c := range out.SystemCards {
		if blocked(c.SystemName.String()) {
			out.SystemCards[i] = c.Blanked()
		}
	}
	return out
}

// FillGaps 为与性别相符、且完全为空的敏感卡片填入占位文本
func (p *Pipeline) FillGaps(rec *model.Record) *model.Record {
	out := rec.Clone()

	gender := out.Person.GenderValue()
	var matches func(string) bool
	switch gender {
	case model.GenderMale:
		matches = p.cat.IsMaleCard
	case model.GenderFemale:
		matches = p.cat.IsFemaleCard
	default:
		return out
	}
	ph, ok := p.cat.Placeholder(gender)
	if !ok {
		return out
	}

	for i, c := range out.SystemCards {
		if !c.Empty() || !matches(c.SystemName.String()) {
			continue
		}
		out.SystemCards[i] = model.SystemCard{
			SystemName: c.SystemName,
			Status:     model.Text(ph.Status),
			Symptoms:   model.Text(ph.Symptoms),
			Risks:      model.Text(ph.Risks),
			Advice:     model.Text(ph.Advice),
			Products:   model.ProductList{},
		}
	}
	return out
}
