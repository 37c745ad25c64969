package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/model"
)

//go:embed catalog.yaml
var embedded []byte

// Brand 品牌及其产品白名单
type Brand struct {
	Key       string   `yaml:"key"`
	Label     string   `yaml:"label"`
	Unbranded bool     `yaml:"unbranded"`
	Products  []string `yaml:"products"`
}

// Placeholder 空卡片的占位文本
type Placeholder struct {
	Status   string `yaml:"durum"`
	Symptoms string `yaml:"belirtiler"`
	Risks    string `yaml:"riskler"`
	Advice   string `yaml:"yasam_tavsiyesi"`
}

type tokens struct {
	Male       []string `yaml:"male"`
	Female     []string `yaml:"female"`
	ChildExtra []string `yaml:"child_extra"`
}

type document struct {
	DefaultBrand string            `yaml:"default_brand"`
	Systems      []string          `yaml:"systems"`
	Aliases      map[string]string `yaml:"aliases"`
	Brands       []Brand           `yaml:"brands"`
	Tokens       tokens            `yaml:"tokens"`
	Placeholders struct {
		Male   Placeholder `yaml:"male"`
		Female Placeholder `yaml:"female"`
	} `yaml:"placeholders"`
}

// Catalog 系统与品牌参考数据，加载后只读，可并发使用
type Catalog struct {
	systems      []string
	systemKeys   map[string]struct{}
	brands       []*Brand
	byKey        map[string]*Brand
	allowed      map[string]map[string]struct{}
	named        []string
	aliases      map[string]string
	defaultBrand string

	male       []string
	female     []string
	childBlock []string

	placeholders map[model.Gender]Placeholder
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default 返回内嵌的默认目录
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(embedded)
		if err != nil {
			panic(fmt.Sprintf("内嵌目录无效: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// LoadFile 从文件加载目录，路径为空时使用内嵌目录
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Load 解析并校验目录
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析目录失败: %w", err)
	}
	if len(doc.Systems) == 0 {
		return nil, fmt.Errorf("目录中没有系统名称")
	}

	c := &Catalog{
		systems:      make([]string, 0, len(doc.Systems)),
		systemKeys:   make(map[string]struct{}, len(doc.Systems)),
		byKey:        make(map[string]*Brand, len(doc.Brands)),
		allowed:      make(map[string]map[string]struct{}, len(doc.Brands)),
		aliases:      make(map[string]string, len(doc.Aliases)),
		placeholders: make(map[model.Gender]Placeholder, 2),
	}

	for _, name := range doc.Systems {
		display := StripOrdinal(name)
		key := NormalizeSystemName(display)
		if _, dup := c.systemKeys[key]; dup {
			return nil, fmt.Errorf("重复的系统名称: %s", name)
		}
		c.systems = append(c.systems, display)
		c.systemKeys[key] = struct{}{}
	}

	seenNamed := make(map[string]struct{})
	for i := range doc.Brands {
		b := doc.Brands[i]
		key := Fold(b.Key)
		if key == "" {
			return nil, fmt.Errorf("第 %d 个品牌缺少 key", i+1)
		}
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("重复的品牌: %s", b.Key)
		}
		b.Key = key
		c.brands = append(c.brands, &b)
		c.byKey[key] = &b

		set := make(map[string]struct{}, len(b.Products))
		for _, p := range b.Products {
			fp := Fold(p)
			if fp == "" {
				continue
			}
			set[fp] = struct{}{}
			if b.Unbranded {
				continue
			}
			if _, ok := seenNamed[fp]; !ok {
				seenNamed[fp] = struct{}{}
				c.named = append(c.named, fp)
			}
		}
		c.allowed[key] = set
	}

	for alias, target := range doc.Aliases {
		t := Fold(target)
		if _, ok := c.byKey[t]; !ok {
			return nil, fmt.Errorf("别名 %s 指向未知品牌 %s", alias, target)
		}
		c.aliases[Fold(alias)] = t
	}

	c.defaultBrand = Fold(doc.DefaultBrand)
	if _, ok := c.byKey[c.defaultBrand]; !ok {
		return nil, fmt.Errorf("默认品牌 %q 不存在", doc.DefaultBrand)
	}

	c.male = foldAll(doc.Tokens.Male)
	c.female = foldAll(doc.Tokens.Female)
	c.childBlock = append(append(append([]string{}, c.male...), c.female...), foldAll(doc.Tokens.ChildExtra)...)

	c.placeholders[model.GenderMale] = doc.Placeholders.Male
	c.placeholders[model.GenderFemale] = doc.Placeholders.Female

	return c, nil
}

// Fold 去除首尾空白并做大小写折叠
func Fold(s string) string {
	// cases.Caser 不是并发安全的，每次调用单独创建
	return cases.Fold().String(strings.TrimSpace(s))
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := Fold(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}

var ordinalPrefix = regexp.MustCompile(`^\s*\d+\.\s*`)

// StripOrdinal 去掉 "11. " 这样的序号前缀
func StripOrdinal(name string) string {
	return strings.TrimSpace(ordinalPrefix.ReplaceAllString(name, ""))
}

// NormalizeSystemName 用于比较的系统名称
func NormalizeSystemName(name string) string {
	return Fold(StripOrdinal(name))
}

// Systems 按顺序返回所有系统的展示名称
func (c *Catalog) Systems() []string {
	return append([]string(nil), c.systems...)
}

// SystemCount 系统总数
func (c *Catalog) SystemCount() int {
	return len(c.systems)
}

// Brands 按目录顺序返回全部品牌
func (c *Catalog) Brands() []*Brand {
	return append([]*Brand(nil), c.brands...)
}

// DefaultBrand 默认品牌 key
func (c *Catalog) DefaultBrand() string {
	return c.defaultBrand
}

// WithDefaultBrand 返回替换了默认品牌的副本，key 为空时返回自身
func (c *Catalog) WithDefaultBrand(key string) (*Catalog, error) {
	if strings.TrimSpace(key) == "" {
		return c, nil
	}
	k := Fold(key)
	if target, ok := c.aliases[k]; ok {
		k = target
	}
	if _, ok := c.byKey[k]; !ok {
		return nil, fmt.Errorf("默认品牌 %q 不存在", key)
	}
	cp := *c
	cp.defaultBrand = k
	return &cp, nil
}

// ResolveBrand 把请求中的品牌 key 解析为目录中的品牌，未知时回退到默认品牌
func (c *Catalog) ResolveBrand(key string) string {
	k := Fold(key)
	if target, ok := c.aliases[k]; ok {
		k = target
	}
	if _, ok := c.byKey[k]; ok {
		return k
	}
	return c.defaultBrand
}

// Brand 根据已解析的 key 查找品牌
func (c *Catalog) Brand(key string) (*Brand, bool) {
	b, ok := c.byKey[c.ResolveBrand(key)]
	return b, ok
}

// Label 品牌展示名称
func (c *Catalog) Label(key string) string {
	if b, ok := c.Brand(key); ok {
		return b.Label
	}
	return ""
}

// Products 品牌的规范产品名
func (c *Catalog) Products(key string) []string {
	if b, ok := c.Brand(key); ok {
		return append([]string(nil), b.Products...)
	}
	return nil
}

// IsUnbranded 是否为无品牌伪品牌
func (c *Catalog) IsUnbranded(key string) bool {
	b, ok := c.Brand(key)
	return ok && b.Unbranded
}

// Allowed 产品名（折叠后完全匹配）是否在品牌白名单中
func (c *Catalog) Allowed(brand, product string) bool {
	set := c.allowed[c.ResolveBrand(brand)]
	_, ok := set[Fold(product)]
	return ok
}

// LeaksBrand 产品名是否包含任一具名品牌的产品名
func (c *Catalog) LeaksBrand(product string) bool {
	name := Fold(product)
	for _, p := range c.named {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// IsMaleCard 卡片名称是否命中男性词表
func (c *Catalog) IsMaleCard(name string) bool {
	return containsAny(Fold(name), c.male)
}

// IsFemaleCard 卡片名称是否命中女性词表
func (c *Catalog) IsFemaleCard(name string) bool {
	return containsAny(Fold(name), c.female)
}

// IsChildBlocked 卡片是否不适用于儿童
func (c *Catalog) IsChildBlocked(name string) bool {
	return containsAny(Fold(name), c.childBlock)
}

// Placeholder 返回某性别的占位文本
func (c *Catalog) Placeholder(g model.Gender) (Placeholder, bool) {
	p, ok := c.placeholders[g]
	return p, ok
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
