package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// LLMRequestsTotal 按调用类型和结果统计的 LLM 请求数
	LLMRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "analyzer",
		Name:      "llm_requests_total",
		Help:      "Total number of LLM completions, labeled by prompt kind and result.",
	}, []string{"kind", "result"})

	// LLMRequestDurationSeconds 单次 LLM 调用耗时
	LLMRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wellness",
		Subsystem: "analyzer",
		Name:      "llm_request_duration_seconds",
		Help:      "Time spent waiting for a single LLM completion.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120, 240},
	}, []string{"kind"})

	// RepairsTotal JSON 修复请求数
	RepairsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "analyzer",
		Name:      "json_repairs_total",
		Help:      "Total number of JSON repair passes, labeled by result.",
	}, []string{"result"})

	// ReportsTotal 按报告类型和结果统计
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "analyzer",
		Name:      "reports_total",
		Help:      "Total number of report requests, labeled by report type and result.",
	}, []string{"type", "result"})

	// CardsAppendedTotal 补齐阶段追加的空卡片数
	CardsAppendedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "analyzer",
		Name:      "system_cards_appended_total",
		Help:      "Total number of blank system cards appended by the cardinality stage.",
	})

	// ProductsDroppedTotal 品牌过滤阶段丢弃的产品推荐数
	ProductsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Subsystem: "analyzer",
		Name:      "products_dropped_total",
		Help:      "Total number of product recommendations removed by the brand filter.",
	}, []string{"brand"})
)

// Register 注册到默认 Prometheus registry，可重复调用
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			LLMRequestsTotal,
			LLMRequestDurationSeconds,
			RepairsTotal,
			ReportsTotal,
			CardsAppendedTotal,
			ProductsDroppedTotal,
		)
	})
}

// Result 把 error 转换为 result 标签
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
