package server

import (
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iWorld-y/wellness_report/app/analyzer/pkg/metrics"
	"github.com/iWorld-y/wellness_report/app/display/internal/conf"
	"github.com/iWorld-y/wellness_report/app/display/internal/service"
)

const defaultTimeout = 5 * time.Minute

func NewHTTPServer(c *conf.Server, s *service.WellnessService, logger log.Logger) *http.Server {
	// 分析请求要等待模型返回，默认超时放宽到 5 分钟
	timeout := defaultTimeout
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if d, err := time.ParseDuration(c.Http.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}
	opts = append(opts, http.Timeout(timeout))

	srv := http.NewServer(opts...)

	metrics.Register()
	srv.Handle("/metrics", promhttp.Handler())

	r := srv.Route("/")
	r.GET("/", s.Index)
	r.POST("/analyze-pdf", s.AnalyzePDF)
	r.POST("/analyze-complaint", s.AnalyzeComplaint)
	r.POST("/compare-tests", s.CompareTests)
	r.GET("/report/{id}", s.Report)
	r.GET("/api/history", s.History)
	r.POST("/api/admin/login", s.AdminLogin)

	admin := srv.Route("/api/admin", adminFilter(s))
	admin.GET("/reports", s.AdminReports)

	log.NewHelper(logger).Info("wellness routes registered")
	return srv
}

// adminFilter 未通过令牌校验的请求直接返回 401
func adminFilter(s *service.WellnessService) http.FilterFunc {
	return func(next nethttp.Handler) nethttp.Handler {
		return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			if err := s.Authorize(r); err != nil {
				http.DefaultErrorEncoder(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
