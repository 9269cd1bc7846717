package apiservice

import (
	"net"

	"github.com/gin-gonic/gin"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/etlcraft/snowbridge/pkg/metrics"
)

type APIService struct {
	APIInfo *APIInfo
	Metric  *metrics.Metrics
	router  *gin.Engine
}

func New() *APIService {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	apiInfo := NewAPIInfo()
	apiInfo.registerRouter(r)

	metric := RegisterMetric(r)

	return &APIService{
		APIInfo: apiInfo,
		Metric:  metric,
		router:  r,
	}
}

// RegisterMetric registers the metric handler.
func RegisterMetric(router *gin.Engine) *metrics.Metrics {
	metric := metrics.NewMetrics()
	registry := prometheus.NewRegistry()
	metric.RegisterTo(registry)

	router.GET("/metrics", func(c *gin.Context) {
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
	})
	return metric
}

// Serve runs the API service on the listener until it is closed.
func (service *APIService) Serve(l net.Listener) {
	go func() {
		if err := service.router.RunListener(l); err != nil {
			log.Error("API service stopped", zap.Error(err))
		}
	}()
}
