// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やワーカーから利用する。
type MetricsCollector interface {
	RecordJobLogged(domain string)
	RecordDuplicate()
	RecordLimitReached()
	RecordArchiveBuilt()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	jobsLogged     *prometheus.CounterVec
	duplicates     prometheus.Counter
	limitReached   prometheus.Counter
	archivesBuilt  prometheus.Counter
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		jobsLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "joblog_jobs_logged_total",
			Help: "記録された求人の合計数（ドメイン別）",
		}, []string{"domain"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "joblog_duplicates_total",
			Help: "重複として弾かれた求人の合計数",
		}),
		limitReached: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "joblog_limit_reached_total",
			Help: "日次上限で拒否されたリクエストの合計数",
		}),
		archivesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "joblog_archives_built_total",
			Help: "生成された日次アーカイブの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "joblog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "joblog_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.jobsLogged,
		c.duplicates,
		c.limitReached,
		c.archivesBuilt,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordJobLogged は求人の記録成功をドメイン別に記録する。
// ドメインが空の場合は "unclassified" として集計する。
func (c *Collector) RecordJobLogged(domain string) {
	if domain == "" {
		domain = "unclassified"
	}
	c.jobsLogged.WithLabelValues(domain).Inc()
}

// RecordDuplicate は重複判定を記録する。
func (c *Collector) RecordDuplicate() {
	c.duplicates.Inc()
}

// RecordLimitReached は日次上限による拒否を記録する。
func (c *Collector) RecordLimitReached() {
	c.limitReached.Inc()
}

// RecordArchiveBuilt はアーカイブ生成を記録する。
func (c *Collector) RecordArchiveBuilt() {
	c.archivesBuilt.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
