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
// ミドルウェア、リポジトリ、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	ObserveDBQuery(query string, duration time.Duration)
	RecordLoginAttempt(result string)
	RecordEmployeeMutation(action string)
	RecordSessionsCleaned(count int64)
}

// ログイン試行結果のラベル値
const (
	LoginSuccess     = "success"
	LoginFailure     = "failure"
	LoginRateLimited = "rate_limited"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
	dbLatency         *prometheus.HistogramVec
	loginAttempts     *prometheus.CounterVec
	employeeMutations *prometheus.CounterVec
	sessionsCleaned   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staffbook_http_requests_total",
			Help: "ルート・メソッド・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staffbook_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		dbLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staffbook_db_query_duration_seconds",
			Help:    "クエリ別のデータベース処理時間（秒）",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"query"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staffbook_login_attempts_total",
			Help: "結果別のログイン試行数",
		}, []string{"result"}),
		employeeMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staffbook_employee_mutations_total",
			Help: "操作別の従業員データ変更数",
		}, []string{"action"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "staffbook_sessions_cleaned_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.dbLatency,
		c.loginAttempts,
		c.employeeMutations,
		c.sessionsCleaned,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
// routeにはchiのルートパターン（例: /employees/{id}）を渡す。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery はクエリの処理時間を記録する。
func (c *Collector) ObserveDBQuery(query string, duration time.Duration) {
	c.dbLatency.WithLabelValues(query).Observe(duration.Seconds())
}

// RecordLoginAttempt はログイン試行を記録する。
func (c *Collector) RecordLoginAttempt(result string) {
	c.loginAttempts.WithLabelValues(result).Inc()
}

// RecordEmployeeMutation は従業員データの変更（create / update / delete）を記録する。
func (c *Collector) RecordEmployeeMutation(action string) {
	c.employeeMutations.WithLabelValues(action).Inc()
}

// RecordSessionsCleaned は削除された期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。メトリクス未設定時やテストで使用する。
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) ObserveDBQuery(string, time.Duration)                 {}
func (Nop) RecordLoginAttempt(string)                            {}
func (Nop) RecordEmployeeMutation(string)                        {}
func (Nop) RecordSessionsCleaned(int64)                          {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
