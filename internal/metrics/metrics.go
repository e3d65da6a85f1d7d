// Package metrics exposes grid and drive state as Prometheus collectors.
// A nil *Recorder is valid and records nothing, so callers never need to
// guard metric calls.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cellbay"

// Recorder 持有独立的 Prometheus 注册表，避免与进程默认注册表冲突。
type Recorder struct {
	registry    *prometheus.Registry
	idlePower   *prometheus.GaugeVec
	handlers    *prometheus.GaugeVec
	listChanges *prometheus.CounterVec
	resyncs     *prometheus.CounterVec
	contents    *prometheus.CounterVec
	dropped     prometheus.Counter
}

// New 创建并注册全部指标。
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		idlePower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_idle_power",
			Help:      "Idle power drawn by a storage host, base plus every resolved cell.",
		}, []string{"host"}),
		handlers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "handler_list_size",
			Help:      "Entries in the composed grid handler list per channel.",
		}, []string{"channel"}),
		listChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_list_changes_total",
			Help:      "Handler list composition changes posted by a host.",
		}, []string{"host"}),
		resyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_resyncs_total",
			Help:      "Status words published to remote observers.",
		}, []string{"host"}),
		contents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contents_changed_units_total",
			Help:      "Units moved in or out of the grid by swapping cells in a host.",
		}, []string{"host", "direction"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Handler list notifications dropped while the grid was unreachable.",
		}),
	}
	r.registry.MustRegister(r.idlePower, r.handlers, r.listChanges, r.resyncs, r.contents, r.dropped)
	return r
}

// Registry 返回底层注册表。
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler 返回 /metrics 的 http.Handler。
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// IdlePower 记录宿主的待机功耗。
func (r *Recorder) IdlePower(host string, total float64) {
	if r == nil {
		return
	}
	r.idlePower.WithLabelValues(host).Set(total)
}

// HandlerListSize 记录某通道组合列表的长度。
func (r *Recorder) HandlerListSize(channel string, n int) {
	if r == nil {
		return
	}
	r.handlers.WithLabelValues(channel).Set(float64(n))
}

// HandlerListChanged 累加宿主的列表变更通知。
func (r *Recorder) HandlerListChanged(host string) {
	if r == nil {
		return
	}
	r.listChanges.WithLabelValues(host).Inc()
}

// StatusResync 累加宿主的状态字发布次数。
func (r *Recorder) StatusResync(host string) {
	if r == nil {
		return
	}
	r.resyncs.WithLabelValues(host).Inc()
}

// NotificationDropped 累加被丢弃的通知。
func (r *Recorder) NotificationDropped() {
	if r == nil {
		return
	}
	r.dropped.Inc()
}

// ContentsChanged 累加换入换出的单位数，direction 为 removed 或 added。
func (r *Recorder) ContentsChanged(host, direction string, units int64) {
	if r == nil || units <= 0 {
		return
	}
	r.contents.WithLabelValues(host, direction).Add(float64(units))
}

// ForgetHost 删除宿主维度的全部序列。
func (r *Recorder) ForgetHost(host string) {
	if r == nil {
		return
	}
	r.idlePower.DeleteLabelValues(host)
	r.listChanges.DeleteLabelValues(host)
	r.resyncs.DeleteLabelValues(host)
	r.contents.DeletePartialMatch(prometheus.Labels{"host": host})
}
