package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	jsonMetricSubsystem = "json"

	JSONOpMarshal   = "marshal"
	JSONOpUnmarshal = "unmarshal"

	JSONResultSuccess = "success"
	JSONResultAbsent  = "absent"
	JSONResultFailure = "failure"
)

var (
	jsonMetricsRegisterOnce sync.Once

	JSONOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: gardenNamespace,
			Subsystem: jsonMetricSubsystem,
			Name:      "operations_total",
			Help:      "JSON 编解码调用次数，按操作、结果与引擎区分",
		}, []string{opLabelName, resultLabelName, engineLabelName})

	JSONPayloadBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: gardenNamespace,
			Subsystem: jsonMetricSubsystem,
			Name:      "payload_bytes",
			Help:      "成功编解码的 JSON 文本大小",
			Buckets:   payloadBuckets,
		}, []string{opLabelName})
)

// RegisterJSONMetrics 将 JSON 相关的指标注册到 Registerer 中，重复调用只生效一次。
func RegisterJSONMetrics(r prometheus.Registerer) {
	jsonMetricsRegisterOnce.Do(func() {
		r.MustRegister(JSONOperations)
		r.MustRegister(JSONPayloadBytes)
	})
}

// ObserveJSON 记录一次 JSON 操作；size 仅在成功时计入直方图。
func ObserveJSON(op, result, engine string, size int) {
	JSONOperations.WithLabelValues(op, result, engine).Inc()
	if result == JSONResultSuccess {
		JSONPayloadBytes.WithLabelValues(op).Observe(float64(size))
	}
}
