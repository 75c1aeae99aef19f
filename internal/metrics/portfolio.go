package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contentChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "changes_total",
			Help:      "已提交的主题/内容变更次数。",
		},
		[]string{"kind", "section"},
	)

	imageIngestions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "images",
			Name:      "ingestions_total",
			Help:      "图片入库结果计数。",
		},
		[]string{"field", "status"},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "后台登录尝试次数。",
		},
		[]string{"result"},
	)
)

func RecordChange(kind, section string) {
	contentChanges.WithLabelValues(kind, section).Inc()
}

func RecordImageIngestion(field, status string) {
	imageIngestions.WithLabelValues(field, status).Inc()
}

func RecordLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}
