package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storebot"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	ordersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders committed at confirmation.",
	})

	orderRevenue = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_revenue_total",
		Help:      "Sum of confirmed order totals in minor currency units.",
	})

	orderRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_rejections_total",
			Help:      "Confirmations that did not produce an order, by reason.",
		},
		[]string{"reason"},
	)

	syncTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_sync_tasks_total",
			Help:      "Spreadsheet sync task outcomes.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, ordersCreated, orderRevenue, orderRejections, syncTasks)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// ObserveOrder counts a committed order and its total.
func ObserveOrder(total int64) {
	ordersCreated.Inc()
	orderRevenue.Add(float64(total))
}

// IncOrderRejected counts a confirmation that was refused.
func IncOrderRejected(reason string) {
	orderRejections.WithLabelValues(reason).Inc()
}

// IncSync counts a processed sheets sync task by final status.
func IncSync(status string) {
	syncTasks.WithLabelValues(status).Inc()
}
