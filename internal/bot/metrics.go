package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	MessagesProcessed    prometheus.Counter
	CallbacksProcessed   *prometheus.CounterVec
	ErrorsTotal          prometheus.Counter
	RateLimited          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	CartAdds             *prometheus.CounterVec
	CheckoutsStarted     prometheus.Counter
	OrdersConfirmed      prometheus.Counter
}

// NewMetrics создает метрики и регистрирует их в reg. nil означает
// глобальный registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MessagesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_messages_processed_total",
			Help: "Total number of messages processed",
		}),
		CallbacksProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_callbacks_processed_total",
			Help: "Callback queries by command kind",
		}, []string{"kind"}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Errors and recovered panics while handling updates",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_rate_limited_total",
			Help: "Updates dropped by the per-user rate limit",
		}),
		UpdateProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),
		CartAdds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_cart_adds_total",
			Help: "Products added to carts",
		}, []string{"product"}),
		CheckoutsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_checkouts_started_total",
			Help: "Checkout dialogues opened",
		}),
		OrdersConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_orders_confirmed_total",
			Help: "Orders confirmed through the bot",
		}),
	}
}
