package bot

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)
	// второй набор в другом registry не конфликтует с первым
	require.NotNil(t, NewMetrics(prometheus.NewRegistry()))

	m.CartAdds.WithLabelValues("Non").Inc()
	m.OrdersConfirmed.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartAdds.WithLabelValues("Non")))
	count, err := testutil.GatherAndCount(reg, "telegram_bot_orders_confirmed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
