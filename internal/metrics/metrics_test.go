package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestMetrics(t *testing.T) {
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("products")
		IncSync("completed")
	})
}

func TestObserveOrder(t *testing.T) {
	before := counterValue(t, ordersCreated)
	revenueBefore := counterValue(t, orderRevenue)

	ObserveOrder(12150)

	assert.Equal(t, before+1, counterValue(t, ordersCreated))
	assert.Equal(t, revenueBefore+12150, counterValue(t, orderRevenue))
}

func TestIncOrderRejected(t *testing.T) {
	before := counterValue(t, orderRejections.WithLabelValues("empty_cart"))
	IncOrderRejected("empty_cart")
	assert.Equal(t, before+1, counterValue(t, orderRejections.WithLabelValues("empty_cart")))
}
