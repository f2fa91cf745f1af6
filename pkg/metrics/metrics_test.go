package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"usersvc/pkg/metrics"
)

func TestNewHTTP_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	m1, err := metrics.NewHTTP(reg)
	require.NoError(t, err)
	m2, err := metrics.NewHTTP(reg)
	require.NoError(t, err)

	m1.Requests.WithLabelValues("/users", "POST", "201").Inc()
	m2.Requests.WithLabelValues("/users", "POST", "201").Inc()

	require.InDelta(t, 2, testutil.ToFloat64(m1.Requests.WithLabelValues("/users", "POST", "201")), 0)
}
