package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveJSON(t *testing.T) {
	before := testutil.ToFloat64(JSONOperations.WithLabelValues(JSONOpMarshal, JSONResultSuccess, "sonic"))
	ObserveJSON(JSONOpMarshal, JSONResultSuccess, "sonic", 128)
	ObserveJSON(JSONOpMarshal, JSONResultSuccess, "sonic", 512)
	after := testutil.ToFloat64(JSONOperations.WithLabelValues(JSONOpMarshal, JSONResultSuccess, "sonic"))
	assert.Equal(t, 2.0, after-before)

	failures := testutil.ToFloat64(JSONOperations.WithLabelValues(JSONOpUnmarshal, JSONResultFailure, "goccy"))
	ObserveJSON(JSONOpUnmarshal, JSONResultFailure, "goccy", 0)
	assert.Equal(t, failures+1, testutil.ToFloat64(JSONOperations.WithLabelValues(JSONOpUnmarshal, JSONResultFailure, "goccy")))
}

func TestRegister(t *testing.T) {
	registry := prometheus.NewRegistry()
	Register(registry)
	assert.Equal(t, prometheus.Registerer(registry), GetRegisterer())

	// 第二次注册不会 panic
	RegisterJSONMetrics(registry)

	ObserveJSON(JSONOpUnmarshal, JSONResultSuccess, "jsoniter", 10)
	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "garden_json_operations_total")
	assert.Contains(t, names, "garden_json_payload_bytes")
}
