package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndRecord(t *testing.T) {
	assert.NotPanics(t, func() { IncTransactionRecorded("debt", "cash") }, "helpers are no-ops before Create")

	require.NoError(t, Create("test-host", "test", "ledger_test"))
	defer func() { MetricSystemEnabled = false }()

	IncTransactionRecorded("debt", "cash")
	IncTransactionRecorded("debt", "cash")
	IncTransactionRecorded("payment", "")
	IncNotificationOutcome("cancelled")
	IncCustomerDeleted()
	ObserveSMSSubmit(0.2, "delivered")

	recorded := MetricCollectionCounterVec[SystemLedger+MetricTransactionsRecorded]
	assert.Equal(t, 2.0, testutil.ToFloat64(recorded.WithLabelValues("debt", "cash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorded.WithLabelValues("payment", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(MetricCollectionCounters[SystemLedger+MetricCustomersDeleted]))

	require.NoError(t, CreateMetric(TypeCounterVec, SystemSMS, "retries_total", "reason"))
	IncCounterVec(SystemSMS, "retries_total", "timeout")
	assert.Equal(t, 1.0, testutil.ToFloat64(MetricCollectionCounterVec[SystemSMS+"retries_total"].WithLabelValues("timeout")))

	assert.Error(t, CreateMetric("gaugeVec", SystemSMS, "x"))
}
