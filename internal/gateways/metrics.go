package gateway

import (
	"sync/atomic"
	"time"
)

// ProviderMetrics keeps in-process counters for the SMS provider. They back
// the health endpoint, the Prometheus series are recorded separately.
type ProviderMetrics struct {
	TotalRequests    atomic.Int64
	SuccessfulReqs   atomic.Int64
	UnknownReqs      atomic.Int64
	FailedReqs       atomic.Int64
	TotalLatencyMs   atomic.Int64
	LastLatencyMs    atomic.Int64
	ConsecutiveFails atomic.Int32
	LastErrorTime    atomic.Int64
	LastSuccessTime  atomic.Int64
}

func NewProviderMetrics() *ProviderMetrics {
	return &ProviderMetrics{}
}

func (m *ProviderMetrics) Record(d Delivery, latencyMs int64) {
	m.TotalRequests.Add(1)
	m.TotalLatencyMs.Add(latencyMs)
	m.LastLatencyMs.Store(latencyMs)

	switch d {
	case DeliveryDelivered:
		m.SuccessfulReqs.Add(1)
	case DeliveryUnknown:
		m.UnknownReqs.Add(1)
	default:
		m.FailedReqs.Add(1)
		m.ConsecutiveFails.Add(1)
		m.LastErrorTime.Store(time.Now().Unix())
		return
	}
	m.ConsecutiveFails.Store(0)
	m.LastSuccessTime.Store(time.Now().Unix())
}

func (m *ProviderMetrics) AvgLatencyMs() int64 {
	total := m.TotalRequests.Load()
	if total == 0 {
		return 0
	}
	return m.TotalLatencyMs.Load() / total
}

// SuccessRate counts unknown outcomes as successes.
func (m *ProviderMetrics) SuccessRate() float64 {
	total := m.TotalRequests.Load()
	if total == 0 {
		return 1.0
	}
	return float64(m.SuccessfulReqs.Load()+m.UnknownReqs.Load()) / float64(total)
}

type ProviderStats struct {
	Enabled          bool    `json:"enabled"`
	TotalRequests    int64   `json:"total_requests"`
	SuccessfulReqs   int64   `json:"successful_requests"`
	UnknownReqs      int64   `json:"unknown_requests"`
	FailedReqs       int64   `json:"failed_requests"`
	SuccessRate      float64 `json:"success_rate"`
	AvgLatencyMs     int64   `json:"avg_latency_ms"`
	LastLatencyMs    int64   `json:"last_latency_ms"`
	ConsecutiveFails int32   `json:"consecutive_fails"`
	// zero until the first outcome of that kind
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastErrorAt   *time.Time `json:"last_error_at,omitempty"`
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
