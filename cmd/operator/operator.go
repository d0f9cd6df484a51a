package main

import (
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SentSMS is one message accepted by the mock provider.
type SentSMS struct {
	ID         string    `json:"id"`
	APIID      string    `json:"api_id"`
	Sender     string    `json:"sender"`
	To         string    `json:"to"`
	Message    string    `json:"message"`
	Mode       string    `json:"mode"`
	Delivered  bool      `json:"delivered"`
	ReceivedAt time.Time `json:"received_at"`
}

// MockProvider imitates the HTD send endpoint: plain text responses, random
// latency and a configurable share of failures and hangs.
type MockProvider struct {
	mu           sync.Mutex
	deliveryRate float64
	hangRate     float64
	minDelay     time.Duration
	maxDelay     time.Duration
	apiID        string
	rng          *rand.Rand
	outbox       []SentSMS
	sleep        func(time.Duration)
}

func NewMockProvider(cfg Config) *MockProvider {
	return &MockProvider{
		deliveryRate: cfg.DeliveryRate,
		hangRate:     cfg.HangRate,
		minDelay:     cfg.MinDelay,
		maxDelay:     cfg.MaxDelay,
		apiID:        cfg.APIID,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:        time.Sleep,
	}
}

func (m *MockProvider) randomDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockProvider) roll(rate float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64() < rate
}

func (m *MockProvider) record(s SentSMS) {
	m.mu.Lock()
	m.outbox = append(m.outbox, s)
	m.mu.Unlock()
}

func (m *MockProvider) Outbox() []SentSMS {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentSMS, len(m.outbox))
	copy(out, m.outbox)
	return out
}

type Handler struct {
	provider *MockProvider
}

func NewHandler(provider *MockProvider) *Handler {
	return &Handler{provider: provider}
}

// SendSMS serves GET /API/SendSMS.aspx?id=&sender=&to=&msg=&mode=.
func (h *Handler) SendSMS(c *gin.Context) {
	apiID := c.Query("id")
	to := c.Query("to")
	sender := c.Query("sender")
	msg := c.Query("msg")

	if apiID == "" || (h.provider.apiID != "" && apiID != h.provider.apiID) {
		c.String(http.StatusUnauthorized, "invalid api id")
		return
	}
	if to == "" || msg == "" || sender == "" {
		c.String(http.StatusBadRequest, "missing parameter")
		return
	}
	if len(to) != 12 || !strings.HasPrefix(to, "9705") {
		c.String(http.StatusBadRequest, "invalid destination")
		return
	}

	if h.provider.roll(h.provider.hangRate) {
		log.Warn().Str("to", to).Msg("simulating a provider hang")
		select {
		case <-c.Request.Context().Done():
		case <-time.After(time.Minute):
		}
		return
	}

	delay := h.provider.randomDelay()
	h.provider.sleep(delay)

	s := SentSMS{
		ID:         uuid.NewString(),
		APIID:      apiID,
		Sender:     sender,
		To:         to,
		Message:    msg,
		Mode:       c.DefaultQuery("mode", "0"),
		Delivered:  h.provider.roll(h.provider.deliveryRate),
		ReceivedAt: time.Now().UTC(),
	}
	h.provider.record(s)

	if !s.Delivered {
		log.Warn().Str("id", s.ID).Str("to", to).Dur("delay", delay).Msg("sms rejected")
		c.String(http.StatusServiceUnavailable, "operator rejected the message")
		return
	}
	log.Info().Str("id", s.ID).Str("to", to).Dur("delay", delay).Msg("sms delivered")
	c.String(http.StatusOK, s.ID)
}

func (h *Handler) ListOutbox(c *gin.Context) {
	items := h.provider.Outbox()
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) UpdateConfig(c *gin.Context) {
	var req struct {
		DeliveryRate *float64 `json:"delivery_rate" binding:"omitempty,min=0,max=1"`
		HangRate     *float64 `json:"hang_rate"     binding:"omitempty,min=0,max=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.provider.mu.Lock()
	if req.DeliveryRate != nil {
		h.provider.deliveryRate = *req.DeliveryRate
	}
	if req.HangRate != nil {
		h.provider.hangRate = *req.HangRate
	}
	rate, hang := h.provider.deliveryRate, h.provider.hangRate
	h.provider.mu.Unlock()

	log.Info().Float64("delivery_rate", rate).Float64("hang_rate", hang).Msg("configuration updated")
	c.JSON(http.StatusOK, gin.H{"delivery_rate": rate, "hang_rate": hang})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request processed")
	})

	router.GET("/API/SendSMS.aspx", handler.SendSMS)
	router.GET("/outbox", handler.ListOutbox)
	router.PUT("/config", handler.UpdateConfig)
	router.GET("/health", handler.HealthCheck)
	return router
}
