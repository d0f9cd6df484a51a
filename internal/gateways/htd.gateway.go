package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/nimasrn/customer-ledger/internal/phone"
	"github.com/nimasrn/customer-ledger/pkg/logger"
	"github.com/nimasrn/customer-ledger/pkg/prom"
	"github.com/valyala/fasthttp"
)

const SendPath = "/API/SendSMS.aspx"

const (
	DetailDisabled         = "SMS disabled in configuration"
	DetailAPINotConfigured = "SMS API not configured"
	DetailSenderMissing    = "SMS Sender not configured"
	DetailInvalidPhone     = "Invalid phone number format"
	DetailTimeout          = "request timed out, assuming submitted"
)

// Delivery is what is known about a submission. Unknown means the provider
// did not answer in time; it is treated as a success.
type Delivery string

const (
	DeliveryDelivered Delivery = "delivered"
	DeliveryUnknown   Delivery = "unknown"
	DeliveryFailed    Delivery = "failed"
)

type Result struct {
	Delivery   Delivery `json:"delivery"`
	Detail     string   `json:"detail,omitempty"`
	StatusCode int      `json:"status_code,omitempty"`
	Response   string   `json:"response,omitempty"`
}

func (r Result) Success() bool {
	return r.Delivery == DeliveryDelivered || r.Delivery == DeliveryUnknown
}

// TransportError is returned when the request could not be submitted or the
// provider rejected it.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sms transport: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("sms transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

var errUnexpectedStatus = errors.New("unexpected status code")

type Config struct {
	Enabled  bool
	BaseURL  string
	APIID    string
	Sender   string
	Timeout  time.Duration
	MaxConns int
	// Dial overrides the connection dialer, tests use an in-memory listener.
	Dial fasthttp.DialFunc
}

type Client struct {
	config  Config
	client  *fasthttp.Client
	metrics *ProviderMetrics
}

func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}
	if config.MaxConns <= 0 {
		config.MaxConns = 64
	}

	c := &Client{
		config: config,
		client: &fasthttp.Client{
			Name:                "customer-ledger",
			MaxConnsPerHost:     config.MaxConns,
			MaxIdleConnDuration: 60 * time.Second,
			Dial:                config.Dial,
		},
		metrics: NewProviderMetrics(),
	}

	logger.Info("SMS client initialized", "enabled", config.Enabled, "base_url", config.BaseURL, "timeout", config.Timeout)
	return c
}

// Send submits message to the given number. Configuration problems and invalid
// numbers come back as a failed Result with a nil error. A request that never
// reached the provider or was refused yields a failed Result and a
// *TransportError. A timeout is reported as DeliveryUnknown.
func (c *Client) Send(ctx context.Context, to, message string) (Result, error) {
	switch {
	case !c.config.Enabled:
		return Result{Delivery: DeliveryFailed, Detail: DetailDisabled}, nil
	case c.config.APIID == "" || c.config.BaseURL == "":
		return Result{Delivery: DeliveryFailed, Detail: DetailAPINotConfigured}, nil
	case c.config.Sender == "":
		return Result{Delivery: DeliveryFailed, Detail: DetailSenderMissing}, nil
	}

	number, err := phone.Normalize(to)
	if err != nil {
		return Result{Delivery: DeliveryFailed, Detail: DetailInvalidPhone}, nil
	}

	if err := ctx.Err(); err != nil {
		return Result{Delivery: DeliveryFailed, Detail: err.Error()}, &TransportError{Err: err}
	}

	start := time.Now()
	result, err := c.doRequest(ctx, number, message)
	latency := time.Since(start)

	c.metrics.Record(result.Delivery, latency.Milliseconds())
	prom.ObserveSMSSubmit(latency.Seconds(), string(result.Delivery))

	if err != nil {
		logger.Warn("SMS submission failed", "to", number, "error", err, "latency_ms", latency.Milliseconds())
		return result, err
	}

	logger.Info("SMS submitted", "to", number, "delivery", string(result.Delivery), "latency_ms", latency.Milliseconds())
	return result, nil
}

func (c *Client) requestURI(to, message string) string {
	q := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(q)
	q.Set("id", c.config.APIID)
	q.Set("sender", c.config.Sender)
	q.Set("to", to)
	q.Set("msg", message)
	q.Set("mode", "0")
	return c.config.BaseURL + SendPath + "?" + q.String()
}

func (c *Client) doRequest(ctx context.Context, to, message string) (Result, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.requestURI(to, message))
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := time.Now().Add(c.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		if isTimeout(err) {
			return Result{Delivery: DeliveryUnknown, Detail: DetailTimeout}, nil
		}
		return Result{Delivery: DeliveryFailed, Detail: err.Error()}, &TransportError{Err: err}
	}

	statusCode := resp.StatusCode()
	body := string(resp.Body())
	if statusCode < 200 || statusCode > 299 {
		return Result{Delivery: DeliveryFailed, StatusCode: statusCode, Response: body, Detail: fmt.Sprintf("HTTP error! status: %d", statusCode)},
			&TransportError{StatusCode: statusCode, Err: errUnexpectedStatus}
	}

	return Result{Delivery: DeliveryDelivered, StatusCode: statusCode, Response: body}, nil
}

// isTimeout reports a request that was sent but not answered in time. Dial
// timeouts are not included since nothing reached the provider.
func isTimeout(err error) bool {
	if errors.Is(err, fasthttp.ErrTimeout) {
		return true
	}
	if errors.Is(err, fasthttp.ErrDialTimeout) {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (c *Client) Enabled() bool {
	return c.config.Enabled
}

func (c *Client) Stats() ProviderStats {
	m := c.metrics
	return ProviderStats{
		Enabled:          c.config.Enabled,
		TotalRequests:    m.TotalRequests.Load(),
		SuccessfulReqs:   m.SuccessfulReqs.Load(),
		UnknownReqs:      m.UnknownReqs.Load(),
		FailedReqs:       m.FailedReqs.Load(),
		SuccessRate:      m.SuccessRate(),
		AvgLatencyMs:     m.AvgLatencyMs(),
		LastLatencyMs:    m.LastLatencyMs.Load(),
		ConsecutiveFails: m.ConsecutiveFails.Load(),
		LastSuccessAt:    unixTime(m.LastSuccessTime.Load()),
		LastErrorAt:      unixTime(m.LastErrorTime.Load()),
	}
}

func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	logger.Info("SMS client closed")
	return nil
}
