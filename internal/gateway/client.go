package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Skotchmaster/marketplace/internal/metrics"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

const DefaultTimeout = 10 * time.Second

type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Client is the HTTP implementation of the provider API. Every call goes
// through one circuit breaker, so a provider outage fails fast.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	name    string
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type initializeBody struct {
	Email       string `json:"email"`
	Amount      string `json:"amount"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

type verifyData struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	name := "payment-gateway"
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetAuthToken(cfg.SecretKey).
			SetHeader("Accept", "application/json").
			SetTimeout(timeout).
			SetRetryCount(0),
		breaker: newBreaker(name),
		name:    name,
	}
}

func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	var out envelope[InitializeResult]
	err := c.do(func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetBody(initializeBody{
				Email:       req.Email,
				Amount:      strconv.FormatInt(req.AmountMinor, 10),
				Reference:   req.Reference,
				CallbackURL: req.CallbackURL,
				Currency:    req.Currency,
			}).
			SetResult(&out).
			SetError(&out).
			Post("/transaction/initialize")
	})
	if err != nil {
		return nil, withMessage(err, out.Message)
	}
	if !out.Status {
		return nil, fmt.Errorf("%w: initialize: %s", ErrRejected, out.Message)
	}
	if out.Data.Reference == "" {
		out.Data.Reference = req.Reference
	}
	return &out.Data, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (*Verification, error) {
	var out envelope[verifyData]
	err := c.do(func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetResult(&out).
			SetError(&out).
			Get("/transaction/verify/" + url.PathEscape(reference))
	})
	if err != nil {
		return nil, withMessage(err, out.Message)
	}
	if !out.Status {
		return nil, fmt.Errorf("%w: verify: %s", ErrRejected, out.Message)
	}
	return &Verification{
		Reference:   out.Data.Reference,
		Status:      out.Data.Status,
		AmountMinor: out.Data.Amount,
		Currency:    out.Data.Currency,
	}, nil
}

// do runs call through the breaker. Transport errors and 5xx count as
// breaker failures; 4xx are the caller's problem and do not trip it.
func (c *Client) do(call func() (*resty.Response, error)) error {
	var clientErr error
	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := call()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
		}
		if resp.IsError() {
			clientErr = fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode())
		}
		return nil, nil
	})
	if err != nil {
		metrics.CircuitBreakerFailures.WithLabelValues(breakerService, c.name).Inc()
		return breakerError(c.name, err)
	}
	return clientErr
}

func withMessage(err error, msg string) error {
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, msg)
}
