// Package gateway talks to the card payment provider: it starts charges,
// re-verifies them server to server and authenticates webhook deliveries.
package gateway

import (
	"errors"
)

const (
	EventChargeSuccess = "charge.success"
	StatusSuccess      = "success"
	SignatureHeader    = "X-Paystack-Signature"
)

var (
	ErrUnavailable = errors.New("gateway unavailable")
	ErrRejected    = errors.New("gateway rejected request")
)

type InitializeRequest struct {
	AmountMinor int64
	Reference   string
	Email       string
	CallbackURL string
	Currency    string
}

type InitializeResult struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

type Verification struct {
	Reference   string
	Status      string
	AmountMinor int64
	Currency    string
}

func (v Verification) Succeeded() bool {
	return v.Status == StatusSuccess
}

// WebhookEvent is the part of a delivery we trust enough to act on: it only
// names a reference that is then verified with the provider.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}
