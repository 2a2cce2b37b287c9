// Package payment creates payment intents with Stripe.
package payment

import (
	"context"
	"errors"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Intent is the gateway-side payment the client confirms with its secret.
type Intent struct {
	ID           string
	ClientSecret string
}

// Config configures a StripeGateway. BackendURL overrides the Stripe API
// endpoint and is only set in tests.
type Config struct {
	SecretKey  string
	Company    string
	BackendURL string
	Logger     stripe.LeveledLoggerInterface
}

// StripeGateway creates payment intents through the Stripe API.
type StripeGateway struct {
	api     *client.API
	company string
}

func NewStripeGateway(cfg Config) *StripeGateway {
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BackendURL != "" {
		backendCfg.URL = stripe.String(cfg.BackendURL)
	}
	if cfg.Logger != nil {
		backendCfg.LeveledLogger = cfg.Logger
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)
	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &StripeGateway{api: api, company: cfg.Company}
}

// CreateIntent creates a payment intent for amount minor units of currency.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	if g.company != "" {
		params.AddMetadata("company", g.company)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return Intent{}, apperr.Upstream(stripeErr.Msg, err)
		}
		return Intent{}, apperr.Upstream("Payment gateway unavailable", err)
	}

	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
