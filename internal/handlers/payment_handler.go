package handlers

import (
	"context"
	"net/http"

	"github.com/shopwise/checkout/internal/payment"
	"github.com/sirupsen/logrus"
)

type paymentService interface {
	CreatePaymentIntent(ctx context.Context, userID string) (payment.Intent, error)
	PublishableKey() string
}

// PaymentHandler exposes card payment setup to the storefront.
type PaymentHandler struct {
	payments paymentService
	log      *logrus.Logger
}

func NewPaymentHandler(payments paymentService, log *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

// CreatePaymentIntent handles POST /payments/create-payment-intent
func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}

	intent, err := h.payments.CreatePaymentIntent(r.Context(), p.ID)
	if err != nil {
		WriteError(w, r, err, h.log)
		return
	}
	WriteSuccess(w, http.StatusOK, envelope{"client_secret": intent.ClientSecret}, h.log)
}

// PublishableKey handles GET /payments/stripe-publishable-key
func (h *PaymentHandler) PublishableKey(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, envelope{"stripeApikey": h.payments.PublishableKey()}, h.log)
}
