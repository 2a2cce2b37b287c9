package service

import (
	"context"

	"github.com/shopwise/checkout/internal/apperr"
	"github.com/shopwise/checkout/internal/payment"
	"github.com/shopwise/checkout/internal/repository"
	"github.com/sirupsen/logrus"
)

// PaymentGateway creates gateway-side payment intents.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (payment.Intent, error)
}

// PaymentService prepares payments for the caller's cart.
type PaymentService struct {
	carts          repository.CartRepository
	gateway        PaymentGateway
	currency       string
	publishableKey string
	log            *logrus.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(carts repository.CartRepository, gateway PaymentGateway, currency, publishableKey string, log *logrus.Logger) *PaymentService {
	return &PaymentService{
		carts:          carts,
		gateway:        gateway,
		currency:       currency,
		publishableKey: publishableKey,
		log:            log,
	}
}

// CreatePaymentIntent charges the stored cart total rounded to whole minor units.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID string) (payment.Intent, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return payment.Intent{}, err
	}
	if cart.IsEmpty() {
		return payment.Intent{}, apperr.InvalidRequest("Cart is empty")
	}

	amount := cart.TotalPrice.Round(0).IntPart()
	intent, err := s.gateway.CreateIntent(ctx, amount, s.currency)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindUpstreamFailure {
			err = apperr.Upstream("Payment gateway error", err)
		}
		s.log.WithError(err).WithField("user_id", userID).Error("failed to create payment intent")
		return payment.Intent{}, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "payment_intent": intent.ID, "amount": amount}).Info("payment intent created")
	return intent, nil
}

func (s *PaymentService) PublishableKey() string {
	return s.publishableKey
}
