package payment

import (
	"encoding/json"
	"fmt"

	"analysis-service/pkg/config"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeProvider implements Provider over Stripe Checkout. Constructed
// once at process start.
type StripeProvider struct {
	cfg *config.PaymentConfig
}

// NewStripeProvider configures the Stripe client and returns the provider.
func NewStripeProvider(cfg *config.PaymentConfig) *StripeProvider {
	stripe.Key = cfg.StripeSecretKey
	return &StripeProvider{cfg: cfg}
}

// CreateCheckout opens a hosted checkout session for the analysis
// request. The request UUID travels as the client reference ID and comes
// back on the webhook.
func (p *StripeProvider) CreateCheckout(req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.RequestID),
		SuccessURL:        stripe.String(p.cfg.SuccessURL),
		CancelURL:         stripe.String(p.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.cfg.Currency),
					UnitAmount: stripe.Int64(p.cfg.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.cfg.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ParseWebhook verifies the webhook signature and extracts the payment
// outcome. Event types other than a completed checkout come back as
// non-completed events and are ignored upstream.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		return &Event{Completed: false}, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session payload: %w", err)
	}

	return &Event{Completed: true, RequestID: s.ClientReferenceID}, nil
}
