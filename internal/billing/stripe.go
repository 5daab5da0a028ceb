// Package billing wraps the payment processor: one-time checkout session
// creation and the signed webhook that activates plans after payment.
package billing

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	apperrors "github.com/pysugar/seas-portal/internal/errors"
	"github.com/pysugar/seas-portal/internal/plans"
)

// CheckoutCreator creates a payment session for a plan purchase and
// returns the processor's session ID for the browser-side redirect.
// Handlers depend on this interface so tests can fake the processor.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, clientID string, plan plans.Plan) (string, error)
}

// Stripe is the production CheckoutCreator.
type Stripe struct {
	api     *client.API
	baseURL string // this service's external URL for success/cancel redirects
}

// NewStripe creates the Stripe client. baseURL is the portal's external
// base URL.
func NewStripe(secretKey, baseURL string) *Stripe {
	return &Stripe{
		api:     client.New(secretKey, nil),
		baseURL: baseURL,
	}
}

// CreateCheckoutSession creates a card payment session for the plan's
// one-time price. The client ID rides along as the session's client
// reference so the webhook can attribute the payment.
func (s *Stripe) CreateCheckoutSession(ctx context.Context, clientID string, plan plans.Plan) (string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(s.baseURL + "/checkout-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(s.baseURL + "/store"),
		ClientReferenceID:  stripe.String(clientID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(plan.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(plan.Name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("plan_id", plan.ID)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("creating checkout session (%v): %w", err, apperrors.ErrUpstream)
	}
	return sess.ID, nil
}
