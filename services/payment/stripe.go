package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"fixerhub/apperrors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
	EventIntentCanceled  = "payment_intent.canceled"
)

// StripeGateway talks to Stripe using the package-level stripe.Key.
type StripeGateway struct {
	WebhookSecret string
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (IntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return IntentResult{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return IntentResult{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, intentID string) (IntentResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return IntentResult{}, fmt.Errorf("stripe: get payment intent %s: %w", intentID, err)
	}
	return IntentResult{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) CancelIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}
	params.Context = ctx
	if _, err := paymentintent.Cancel(intentID, params); err != nil {
		return fmt.Errorf("stripe: cancel payment intent %s: %w", intentID, err)
	}
	return nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string, amountMinor int64, reason string) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(amountMinor),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	// A payment is refunded at most once, so webhook retries reuse the first refund.
	params.SetIdempotencyKey("refund-" + intentID)
	if reason != "" {
		params.AddMetadata("reason", reason)
	}
	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: refund %s: %w", intentID, err)
	}
	return r.ID, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.WebhookSecret)
	if err != nil {
		return WebhookEvent{}, apperrors.Validation("invalid webhook signature")
	}
	out := WebhookEvent{Type: string(event.Type)}
	switch out.Type {
	case EventIntentSucceeded, EventIntentFailed, EventIntentCanceled:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return WebhookEvent{}, apperrors.Validation("malformed payment intent payload")
		}
		out.IntentID = pi.ID
		if pi.LastPaymentError != nil {
			out.FailureReason = pi.LastPaymentError.Msg
		}
	}
	return out, nil
}

// MinorUnits converts an amount to the currency's smallest unit.
func MinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
