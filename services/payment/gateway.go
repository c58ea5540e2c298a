package payment

import (
	"context"
	"fmt"
	"math"

	"companionhub/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// IntentState is the gateway-neutral outcome of a payment intent.
type IntentState string

const (
	IntentPending   IntentState = "pending"
	IntentSucceeded IntentState = "succeeded"
	IntentFailed    IntentState = "failed"
)

type Intent struct {
	ID           string
	ClientSecret string
	State        IntentState
}

type RefundResult struct {
	ID     string
	Amount int64
}

// Gateway is the card processor. Amounts are in minor units.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, method models.PaymentMethod, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
	Refund(ctx context.Context, intentID string) (*RefundResult, error)
}

// MinorUnits converts a major-unit price to the gateway's integer amount.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// StripeGateway implements Gateway on the Stripe API.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(key string) *StripeGateway {
	sc := &client.API{}
	sc.Init(key, nil)
	return &StripeGateway{api: sc}
}

func intentState(status stripe.PaymentIntentStatus) IntentState {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return IntentSucceeded
	case stripe.PaymentIntentStatusCanceled, stripe.PaymentIntentStatusRequiresPaymentMethod:
		return IntentFailed
	}
	return IntentPending
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, method models.PaymentMethod, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	if method == models.MethodCard {
		params.PaymentMethodTypes = stripe.StringSlice([]string{"card"})
	} else {
		params.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		}
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, State: intentState(pi.Status)}, nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get payment intent: %w", err)
	}
	// The client secret is only handed out at creation.
	return &Intent{ID: pi.ID, State: intentState(pi.Status)}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string) (*RefundResult, error) {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(intentID)}
	params.Context = ctx
	r, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: refund: %w", err)
	}
	return &RefundResult{ID: r.ID, Amount: r.Amount}, nil
}
