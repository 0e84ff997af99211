package lib

import (
	"context"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// StripeGateway adapts the Stripe PaymentIntents API to the
// PaymentGateway interface the checkout and reconciliation code uses.
type StripeGateway struct{}

func (StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, string, error) {
	sc := GetStripeClient()
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := sc.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return "", "", err
	}
	return pi.ID, pi.ClientSecret, nil
}

func (StripeGateway) CancelIntent(ctx context.Context, intentId string) error {
	sc := GetStripeClient()
	_, err := sc.V1PaymentIntents.Cancel(ctx, intentId, &stripe.PaymentIntentCancelParams{})
	return err
}

func (StripeGateway) Refund(ctx context.Context, intentId string) error {
	sc := GetStripeClient()
	_, err := sc.V1Refunds.Create(ctx, &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(intentId),
	})
	return err
}
