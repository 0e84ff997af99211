package lib

import "context"

// PaymentGateway is the narrow surface of the external payment service
// the core depends on. Webhook delivery is handled separately by the
// HTTP layer; this covers only the synchronous calls.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (intentId string, clientSecret string, err error)
	CancelIntent(ctx context.Context, intentId string) error
	Refund(ctx context.Context, intentId string) error
}

var gateway PaymentGateway

func GetGateway() PaymentGateway {
	if gateway != nil {
		return gateway
	}
	gateway = StripeGateway{}
	return gateway
}

// NewGateway replaces the gateway instance, used by tests.
func NewGateway(g PaymentGateway) {
	gateway = g
}
