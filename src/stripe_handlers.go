package main

import (
	"encoding/json"
	"eventify/src/common"
	"eventify/src/types"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// stripeWebhookRoute verifies the event signature, maps the raw stripe
// event onto the normalized gateway kinds and hands it to the
// reconciler. Any reconciliation error answers 500 so stripe redelivers.
func stripeWebhookRoute(g *gin.Engine) {
	group := apiv1Group(g)

	group.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading webhook body: %s\n", err.Error())
			ctx.AbortWithStatus(http.StatusBadRequest)
			return
		}
		endpointSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), endpointSecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.AbortWithStatus(http.StatusBadRequest)
			return
		}

		log.Printf("[StripeEvent] %s\n", event.Type)
		var kind types.GatewayEventKind
		var intentId string
		switch event.Type {
		case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
			var intent stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
				log.Printf("Error parsing webhook payload: %s\n", err.Error())
				ctx.AbortWithStatus(http.StatusBadRequest)
				return
			}
			intentId = intent.ID
			switch event.Type {
			case "payment_intent.succeeded":
				kind = types.GATEWAY_PAYMENT_SUCCEEDED
			case "payment_intent.payment_failed":
				kind = types.GATEWAY_PAYMENT_FAILED
			default:
				kind = types.GATEWAY_PAYMENT_CANCELED
			}
		case "charge.refunded":
			var charge stripe.Charge
			if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
				log.Printf("Error parsing webhook payload: %s\n", err.Error())
				ctx.AbortWithStatus(http.StatusBadRequest)
				return
			}
			// Stripe fires charge.refunded for partial refunds too;
			// Refunded is only true once the full amount is returned.
			// A partial refund keeps the booking and its seats.
			if !charge.Refunded {
				log.Printf("Charge [%s] only partially refunded, ignoring\n", charge.ID)
				ctx.Status(http.StatusOK)
				return
			}
			if charge.PaymentIntent != nil {
				intentId = charge.PaymentIntent.ID
			}
			kind = types.GATEWAY_CHARGE_REFUNDED
		default:
			log.Printf("Unhandled event type: %s\n", event.Type)
			ctx.Status(http.StatusOK)
			return
		}

		if intentId == "" {
			log.Printf("Event [%s] carries no payment intent, skipping\n", event.ID)
			ctx.Status(http.StatusOK)
			return
		}
		if err := common.HandleGatewayEvent(ctx, event.ID, kind, intentId); err != nil {
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx.Status(http.StatusOK)
	})
}
