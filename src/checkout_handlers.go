package main

import (
	"errors"
	"eventify/src/common"
	"eventify/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// checkoutRoute is open to guests; the checkout itself resolves or
// creates the user record from the supplied email. A signed-in caller
// could be attached here later by reading the optional bearer token.
func checkoutRoute(g *gin.Engine) {
	group := apiv1Group(g)

	group.POST("/checkout", func(ctx *gin.Context) {
		var body types.CheckoutRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := common.Checkout(ctx, ctx.GetUint("id"), &body)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrNotFound):
				ctx.JSON(http.StatusNotFound, gin.H{"error": "event or category not found"})
			case errors.Is(err, common.ErrInsufficientInventory):
				ctx.JSON(http.StatusConflict, gin.H{"error": "category full"})
			case errors.Is(err, common.ErrGateway):
				ctx.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
			default:
				log.Printf("Checkout failed: %s\n", err.Error())
				ctx.AbortWithStatus(http.StatusInternalServerError)
			}
			return
		}
		ctx.JSON(http.StatusCreated, result)
	})
}
