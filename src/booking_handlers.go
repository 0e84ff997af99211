package main

import (
	"errors"
	"eventify/src/common"
	"eventify/src/db"
	"eventify/src/models"
	"eventify/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func bookingOwnedBy(ctx *gin.Context, booking *models.Booking) bool {
	role := ctx.GetString("role")
	return booking.UserID == ctx.GetUint("id") || role == "admin" || role == "organizer"
}

func bookingHandlers(g *gin.RouterGroup) {
	g.GET("/bookings", func(ctx *gin.Context) {
		dbi := db.GetDb()
		var bookings []models.Booking
		if err := dbi.
			Where(&models.Booking{UserID: ctx.GetUint("id")}).
			Preload("Event").
			Preload("Payment").
			Order("created_at desc").
			Find(&bookings).
			Error; err != nil {
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": bookings})
	})

	g.GET("/bookings/:id", func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		dbi := db.GetDb()
		var booking models.Booking
		if err := dbi.
			Where(&models.Booking{ID: params.ID}).
			Preload("Event").
			Preload("Payment").
			Preload("Tickets").
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.AbortWithStatus(http.StatusNotFound)
				return
			}
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !bookingOwnedBy(ctx, &booking) {
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": booking})
	})

	g.PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		dbi := db.GetDb()
		var booking models.Booking
		if err := dbi.
			Where(&models.Booking{ID: params.ID}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.AbortWithStatus(http.StatusNotFound)
				return
			}
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !bookingOwnedBy(ctx, &booking) {
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}
		if err := common.CancelBooking(ctx, booking.ID); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				ctx.AbortWithStatus(http.StatusNotFound)
				return
			}
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "canceled"})
	})
}
