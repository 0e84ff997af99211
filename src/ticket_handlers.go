package main

import (
	"context"
	"errors"
	"eventify/src/common"
	"eventify/src/db"
	"eventify/src/lib"
	"eventify/src/models"
	"eventify/src/types"
	"eventify/src/utils"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

// ticketVerifyRoute is the usher-facing scanner endpoint. It is public;
// the token itself is the credential.
func ticketVerifyRoute(g *gin.Engine) {
	group := apiv1Group(g)

	group.GET("/tickets/verify", func(ctx *gin.Context) {
		var query types.VerifyTicketQuery
		if err := ctx.ShouldBindQuery(&query); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := common.VerifyTicket(query.Token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrInvalidToken):
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
			case errors.Is(err, common.ErrNotFound):
				ctx.AbortWithStatus(http.StatusNotFound)
			default:
				log.Printf("Error verifying ticket: %s\n", err.Error())
				ctx.AbortWithStatus(http.StatusInternalServerError)
			}
			return
		}
		ctx.JSON(http.StatusOK, result)
	})
}

func ticketHandlers(g *gin.RouterGroup) {
	g.POST("/tickets/:id/code", func(ctx *gin.Context) {
		var params types.TicketCodeURIParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		dbi := db.GetDb()
		var ticket models.Ticket
		if err := dbi.
			Where(&models.Ticket{ID: params.TicketID}).
			First(&ticket).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.AbortWithStatus(http.StatusNotFound)
				return
			}
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if ticket.BookingID == nil {
			ctx.JSON(http.StatusConflict, gin.H{"error": "ticket is not claimed"})
			return
		}
		var booking models.Booking
		if err := dbi.
			Where(&models.Booking{ID: *ticket.BookingID}).
			First(&booking).
			Error; err != nil {
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !bookingOwnedBy(ctx, &booking) {
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}
		if booking.Status != types.BOOKING_BOOKED {
			ctx.JSON(http.StatusConflict, gin.H{"error": "booking is not confirmed"})
			return
		}

		filename := fmt.Sprintf("ticketcode_%d-%d", ticket.ID, booking.ID)
		token, err := utils.IssueTicketToken(ticket.ID, booking.ID)
		if err != nil {
			log.Printf("Error issuing ticket code [%s]: %s\n", filename, err.Error())
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		qrc, err := qrcode.New(token)
		if err != nil {
			log.Printf("Error building qrcode [%s]: %s\n", filename, err.Error())
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		tempdir := os.Getenv("TEMP_DIR")
		if tempdir == "" {
			tempdir = os.TempDir()
		}
		filepath := path.Join(tempdir, fmt.Sprintf("%s.jpeg", filename))
		if err := qrc.Save(filepath); err != nil {
			log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if rd := lib.GetRedisClient(); rd != nil {
			rd.SetEx(context.Background(), filename, token, 2*time.Hour)
		}
		ctx.FileAttachment(filepath, "eticket.jpeg")
	})
}
