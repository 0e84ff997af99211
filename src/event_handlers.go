package main

import (
	"errors"
	"eventify/src/common"
	"eventify/src/db"
	"eventify/src/middlewares"
	"eventify/src/models"
	"eventify/src/types"
	"eventify/src/utils"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// publicEventRoutes serves the browse surface. No auth; attendees window
// shop before they ever register.
func publicEventRoutes(g *gin.Engine) {
	group := apiv1Group(g)

	group.GET("/events", func(ctx *gin.Context) {
		dbi := db.GetDb()
		var events []models.Event
		if err := dbi.
			Where("ends_at > ?", time.Now()).
			Preload("Categories").
			Order("starts_at asc").
			Find(&events).
			Error; err != nil {
			log.Printf("Error listing events: %s\n", err.Error())
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": events})
	})

	group.GET("/events/:id", func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		dbi := db.GetDb()
		var event models.Event
		if err := dbi.
			Where(&models.Event{ID: params.ID}).
			Preload("Categories").
			First(&event).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.AbortWithStatus(http.StatusNotFound)
				return
			}
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"data":   event,
			"status": event.Status(time.Now()),
		})
	})

	group.GET("/events/:id/categories", func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		dbi := db.GetDb()
		var categories []models.Category
		if err := dbi.
			Where(&models.Category{EventID: params.ID}).
			Find(&categories).
			Error; err != nil {
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if len(categories) == 0 {
			ctx.AbortWithStatus(http.StatusNotFound)
			return
		}
		data := make([]gin.H, 0, len(categories))
		for _, c := range categories {
			available, err := common.CountAvailable(params.ID, c.Title)
			if err != nil {
				log.Printf("Error counting availability [%d/%s]: %s\n", params.ID, c.Title, err.Error())
				ctx.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			data = append(data, gin.H{
				"category":  c,
				"available": available,
			})
		}
		ctx.JSON(http.StatusOK, gin.H{"data": data})
	})
}

func eventHandlers(g *gin.RouterGroup) {
	g.POST("/events", middlewares.AdminMiddleware, func(ctx *gin.Context) {
		var body types.CreateEventRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		organizerId := ctx.GetUint("id")
		eventId, err := utils.CreateNewEvent(organizerId, &body)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusCreated, gin.H{"id": eventId})
	})
}
