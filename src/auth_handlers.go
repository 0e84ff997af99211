package main

import (
	"errors"
	"eventify/src/db"
	"eventify/src/models"
	"eventify/src/types"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

func generateJWT(email string, id uint, role string) (string, error) {
	claims := &types.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(id)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func guestAuthRoutes(g *gin.Engine) {
	auth := apiv1Group(g).Group("/auth")

	auth.POST("/register", func(ctx *gin.Context) {
		var body types.RegisterUserRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		dbi := db.GetDb()
		var existing models.User
		err := dbi.Where(&models.User{Email: body.Email}).First(&existing).Error
		if err == nil {
			ctx.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error looking up user [%s]: %s\n", body.Email, err.Error())
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		user := models.User{
			Name:  body.Name,
			Email: body.Email,
		}
		if err := dbi.Create(&user).Error; err != nil {
			log.Printf("Error creating user [%s]: %s\n", body.Email, err.Error())
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusCreated, gin.H{"id": user.ID})
	})

	auth.POST("/login", func(ctx *gin.Context) {
		var body types.LoginRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		dbi := db.GetDb()
		var user models.User
		if err := dbi.Where(&models.User{Email: body.Email}).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		token, err := generateJWT(user.Email, user.ID, user.Role)
		if err != nil {
			log.Printf("Error signing token for [%s]: %s\n", user.Email, err.Error())
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"token": token})
	})
}
