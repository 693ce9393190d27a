package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
)

func sessionTokenTTL() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func registerHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := models.CreateUser(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := models.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fails, cntErr := config.GetRedisCounter(c.Request.Context(), "LoginFail:"+req.Username, config.LoginFailWindow())
		if cntErr == nil && fails > 10 {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many failed attempts"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	_ = config.RemoveRedisKey("LoginFail:" + req.Username)

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	if err := config.SetRedisValue("Token:"+token, user.Username, sessionTokenTTL()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func logoutHandler(c *gin.Context) {
	token, ok := utils.GetTokenFromContext(c.Request.Context())
	if !ok || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove session"})
		return
	}
	c.Status(http.StatusNoContent)
}

func meHandler(c *gin.Context) {
	userId, _ := utils.GetUserIdFromContext(c.Request.Context())
	user, err := models.GetUserById(c.Request.Context(), userId)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
