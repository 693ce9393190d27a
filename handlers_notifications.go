package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nplaceworks/adrank_backend/models"
)

func listNotificationsHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	limit, offset := pageParams(c)

	notifications, err := models.ListNotifications(c.Request.Context(), userId, models.NotificationStatus(c.Query("status")), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func unreadNotificationCountHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)

	count, err := models.CountUnreadNotifications(c.Request.Context(), userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func markNotificationReadHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	notification, err := models.MarkNotificationRead(c.Request.Context(), userId, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notification)
}

func archiveNotificationHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	notification, err := models.ArchiveNotification(c.Request.Context(), userId, id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notification)
}

func markAllNotificationsReadHandler(c *gin.Context) {
	_, userId, _ := sessionIdentity(c)

	updated, err := models.MarkAllNotificationsRead(c.Request.Context(), userId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
