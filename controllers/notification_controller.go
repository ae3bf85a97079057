package controllers

import (
	"net/http"
	"strconv"

	"travel-voucher-api/services"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the actor's in-app notifications.
func GetNotifications(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := services.NewNotificationService(nil).ListForUser(actor.UserID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// MarkNotificationRead flags one notification as read.
func MarkNotificationRead(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || notificationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := services.NewNotificationService(nil).MarkRead(actor.UserID, uint(notificationID)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification marked as read",
	})
}
