package controllers

import (
	"net/http"
	"strconv"
	"time"

	"travel-voucher-api/services"

	"github.com/gin-gonic/gin"
)

// GetAuditLogs queries the audit trail with filters on actor, action,
// resource and date range. Restricted by route to fleet managers and admins.
func GetAuditLogs(c *gin.Context) {
	if _, ok := requestActor(c); !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	query := services.AuditQuery{
		Action:       c.Query("action"),
		ResourceType: c.Query("resource_type"),
		Page:         page,
		Limit:        limit,
	}

	if raw := c.Query("actor_id"); raw != "" {
		actorID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid actor_id"})
			return
		}
		query.ActorID = &actorID
	}
	if raw := c.Query("resource_id"); raw != "" {
		resourceID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource_id"})
			return
		}
		query.ResourceID = &resourceID
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be formatted YYYY-MM-DD"})
			return
		}
		query.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be formatted YYYY-MM-DD"})
			return
		}
		// include the whole day
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		query.To = &end
	}

	entries, total, err := services.NewAuditService(nil).Query(query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 || query.Limit > 100 {
		query.Limit = 20
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"entries":    entries,
		"pagination": paginationEnvelope(query.Page, query.Limit, total),
	})
}
