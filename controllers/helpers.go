package controllers

import (
	"errors"
	"net/http"

	"travel-voucher-api/middleware"
	"travel-voucher-api/models"
	"travel-voucher-api/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the services error taxonomy onto HTTP statuses.
// Conflict payloads carry the conflicting resource id so clients can resolve
// and retry.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var permissionErr *services.PermissionError
	var conflictErr *services.ConflictError
	var notFoundErr *services.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, gin.H{"error": permissionErr.Message})
	case errors.As(err, &conflictErr):
		body := gin.H{"error": conflictErr.Message, "resource": conflictErr.Resource}
		if conflictErr.ResourceID != 0 {
			body["resource_id"] = conflictErr.ResourceID
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// requestActor pulls the authenticated user out of the gin context. The
// services only ever see this explicit actor, never the context itself.
func requestActor(c *gin.Context) (*models.User, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return nil, false
	}
	return actor, true
}

// requestMeta captures client details for the audit trail.
func requestMeta(c *gin.Context) services.RequestMeta {
	return services.RequestMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

// paginationEnvelope builds the standard list response pagination block.
func paginationEnvelope(page, limit int, total int64) gin.H {
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return gin.H{
		"current_page": page,
		"per_page":     limit,
		"total":        total,
		"total_pages":  totalPages,
		"has_next":     page < int(totalPages),
		"has_prev":     page > 1,
	}
}
