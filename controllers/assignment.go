package controllers

import (
	"net/http"
	"strconv"

	"travel-voucher-api/services"
	"travel-voucher-api/utils"

	"github.com/gin-gonic/gin"
)

// CreateAssignmentRequest opens a pending reassignment request for an
// inspector.
func CreateAssignmentRequest(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	var req struct {
		InspectorID int    `json:"inspector_id" binding:"required"`
		Reason      string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := services.NewAssignmentService(nil).
		RequestAssignment(actor, req.InspectorID, utils.SanitizeInput(req.Reason), requestMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Assignment request created",
		"request": request,
	})
}

// ProcessAssignmentRequest resolves a pending request (approve/reject).
func ProcessAssignmentRequest(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil || requestID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := services.NewAssignmentService(nil).
		ProcessRequest(actor, requestID, req.Decision, requestMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Assignment request " + request.Status,
		"request": request,
	})
}

// CancelAssignmentRequest withdraws the actor's own pending request.
func CancelAssignmentRequest(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil || requestID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cancellation reason is required"})
		return
	}

	request, err := services.NewAssignmentService(nil).
		CancelRequest(actor, requestID, utils.SanitizeInput(req.Reason), requestMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Assignment request cancelled",
		"request": request,
	})
}

// GetAssignmentRequests lists the requests visible to the actor.
func GetAssignmentRequests(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	requests, err := services.NewAssignmentService(nil).ListRequests(actor, c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": requests,
		"total":    len(requests),
	})
}

// GetAssignment looks up an inspector's current supervisor.
func GetAssignment(c *gin.Context) {
	if _, ok := requestActor(c); !ok {
		return
	}

	inspectorID, err := strconv.Atoi(c.Param("id"))
	if err != nil || inspectorID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inspector ID"})
		return
	}

	supervisor, err := services.NewAssignmentService(nil).GetAssignment(inspectorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if supervisor == nil {
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"assigned": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"assigned":   true,
		"supervisor": supervisor,
	})
}
