package controllers

import (
	"net/http"
	"strconv"

	"travel-voucher-api/models"
	"travel-voucher-api/services"
	"travel-voucher-api/utils"

	"github.com/gin-gonic/gin"
)

// CreateVoucher opens a draft voucher for one calendar period.
func CreateVoucher(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	var req struct {
		Month int `json:"month" binding:"required"`
		Year  int `json:"year" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	voucher, err := services.NewVoucherService(nil).CreateVoucher(actor, req.Month, req.Year, requestMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Voucher created successfully",
		"voucher": voucher,
	})
}

// GetVoucher returns one voucher with fresh totals.
func GetVoucher(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	voucherID, err := strconv.Atoi(c.Param("id"))
	if err != nil || voucherID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid voucher ID"})
		return
	}

	voucher, err := services.NewVoucherService(nil).GetVoucher(actor, voucherID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"voucher": voucher,
	})
}

// GetVouchers lists vouchers visible to the actor.
func GetVouchers(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))

	filter := services.VoucherFilter{
		Status: c.Query("status"),
		Month:  month,
		Year:   year,
		Page:   page,
		Limit:  limit,
	}

	vouchers, total, err := services.NewVoucherService(nil).ListVouchers(actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"vouchers":   vouchers,
		"pagination": paginationEnvelope(filter.Page, filter.Limit, total),
	})
}

// SubmitVoucher moves a draft voucher to submitted.
func SubmitVoucher(c *gin.Context) {
	workflowTransition(c, func(actor actorParam, voucherID int) (interface{}, error) {
		return services.NewVoucherWorkflowService(nil).Submit(actor.user, voucherID, actor.meta)
	}, "Voucher submitted successfully")
}

// ApproveVoucherSupervisor records the assigned supervisor's approval.
func ApproveVoucherSupervisor(c *gin.Context) {
	workflowTransition(c, func(actor actorParam, voucherID int) (interface{}, error) {
		return services.NewVoucherWorkflowService(nil).ApproveSupervisor(actor.user, voucherID, actor.meta)
	}, "Voucher approved by supervisor")
}

// ApproveVoucherFleet records the fleet-level approval.
func ApproveVoucherFleet(c *gin.Context) {
	workflowTransition(c, func(actor actorParam, voucherID int) (interface{}, error) {
		return services.NewVoucherWorkflowService(nil).ApproveFleet(actor.user, voucherID, actor.meta)
	}, "Voucher approved for payment")
}

// RejectVoucher terminates a voucher with a mandatory reason.
func RejectVoucher(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	voucherID, err := strconv.Atoi(c.Param("id"))
	if err != nil || voucherID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid voucher ID"})
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rejection reason is required"})
		return
	}

	voucher, err := services.NewVoucherWorkflowService(nil).Reject(actor, voucherID, utils.SanitizeInput(req.Reason), requestMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Voucher rejected",
		"voucher": voucher,
	})
}

// DeleteVoucher removes a voucher that is still draft.
func DeleteVoucher(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	voucherID, err := strconv.Atoi(c.Param("id"))
	if err != nil || voucherID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid voucher ID"})
		return
	}

	if err := services.NewVoucherWorkflowService(nil).DeleteVoucher(actor, voucherID, requestMeta(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Voucher deleted successfully",
	})
}

type actorParam struct {
	user *models.User
	meta services.RequestMeta
}

// workflowTransition shares the id-parse/invoke/respond shape of the four
// transition endpoints.
func workflowTransition(c *gin.Context, invoke func(actorParam, int) (interface{}, error), message string) {
	actor, ok := requestActor(c)
	if !ok {
		return
	}

	voucherID, err := strconv.Atoi(c.Param("id"))
	if err != nil || voucherID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid voucher ID"})
		return
	}

	voucher, err := invoke(actorParam{user: actor, meta: requestMeta(c)}, voucherID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"voucher": voucher,
	})
}
