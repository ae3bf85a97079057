package routes

import (
	"travel-voucher-api/controllers"
	"travel-voucher-api/middleware"
	"travel-voucher-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Travel Voucher API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Notifications
			protected.GET("/notifications", controllers.GetNotifications)
			protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)

			// Trip ledger
			trips := protected.Group("/trips")
			{
				trips.GET("", controllers.GetTrips)
				trips.POST("", controllers.CreateTrip)
				trips.PUT("/:id", controllers.UpdateTrip)
				trips.DELETE("/:id", controllers.DeleteTrip)
			}

			// Vouchers and approval workflow
			vouchers := protected.Group("/vouchers")
			{
				vouchers.GET("", controllers.GetVouchers)
				vouchers.GET("/:id", controllers.GetVoucher)
				vouchers.POST("", controllers.CreateVoucher)
				vouchers.DELETE("/:id", controllers.DeleteVoucher)

				vouchers.POST("/:id/submit", controllers.SubmitVoucher)
				vouchers.POST("/:id/approve-supervisor",
					middleware.RequireRole(models.RoleSupervisor),
					controllers.ApproveVoucherSupervisor)
				vouchers.POST("/:id/approve-fleet",
					middleware.RequireRole(models.RoleFleetManager, models.RoleAdmin),
					controllers.ApproveVoucherFleet)
				vouchers.POST("/:id/reject", controllers.RejectVoucher)
			}

			// Assignment directory and request workflow
			assignments := protected.Group("/assignments")
			{
				assignments.GET("/requests", controllers.GetAssignmentRequests)
				assignments.POST("/requests",
					middleware.RequireRole(models.RoleSupervisor),
					controllers.CreateAssignmentRequest)
				assignments.POST("/requests/:id/process",
					middleware.RequireRole(models.RoleSupervisor, models.RoleAdmin),
					controllers.ProcessAssignmentRequest)
				assignments.POST("/requests/:id/cancel",
					middleware.RequireRole(models.RoleSupervisor),
					controllers.CancelAssignmentRequest)
				assignments.GET("/inspectors/:id", controllers.GetAssignment)
			}

			// Audit trail (approver tier only)
			protected.GET("/audit-logs",
				middleware.RequireRole(models.RoleFleetManager, models.RoleAdmin),
				controllers.GetAuditLogs)
		}
	}
}
