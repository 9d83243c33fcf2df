package routes

import (
	"document-tracking-api/controllers"
	"document-tracking-api/middleware"
	"document-tracking-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Document Tracking API is running",
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

			// Department directory
			protected.GET("/departments", controllers.GetDepartments)
			protected.POST("/departments", middleware.RequireRole(models.RoleMisd), controllers.CreateDepartment)

			// Documents and routing
			documents := protected.Group("/documents")
			{
				documents.POST("", controllers.CreateDocument)
				documents.GET("", controllers.GetMyDocuments)
				documents.GET("/department/:department_id", controllers.GetDepartmentDocuments)
				documents.GET("/approval-queue",
					middleware.RequireRole(models.RoleDean, models.RolePresident),
					controllers.GetApprovalQueue)

				documents.GET("/:id", controllers.GetDocument)
				documents.DELETE("/:id", controllers.DeleteDocument)

				documents.POST("/:id/actions", controllers.ApplyAction)
				documents.POST("/bulk-actions", controllers.ApplyBulkAction)
				documents.GET("/:id/available-actions", controllers.GetAvailableActions)

				documents.GET("/:id/logs", controllers.GetActionLog)
				documents.GET("/:id/signatures", controllers.GetSignatures)

				documents.POST("/:id/files", controllers.UploadDocumentFile)
			}

			// Attachments
			protected.GET("/files/:file_id/download", controllers.DownloadDocumentFile)
		}
	}
}
