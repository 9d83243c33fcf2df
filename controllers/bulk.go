package controllers

import (
	"net/http"
	"strings"

	"document-tracking-api/config"
	"document-tracking-api/services"
	"document-tracking-api/utils"

	"github.com/gin-gonic/gin"
)

type BulkActionRequest struct {
	Action             string `json:"action" binding:"required"`
	Remarks            string `json:"remarks"`
	TargetDepartmentID *int   `json:"to_department_id"`
	DocumentIDs        []int  `json:"document_ids" binding:"required"`
}

// ApplyBulkAction fans one action out over many documents and reports the
// aggregate. Partial failure is expected: the UI surfaces both counts even
// when every item failed.
// POST /api/v1/documents/bulk-actions
func ApplyBulkAction(c *gin.Context) {
	var req BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	payload := services.ActionPayload{
		Remarks:            utils.SanitizeInput(req.Remarks),
		TargetDepartmentID: req.TargetDepartmentID,
	}

	coordinator := services.NewBulkService(services.NewRoutingService(config.DB))
	result, err := coordinator.ApplyBulkAction(
		c.Request.Context(),
		userID,
		strings.ToLower(strings.TrimSpace(req.Action)),
		payload,
		req.DocumentIDs,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"items":     result.Items,
	})
}
