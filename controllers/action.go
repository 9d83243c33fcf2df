package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"document-tracking-api/config"
	"document-tracking-api/models"
	"document-tracking-api/services"
	"document-tracking-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ApplyActionRequest struct {
	Action             string `json:"action" binding:"required"`
	Remarks            string `json:"remarks"`
	TargetDepartmentID *int   `json:"to_department_id"`
}

// ApplyAction applies one routing action to one document.
// POST /api/v1/documents/:id/actions
func ApplyAction(c *gin.Context) {
	documentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || documentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	var req ApplyActionRequest
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

	engine := services.NewRoutingService(config.DB)
	doc, err := engine.ApplyAction(c.Request.Context(), userID, documentID, strings.ToLower(strings.TrimSpace(req.Action)), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	actor, _ := services.ResolveActor(config.DB, userID)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Action applied successfully",
		"document": toDocumentView(*doc, actor),
	})
}

// GetAvailableActions returns the actions the caller may legally apply,
// so the UI renders only live buttons. The server re-validates on apply
// regardless; this is advisory.
// GET /api/v1/documents/:id/available-actions
func GetAvailableActions(c *gin.Context) {
	documentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || documentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	actor, err := services.ResolveActor(config.DB, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var doc models.Document
	if err := config.DB.Where("document_id = ? AND delete_at IS NULL", documentID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"document_id":       doc.DocumentID,
		"status":            doc.Status,
		"available_actions": services.AvailableActions(&doc, actor),
	})
}
