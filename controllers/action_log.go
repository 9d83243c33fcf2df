package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"document-tracking-api/config"
	"document-tracking-api/models"
	"document-tracking-api/services"
	"document-tracking-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// actionLogView decorates a log entry with resolved names and display dates
// for the "to-date" timeline.
type actionLogView struct {
	models.ActionLog
	FromDepartmentName string `json:"from_department_name"`
	ToDepartmentName   string `json:"to_department_name,omitempty"`
	CreatedAtDisplay   string `json:"created_at_display"`
}

// GetActionLog returns the full audit timeline for a document in creation
// order. With ?verify=1 it also replays the log and reports whether the
// materialized row agrees with it.
// GET /api/v1/documents/:id/logs
func GetActionLog(c *gin.Context) {
	documentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || documentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
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

	var entries []models.ActionLog
	if err := config.DB.Where("document_id = ?", documentID).
		Order("log_id ASC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch action log"})
		return
	}

	views := make([]actionLogView, 0, len(entries))
	for _, entry := range entries {
		view := actionLogView{
			ActionLog:          entry,
			FromDepartmentName: services.DepartmentName(entry.FromDepartmentID),
			CreatedAtDisplay:   utils.FormatDisplayDate(entry.CreatedAt),
		}
		if entry.ToDepartmentID != nil {
			view.ToDepartmentName = services.DepartmentName(*entry.ToDepartmentID)
		}
		views = append(views, view)
	}

	response := gin.H{
		"success": true,
		"logs":    views,
		"total":   len(views),
	}

	if c.Query("verify") == "1" {
		state, replayErr := services.ReplayActionLog(doc.DocumentType, entries)
		if replayErr != nil {
			response["replay_error"] = replayErr.Error()
		} else {
			response["replayed_state"] = state
			response["consistent"] = state.MatchesDocument(&doc)
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetSignatures returns the signing ledger for a document across all hops.
// GET /api/v1/documents/:id/signatures
func GetSignatures(c *gin.Context) {
	documentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || documentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	var count int64
	if err := config.DB.Model(&models.Document{}).
		Where("document_id = ? AND delete_at IS NULL", documentID).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load document"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	var signatures []models.SignatureRecord
	if err := config.DB.Preload("Signer").
		Where("document_id = ?", documentID).
		Order("signed_at ASC").Find(&signatures).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch signatures"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"signatures": signatures,
		"total":      len(signatures),
	})
}
