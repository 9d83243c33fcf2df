package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"document-tracking-api/config"
	"document-tracking-api/models"
	"document-tracking-api/services"
	"document-tracking-api/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// documentView is a document row decorated with the computed display fields
// the portal tables render.
type documentView struct {
	models.Document
	CurrentDepartmentName string   `json:"current_department_name"`
	LastDepartmentName    string   `json:"last_department_name,omitempty"`
	RequesterName         string   `json:"requester_name"`
	CreateAtDisplay       string   `json:"create_at_display"`
	UpdateAtDisplay       string   `json:"update_at_display"`
	AvailableActions      []string `json:"available_actions"`
}

func toDocumentView(doc models.Document, actor *services.Actor) documentView {
	view := documentView{
		Document:              doc,
		CurrentDepartmentName: services.DepartmentName(doc.CurrentDepartmentID),
		RequesterName:         doc.Requester.DisplayName(),
		CreateAtDisplay:       utils.FormatDisplayDate(doc.CreateAt),
		UpdateAtDisplay:       utils.FormatDisplayDate(doc.UpdateAt),
		AvailableActions:      []string{},
	}
	if doc.LastDepartmentID != nil {
		view.LastDepartmentName = services.DepartmentName(*doc.LastDepartmentID)
	}
	if actor != nil {
		view.AvailableActions = services.AvailableActions(&doc, actor)
	}
	return view
}

func toDocumentViews(docs []models.Document, actor *services.Actor) []documentView {
	views := make([]documentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, toDocumentView(doc, actor))
	}
	return views
}

type CreateDocumentRequest struct {
	DocumentType string `json:"document_type" binding:"required"`
	DepartmentID int    `json:"department_id" binding:"required"`
	Purpose      string `json:"purpose" binding:"required"`
}

// CreateDocument submits a new trackable document. It starts at to_receive in
// the chosen department; the SUBMITTED log entry is written in the same
// transaction so the log replays from creation.
func CreateDocument(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	if !models.IsValidDocumentType(req.DocumentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document type"})
		return
	}

	purpose := utils.SanitizeInput(req.Purpose)
	if purpose == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Purpose is required"})
		return
	}

	if _, err := services.GetDepartmentByID(req.DepartmentID); err != nil {
		respondError(c, err)
		return
	}

	var requester models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&requester).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	now := time.Now()
	doc := models.Document{
		DocumentNumber:      generateDocumentNumber(req.DocumentType),
		DocumentType:        req.DocumentType,
		UserID:              userID,
		Purpose:             purpose,
		Status:              models.StatusToReceive,
		CurrentDepartmentID: req.DepartmentID,
		CreateAt:            now,
		UpdateAt:            now,
	}
	if err := doc.SetAllSignature(nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare document"})
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&doc).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		return
	}

	logEntry := models.ActionLog{
		DocumentID:       doc.DocumentID,
		Action:           models.ActionSubmitted,
		ActorID:          userID,
		ActorName:        requester.DisplayName(),
		FromDepartmentID: req.DepartmentID,
		CreatedAt:        now,
	}
	if err := tx.Create(&logEntry).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write action log"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize submission"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Document submitted successfully",
		"document": doc,
	})
}

// GetMyDocuments returns the requester's own documents.
func GetMyDocuments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	query := config.DB.Preload("Requester").Preload("Files").
		Where("user_id = ? AND delete_at IS NULL", userID)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	if documentType := strings.TrimSpace(c.Query("document_type")); documentType != "" {
		query = query.Where("document_type = ?", documentType)
	}

	var docs []models.Document
	if err := query.Order("create_at DESC").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	actor, _ := services.ResolveActor(config.DB, userID)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"documents": toDocumentViews(docs, actor),
		"total":     len(docs),
	})
}

// GetDepartmentDocuments lists documents in a department's custody. Only the
// department's head or MISD may view the queue.
func GetDepartmentDocuments(c *gin.Context) {
	departmentID, err := strconv.Atoi(c.Param("department_id"))
	if err != nil || departmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid department ID"})
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
	if actor.RoleID != models.RoleMisd && !actor.IsHeadOf(departmentID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the department head may view this queue"})
		return
	}

	query := config.DB.Preload("Requester").Preload("Files").
		Where("current_department_id = ? AND delete_at IS NULL", departmentID)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var docs []models.Document
	if err := query.Order("create_at ASC").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"documents": toDocumentViews(docs, actor),
		"total":     len(docs),
	})
}

// GetApprovalQueue lists documents awaiting the caller's higher-up decision.
func GetApprovalQueue(c *gin.Context) {
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

	query := config.DB.Preload("Requester").Preload("Files").Where("delete_at IS NULL")
	switch actor.RoleID {
	case models.RoleDean:
		query = query.Where("status = ? AND is_in_dean = ?", models.StatusPending, true)
	case models.RolePresident:
		query = query.Where("status = ? AND is_in_president = ?", models.StatusApprovedByDean, true)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the dean or president has an approval queue"})
		return
	}

	var docs []models.Document
	if err := query.Order("update_at ASC").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"documents": toDocumentViews(docs, actor),
		"total":     len(docs),
	})
}

// GetDocument returns one document with its computed display fields.
func GetDocument(c *gin.Context) {
	documentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || documentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID"})
		return
	}

	var doc models.Document
	if err := config.DB.Preload("Requester").Preload("Files").
		Where("document_id = ? AND delete_at IS NULL", documentID).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load document"})
		return
	}

	userID, _ := currentUserID(c)
	actor, _ := services.ResolveActor(config.DB, userID)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"document": toDocumentView(doc, actor),
	})
}

// DeleteDocument removes a document the owner submitted, allowed only before
// any department has acted on it.
func DeleteDocument(c *gin.Context) {
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

	var doc models.Document
	if err := config.DB.Where("document_id = ? AND delete_at IS NULL", documentID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load document"})
		return
	}

	if doc.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the requester may delete this document"})
		return
	}
	if doc.Status != models.StatusToReceive {
		c.JSON(http.StatusConflict, gin.H{"error": "Document can only be deleted before a department has acted on it"})
		return
	}

	now := time.Now()
	result := config.DB.Model(&models.Document{}).
		Where("document_id = ? AND status = ? AND delete_at IS NULL", doc.DocumentID, models.StatusToReceive).
		Updates(map[string]interface{}{"delete_at": now, "update_at": now})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Document was modified by a concurrent action"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Document deleted successfully",
	})
}

// Global mutex for document number generation
var documentNumberMutex sync.Mutex

// generateDocumentNumber creates a unique sequence number (PREFIX-YYYY-NNNN).
// The running number resets when the year changes.
func generateDocumentNumber(documentType string) string {
	documentNumberMutex.Lock()
	defer documentNumberMutex.Unlock()

	prefix := models.NumberPrefix(documentType)
	year := time.Now().Format("2006")
	prefixYearLike := fmt.Sprintf("%s-%s%%", prefix, year)

	var count int64
	config.DB.Model(&models.Document{}).
		Where("document_type = ? AND document_number LIKE ?", documentType, prefixYearLike).
		Count(&count)

	for i := int64(1); i <= 10; i++ {
		potentialNumber := fmt.Sprintf("%s-%s-%04d", prefix, year, count+i)

		var existing int64
		config.DB.Model(&models.Document{}).
			Where("document_number = ?", potentialNumber).
			Count(&existing)

		if existing == 0 {
			return potentialNumber
		}
	}

	// concurrent writers exhausted the probe window, fall back to a random suffix
	bytes := make([]byte, 3)
	rand.Read(bytes)
	randomSuffix := strings.ToUpper(hex.EncodeToString(bytes))
	return fmt.Sprintf("%s-%s-R-%s", prefix, year, randomSuffix)
}
