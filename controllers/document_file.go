package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"document-tracking-api/config"
	"document-tracking-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUploadSizeBytes = 20 << 20 // 20 MB

// UploadDocumentFile attaches a file to a document. Only the requester may
// attach, and only while no department has declined or closed the document.
// POST /api/v1/documents/:id/files
func UploadDocumentFile(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the requester may attach files"})
		return
	}
	if models.IsTerminalStatus(doc.Status) {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot attach files to a closed document"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	if file.Size > maxUploadSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 20MB limit"})
		return
	}

	record := models.DocumentFile{
		DocumentID:   doc.DocumentID,
		OriginalName: filepath.Base(file.Filename),
		FileSize:     file.Size,
		MimeType:     file.Header.Get("Content-Type"),
		UploadedBy:   userID,
	}
	if !record.IsValidDocumentMime() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type is not allowed"})
		return
	}

	hash, err := hashUploadedFile(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	record.FileHash = hash

	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	storedName := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(file.Filename))
	storedPath := filepath.Join(uploadPath, storedName)

	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	now := time.Now()
	record.StoredPath = storedPath
	record.UploadedAt = now
	record.CreateAt = now
	record.UpdateAt = now

	if err := config.DB.Create(&record).Error; err != nil {
		os.Remove(storedPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file record"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "File uploaded successfully",
		"file":    record,
	})
}

// DownloadDocumentFile streams an attachment.
// GET /api/v1/files/:file_id/download
func DownloadDocumentFile(c *gin.Context) {
	fileID, err := strconv.Atoi(c.Param("file_id"))
	if err != nil || fileID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return
	}

	var record models.DocumentFile
	if err := config.DB.Where("file_id = ? AND delete_at IS NULL", fileID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load file record"})
		return
	}

	if _, err := os.Stat(record.StoredPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File is missing from storage"})
		return
	}

	c.FileAttachment(record.StoredPath, record.OriginalName)
}

// hashUploadedFile creates a SHA256 hash of file content.
func hashUploadedFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, src); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
