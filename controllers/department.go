package controllers

import (
	"net/http"
	"time"

	"document-tracking-api/config"
	"document-tracking-api/models"
	"document-tracking-api/services"
	"document-tracking-api/utils"

	"github.com/gin-gonic/gin"
)

// GetDepartments lists the department directory.
// GET /api/v1/departments
func GetDepartments(c *gin.Context) {
	departments, err := services.GetDepartments()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"departments": departments,
		"total":       len(departments),
	})
}

type CreateDepartmentRequest struct {
	DepartmentName string `json:"department_name" binding:"required"`
}

// CreateDepartment adds a department to the directory. MISD only.
// POST /api/v1/departments
func CreateDepartment(c *gin.Context) {
	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := utils.SanitizeInput(req.DepartmentName)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Department name is required"})
		return
	}

	now := time.Now()
	department := models.Department{
		DepartmentName: name,
		CreateAt:       &now,
		UpdateAt:       &now,
	}
	if err := config.DB.Create(&department).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create department"})
		return
	}

	services.ClearDepartmentCache()

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Department created successfully",
		"department": department,
	})
}
