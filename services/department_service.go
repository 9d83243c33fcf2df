package services

import (
	"sync"
	"time"

	"document-tracking-api/config"
	"document-tracking-api/errs"
	"document-tracking-api/models"
)

var (
	departmentCacheMu sync.RWMutex
	departmentCache   *departmentCacheEntry
	departmentTTL     = 5 * time.Minute
)

type departmentCacheEntry struct {
	departments []models.Department
	byID        map[int]models.Department
	fetchedAt   time.Time
}

func loadDepartments(force bool) (*departmentCacheEntry, error) {
	departmentCacheMu.RLock()
	cached := departmentCache
	departmentCacheMu.RUnlock()

	if cached != nil && !force && time.Since(cached.fetchedAt) < departmentTTL {
		return cached, nil
	}

	departmentCacheMu.Lock()
	defer departmentCacheMu.Unlock()

	if departmentCache != nil && !force && time.Since(departmentCache.fetchedAt) < departmentTTL {
		return departmentCache, nil
	}

	var rows []models.Department
	if err := config.DB.Where("delete_at IS NULL").Order("department_name ASC").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(errs.ErrDatabase, "failed to load departments", err)
	}

	byID := make(map[int]models.Department, len(rows))
	for _, department := range rows {
		byID[department.DepartmentID] = department
	}

	entry := &departmentCacheEntry{
		departments: rows,
		byID:        byID,
		fetchedAt:   time.Now(),
	}
	departmentCache = entry
	return entry, nil
}

// ClearDepartmentCache invalidates the in-memory department cache.
func ClearDepartmentCache() {
	departmentCacheMu.Lock()
	defer departmentCacheMu.Unlock()
	departmentCache = nil
}

// GetDepartments returns all departments with caching support.
func GetDepartments() ([]models.Department, error) {
	entry, err := loadDepartments(false)
	if err != nil {
		return nil, err
	}
	return entry.departments, nil
}

// GetDepartmentByID returns a department from the directory.
func GetDepartmentByID(departmentID int) (*models.Department, error) {
	if departmentID <= 0 {
		return nil, errs.New(errs.ErrValidation, "department id is required")
	}

	entry, err := loadDepartments(false)
	if err != nil {
		return nil, err
	}

	if department, ok := entry.byID[departmentID]; ok {
		return &department, nil
	}

	// Force refresh cache once before giving up
	entry, err = loadDepartments(true)
	if err != nil {
		return nil, err
	}

	if department, ok := entry.byID[departmentID]; ok {
		return &department, nil
	}

	return nil, errs.Newf(errs.ErrNotFound, "department %d not found", departmentID)
}

// DepartmentName resolves a display name, tolerating missing ids.
func DepartmentName(departmentID int) string {
	department, err := GetDepartmentByID(departmentID)
	if err != nil {
		return ""
	}
	return department.DepartmentName
}
