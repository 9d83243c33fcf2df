package services

import (
	"errors"

	"document-tracking-api/errs"
	"document-tracking-api/models"

	"gorm.io/gorm"
)

// Actor is the resolved identity an action is authorized against. It is
// loaded fresh from the users table on every call; role or department
// reassignment between requests must take effect immediately, so resolved
// actors are never cached.
type Actor struct {
	UserID       int
	DisplayName  string
	RoleID       int
	DepartmentID *int
}

// IsHeadOf reports whether the actor is the head of the given department.
func (a *Actor) IsHeadOf(departmentID int) bool {
	return a.RoleID == models.RoleHead && a.DepartmentID != nil && *a.DepartmentID == departmentID
}

// ResolveActor loads the acting user and their role/department affiliation.
func ResolveActor(db *gorm.DB, userID int) (*Actor, error) {
	var user models.User
	if err := db.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.ErrNotFound, "actor %d not found", userID)
		}
		return nil, errs.Wrap(errs.ErrDatabase, "failed to resolve actor", err)
	}

	return &Actor{
		UserID:       user.UserID,
		DisplayName:  user.DisplayName(),
		RoleID:       user.RoleID,
		DepartmentID: user.DepartmentID,
	}, nil
}
