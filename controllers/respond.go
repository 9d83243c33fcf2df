package controllers

import (
	"document-tracking-api/errs"

	"github.com/gin-gonic/gin"
)

// respondError translates a typed service failure into the HTTP response the
// UI consumes.
func respondError(c *gin.Context, err error) {
	c.JSON(errs.HTTPStatus(err), gin.H{
		"success": false,
		"code":    errs.CodeOf(err),
		"error":   errs.MessageOf(err),
	})
}

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (int, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := value.(int)
	return userID, ok
}
