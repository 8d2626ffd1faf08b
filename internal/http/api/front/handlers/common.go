// Package handlers implements the student-facing API endpoints.
package handlers

import "github.com/gin-gonic/gin"

// getUserUID extracts the authenticated user's UID from gin context.
func getUserUID(c *gin.Context) string {
	val, exists := c.Get("userUID")
	if !exists {
		return ""
	}
	uid, ok := val.(string)
	if !ok {
		return ""
	}
	return uid
}
