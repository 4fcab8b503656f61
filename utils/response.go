package utils

import "github.com/gin-gonic/gin"

// JSONSuccess writes the shared success envelope.
func JSONSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

// JSONError writes the structured error envelope used across the API.
// details carries optional diagnostic text (binding errors and the like).
func JSONError(c *gin.Context, status int, code, message string, details ...string) {
	body := gin.H{"code": code, "message": message}
	if len(details) > 0 && details[0] != "" {
		body["details"] = details[0]
	}
	c.JSON(status, gin.H{"error": body})
}
