package response

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/tonykolomeytsev/mpeix-backend-sub000/pkg/errors"
)

// JSON sends a success payload as the bare response body. The mobile
// clients consume payloads directly, without an envelope.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// Text sends a plain-text body. Health checks and messenger callbacks
// answer with short fixed strings.
func Text(c *gin.Context, status int, body string) {
	c.Header("Cache-Control", "no-store")
	c.String(status, body)
}

// Error classifies err through the error taxonomy and sends the matching
// status with a small JSON error body.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, gin.H{"error": appErr})
}
