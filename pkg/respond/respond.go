package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/frc-scouting/scout-sync/pkg/scouting"
)

// Error writes the response for err and aborts. Validation errors are the
// caller's fault and are echoed back; anything else is logged and hidden.
func Error(c *gin.Context, logger *zap.Logger, op string, err error) {
	var ve *scouting.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
		c.Abort()
		return
	}

	if logger != nil {
		logger.Error("Failed to "+op, zap.Error(err), zap.String("path", c.FullPath()))
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	c.Abort()
}

// BadRequest answers a request that could not be parsed.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
	c.Abort()
}
