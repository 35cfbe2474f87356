package middleware

import (
	"github.com/gin-gonic/gin"

	"veltra_back_end/internal/models"
	"veltra_back_end/internal/utils"
)

// AuditCriticalActions journalise une action sensible après traitement,
// en succès comme en échec
func AuditCriticalActions(op models.Operation, entityType models.EntityType, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceID := c.Param("id")

		c.Next()

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			utils.LogAction(c, op, entityType, resourceID, message, nil)
		} else {
			utils.LogFailedAction(c, op, entityType, resourceID, message, "Action échouée")
		}
	}
}
