package utils

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"veltra_back_end/internal/models"
	"veltra_back_end/internal/store"
)

var auditStore store.AuditLogStore

// SetAuditStore branche le journal d'audit utilisé par les handlers.
// À appeler une fois au démarrage.
func SetAuditStore(s store.AuditLogStore) {
	auditStore = s
}

// LogAction enregistre une action réussie dans le journal d'audit
func LogAction(c *gin.Context, op models.Operation, entityType models.EntityType, entityID, message string, details map[string]interface{}) {
	entry := buildEntry(c, op, entityType, entityID, message, details)
	go persist(entry)
}

// LogFailedAction enregistre une action échouée dans le journal d'audit
func LogFailedAction(c *gin.Context, op models.Operation, entityType models.EntityType, entityID, message, errorMsg string) {
	entry := buildEntry(c, op, entityType, entityID, message, map[string]interface{}{"error": errorMsg})
	entry.Level = models.LevelError
	entry.Status = models.StatusFailed
	go persist(entry)
}

func buildEntry(c *gin.Context, op models.Operation, entityType models.EntityType, entityID, message string, details map[string]interface{}) *models.AuditLogEntry {
	userID, _ := c.Get("user_id")
	username, _ := c.Get("email")

	return &models.AuditLogEntry{
		Operation:  op,
		EntityType: entityType,
		EntityID:   entityID,
		Message:    message,
		Details:    details,
		UserID:     getStringValue(userID),
		Username:   getStringValue(username),
		Source:     models.SourceAPI,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	}
}

// persist écrit en best-effort : le journal d'audit n'est pas la source
// de vérité de l'état du catalogue
func persist(entry *models.AuditLogEntry) {
	if auditStore == nil {
		return
	}
	if err := auditStore.Insert(context.Background(), entry); err != nil {
		log.Printf("❌ Erreur enregistrement log audit: %v", err)
	}
}

// getStringValue convertit une interface{} en string
func getStringValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}
