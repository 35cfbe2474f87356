package product

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"veltra_back_end/internal/cache"
	"veltra_back_end/internal/middleware"
	"veltra_back_end/internal/models"
	"veltra_back_end/internal/services"
	"veltra_back_end/internal/store"
)

// SyncProducts déclenche une synchronisation en masse du catalogue
func SyncProducts(c *gin.Context) {
	var input struct {
		Items  []models.SyncItem `json:"items"`
		Source models.SyncSource `json:"source"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Source == "" {
		input.Source = models.SyncSourceAPI
	}
	if !input.Source.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Source de synchronisation invalide: " + string(input.Source)})
		return
	}

	products, err := store.Products()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	logs, err := store.Logs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	engine := services.NewSyncEngine(products, logs)
	result, err := engine.SyncBatch(c.Request.Context(), input.Items, input.Source, middleware.ActorFromContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cache.InvalidateProducts(context.Background())

	c.JSON(http.StatusOK, result)
}
