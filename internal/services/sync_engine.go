package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"veltra_back_end/internal/models"
	"veltra_back_end/internal/store"
)

// SyncEngine applique un lot de produits entrants : création ou mise à
// jour décidée par SKU, avec une entrée d'audit par issue. Un item en
// erreur n'interrompt jamais le lot, il est compté et journalisé.
type SyncEngine struct {
	products store.ProductStore
	logs     store.AuditLogStore
}

func NewSyncEngine(products store.ProductStore, logs store.AuditLogStore) *SyncEngine {
	return &SyncEngine{products: products, logs: logs}
}

// SyncBatch traite les items strictement dans l'ordre d'entrée : un SKU
// dupliqué dans le même lot est résolu en dernier-écrit-gagnant.
func (e *SyncEngine) SyncBatch(ctx context.Context, items []models.SyncItem, source models.SyncSource, actor models.Actor) (*models.SyncResult, error) {
	if !source.IsValid() {
		return nil, &models.ValidationError{Field: "source", Message: "Source de synchronisation invalide: " + string(source)}
	}

	start := time.Now()
	result := &models.SyncResult{Total: len(items)}

	e.emit(ctx, &models.AuditLogEntry{
		Operation:  models.OpSync,
		EntityType: models.EntityProduct,
		Message:    fmt.Sprintf("Démarrage de la synchronisation: %d produit(s) à traiter", len(items)),
		Level:      models.LevelInfo,
		Source:     models.SourceSync,
		UserID:     actor.UserID,
		Username:   actor.Username,
		Metadata:   map[string]interface{}{"sync_source": string(source)},
	})

	for _, item := range items {
		created, entityID, err := e.applyItem(ctx, item, source)
		if err != nil {
			result.Errors++
			e.emit(ctx, &models.AuditLogEntry{
				Operation:  models.OpError,
				EntityType: models.EntityProduct,
				Message:    fmt.Sprintf("Échec synchronisation produit: %v", err),
				Level:      models.LevelError,
				Source:     models.SourceSync,
				Status:     models.StatusFailed,
				UserID:     actor.UserID,
				Username:   actor.Username,
				Details: map[string]interface{}{
					"payload":     item,
					"error":       err.Error(),
					"sync_source": string(source),
				},
			})
			continue
		}

		op := models.OpUpdate
		verb := "mis à jour"
		if created {
			result.Created++
			op = models.OpCreate
			verb = "créé"
		} else {
			result.Updated++
		}
		e.emit(ctx, &models.AuditLogEntry{
			Operation:  op,
			EntityType: models.EntityProduct,
			EntityID:   entityID,
			Message:    fmt.Sprintf("Produit %s via synchronisation: %s (%s)", verb, item.Name, item.SKU),
			Level:      models.LevelSuccess,
			Source:     models.SourceSync,
			UserID:     actor.UserID,
			Username:   actor.Username,
			Details:    map[string]interface{}{"sync_source": string(source)},
		})
	}

	result.Duration = time.Since(start).Milliseconds()

	summaryLevel := models.LevelSuccess
	if result.Errors > 0 {
		summaryLevel = models.LevelWarning
	}
	e.emit(ctx, &models.AuditLogEntry{
		Operation:  models.OpSync,
		EntityType: models.EntityProduct,
		Message: fmt.Sprintf("Synchronisation terminée: %d créé(s), %d mis à jour, %d erreur(s)",
			result.Created, result.Updated, result.Errors),
		Level:    summaryLevel,
		Source:   models.SourceSync,
		Duration: result.Duration,
		UserID:   actor.UserID,
		Username: actor.Username,
		Details: map[string]interface{}{
			"created":     result.Created,
			"updated":     result.Updated,
			"errors":      result.Errors,
			"total":       result.Total,
			"sync_source": string(source),
		},
	})

	return result, nil
}

// applyItem décide création ou mise à jour pour un item, et indique
// l'issue retenue
func (e *SyncEngine) applyItem(ctx context.Context, item models.SyncItem, source models.SyncSource) (created bool, entityID string, err error) {
	if item.SKU == "" {
		return false, "", &models.ValidationError{Field: "sku", Message: "Le champ 'sku' est obligatoire"}
	}

	now := time.Now()
	existing, err := e.products.GetBySKU(ctx, item.SKU)
	switch {
	case err == nil:
		// Écrasement complet des champs : les données entrantes
		// remplacent les valeurs précédentes
		existing.Name = item.Name
		existing.Description = item.Description
		existing.Price = item.Price
		existing.Category = item.Category
		existing.Stock = item.Stock
		existing.Status = item.Status
		existing.Images = item.Images
		existing.Tags = item.Tags
		existing.Vendor = item.Vendor
		existing.LastSyncedAt = &now
		existing.SyncSource = source
		existing.SyncStatus = models.SyncSynced
		existing.SyncErrors = nil
		existing.UpdatedAt = now
		if err := existing.Validate(); err != nil {
			return false, "", err
		}
		if err := e.products.Update(ctx, existing); err != nil {
			return false, "", err
		}
		// 🔄 Indexation Elasticsearch
		go IndexProduct(*existing)
		return false, existing.ID.String(), nil

	case err == store.ErrNotFound:
		p := &models.Product{
			ID:           gocql.TimeUUID(),
			Name:         item.Name,
			SKU:          item.SKU,
			Description:  item.Description,
			Price:        item.Price,
			Category:     item.Category,
			Stock:        item.Stock,
			Status:       item.Status,
			Images:       item.Images,
			Tags:         item.Tags,
			Vendor:       item.Vendor,
			LastSyncedAt: &now,
			SyncSource:   source,
			SyncStatus:   models.SyncSynced,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := p.Validate(); err != nil {
			return false, "", err
		}
		if err := e.products.Insert(ctx, p); err != nil {
			return false, "", err
		}
		go IndexProduct(*p)
		return true, p.ID.String(), nil

	default:
		return false, "", err
	}
}

// emit journalise en best-effort : une écriture d'audit qui échoue ne
// fait pas échouer le lot
func (e *SyncEngine) emit(ctx context.Context, entry *models.AuditLogEntry) {
	if err := e.logs.Insert(ctx, entry); err != nil {
		log.Printf("⚠️ Erreur enregistrement log audit sync: %v", err)
	}
}
