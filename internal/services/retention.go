package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veltra_back_end/internal/models"
	"veltra_back_end/internal/store"
)

// DefaultRetentionDays est le seuil d'ancienneté appliqué quand
// l'appelant n'en précise pas
const DefaultRetentionDays = 30

// ErrAdminRequired : la purge est réservée aux administrateurs
var ErrAdminRequired = errors.New("accès réservé aux administrateurs")

// RetentionService supprime les entrées du journal plus anciennes qu'un
// seuil, et journalise la purge elle-même
type RetentionService struct {
	logs store.AuditLogStore
}

func NewRetentionService(logs store.AuditLogStore) *RetentionService {
	return &RetentionService{logs: logs}
}

// PurgeOlderThan supprime les entrées strictement antérieures à
// now - days jours, puis enregistre une nouvelle entrée décrivant la
// purge. Cette entrée est créée après la suppression : elle n'est
// jamais candidate à la purge qui vient de s'exécuter.
func (s *RetentionService) PurgeOlderThan(ctx context.Context, days int, actor models.Actor) (int, error) {
	if !actor.IsAdmin() {
		return 0, ErrAdminRequired
	}
	if days < 1 {
		days = DefaultRetentionDays
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	entry := &models.AuditLogEntry{
		Operation:  models.OpDelete,
		EntityType: models.EntitySystem,
		Message:    fmt.Sprintf("Purge du journal d'audit: %d entrée(s) de plus de %d jours supprimée(s)", deleted, days),
		Level:      models.LevelInfo,
		Source:     models.SourceSystem,
		UserID:     actor.UserID,
		Username:   actor.Username,
		Details: map[string]interface{}{
			"deleted_count": deleted,
			"days":          days,
		},
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		return deleted, fmt.Errorf("purge effectuée mais erreur journalisation: %w", err)
	}

	return deleted, nil
}
