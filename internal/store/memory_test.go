package store

import (
	"context"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veltra_back_end/internal/models"
)

func newProduct(sku, name string) *models.Product {
	now := time.Now()
	return &models.Product{
		ID:        gocql.TimeUUID(),
		Name:      name,
		SKU:       sku,
		Price:     9.90,
		Category:  "misc",
		Status:    models.ProductActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryProductStore_UniqueSKU(t *testing.T) {
	s := NewMemoryProductStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, newProduct("VLT-100", "Premier")))

	err := s.Insert(ctx, newProduct("VLT-100", "Doublon"))
	assert.ErrorIs(t, err, ErrDuplicateSKU)

	// Le SKU redevient disponible après suppression
	p, err := s.GetBySKU(ctx, "VLT-100")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, p.ID))
	assert.NoError(t, s.Insert(ctx, newProduct("VLT-100", "Réutilisé")))
}

func TestMemoryProductStore_NotFound(t *testing.T) {
	s := NewMemoryProductStore()
	ctx := context.Background()

	_, err := s.GetByID(ctx, gocql.TimeUUID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetBySKU(ctx, "inconnu")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Delete(ctx, gocql.TimeUUID())
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Update(ctx, newProduct("VLT-101", "Jamais inséré"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProductStore_UpdateChangesSKUMapping(t *testing.T) {
	s := NewMemoryProductStore()
	ctx := context.Background()

	p := newProduct("VLT-110", "Original")
	require.NoError(t, s.Insert(ctx, p))
	require.NoError(t, s.Insert(ctx, newProduct("VLT-111", "Autre")))

	// Changement vers un SKU pris : refusé
	p.SKU = "VLT-111"
	assert.ErrorIs(t, s.Update(ctx, p), ErrDuplicateSKU)

	// Changement vers un SKU libre : l'ancien est libéré
	p.SKU = "VLT-112"
	require.NoError(t, s.Update(ctx, p))

	_, err := s.GetBySKU(ctx, "VLT-110")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := s.GetBySKU(ctx, "VLT-112")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
}

func TestMemoryProductStore_ListFilters(t *testing.T) {
	s := NewMemoryProductStore()
	ctx := context.Background()

	a := newProduct("VLT-120", "Clavier")
	a.Category = "peripherals"
	b := newProduct("VLT-121", "Écran")
	b.Category = "displays"
	c := newProduct("VLT-122", "Souris retirée")
	c.Category = "peripherals"
	c.Status = models.ProductDiscontinued

	require.NoError(t, s.Insert(ctx, a))
	require.NoError(t, s.Insert(ctx, b))
	require.NoError(t, s.Insert(ctx, c))

	all, err := s.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	peripherals, err := s.List(ctx, models.ProductFilter{Category: "peripherals"})
	require.NoError(t, err)
	assert.Len(t, peripherals, 2)

	active, err := s.List(ctx, models.ProductFilter{Category: "peripherals", Status: models.ProductActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "VLT-120", active[0].SKU)
}

func TestMemoryAuditLogStore_FindNewestFirst(t *testing.T) {
	s := NewMemoryAuditLogStore()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, msg := range []string{"première", "deuxième", "troisième"} {
		e := models.AuditLogEntry{Message: msg, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, s.Insert(ctx, &e))
	}

	entries, err := s.Find(ctx, models.LogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "troisième", entries[0].Message)
	assert.Equal(t, "première", entries[2].Message)
}

func TestMemoryAuditLogStore_InsertAppliesDefaults(t *testing.T) {
	s := NewMemoryAuditLogStore()
	ctx := context.Background()

	e := models.AuditLogEntry{Message: "sans niveau ni source"}
	require.NoError(t, s.Insert(ctx, &e))

	entries, err := s.Find(ctx, models.LogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEqual(t, gocql.UUID{}, entries[0].ID)
	assert.Equal(t, models.LevelInfo, entries[0].Level)
	assert.Equal(t, models.SourceWeb, entries[0].Source)
	assert.Equal(t, models.StatusSuccess, entries[0].Status)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestMemoryAuditLogStore_DeleteOlderThan(t *testing.T) {
	s := NewMemoryAuditLogStore()
	ctx := context.Background()

	cutoff := time.Now().Add(-24 * time.Hour)

	before := models.AuditLogEntry{Message: "avant", CreatedAt: cutoff.Add(-time.Second)}
	exact := models.AuditLogEntry{Message: "pile au seuil", CreatedAt: cutoff}
	after := models.AuditLogEntry{Message: "après", CreatedAt: cutoff.Add(time.Second)}
	require.NoError(t, s.Insert(ctx, &before))
	require.NoError(t, s.Insert(ctx, &exact))
	require.NoError(t, s.Insert(ctx, &after))

	deleted, err := s.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)

	// Strictement antérieur : l'entrée au seuil exact est conservée
	assert.Equal(t, 1, deleted)

	entries, err := s.Find(ctx, models.LogFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
