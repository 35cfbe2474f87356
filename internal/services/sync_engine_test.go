package services

import (
	"context"
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veltra_back_end/internal/models"
	"veltra_back_end/internal/store"
)

func newTestEngine() (*SyncEngine, *store.MemoryProductStore, *store.MemoryAuditLogStore) {
	products := store.NewMemoryProductStore()
	logs := store.NewMemoryAuditLogStore()
	return NewSyncEngine(products, logs), products, logs
}

func syncActor() models.Actor {
	return models.Actor{UserID: "u-1", Username: "amelie@veltra.io", Role: "admin"}
}

func TestSyncBatch_CreatesNewProducts(t *testing.T) {
	engine, products, logs := newTestEngine()
	ctx := context.Background()

	items := []models.SyncItem{
		{SKU: "VLT-001", Name: "Clavier mécanique", Price: 89.90, Category: "peripherals", Stock: 12},
		{SKU: "VLT-002", Name: "Souris sans fil", Price: 39.90, Category: "peripherals", Stock: 30},
	}

	result, err := engine.SyncBatch(ctx, items, models.SyncSourceAPI, syncActor())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, 2, result.Total)

	p, err := products.GetBySKU(ctx, "VLT-001")
	require.NoError(t, err)
	assert.Equal(t, "Clavier mécanique", p.Name)
	assert.Equal(t, models.SyncSynced, p.SyncStatus)
	assert.Equal(t, models.SyncSourceAPI, p.SyncSource)
	require.NotNil(t, p.LastSyncedAt)

	// 1 démarrage + 2 items + 1 résumé
	entries, err := logs.Find(ctx, models.LogFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	for i := range entries {
		assert.Equal(t, models.SourceSync, entries[i].Source)
	}
}

func TestSyncBatch_UpdatesExistingBySKU(t *testing.T) {
	engine, products, _ := newTestEngine()
	ctx := context.Background()

	existing := &models.Product{
		ID:       gocql.TimeUUID(),
		Name:     "Ancien nom",
		SKU:      "VLT-010",
		Price:    10,
		Category: "misc",
		Status:   models.ProductActive,
	}
	require.NoError(t, products.Insert(ctx, existing))

	items := []models.SyncItem{
		{SKU: "VLT-010", Name: "Nouveau nom", Description: "mis à jour", Price: 15.50, Category: "misc", Stock: 5},
	}
	result, err := engine.SyncBatch(ctx, items, models.SyncSourceCSV, syncActor())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Errors)

	p, err := products.GetBySKU(ctx, "VLT-010")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, p.ID)
	assert.Equal(t, "Nouveau nom", p.Name)
	assert.Equal(t, 15.50, p.Price)
	assert.Equal(t, models.SyncSourceCSV, p.SyncSource)
	assert.Nil(t, p.SyncErrors)
}

func TestSyncBatch_ItemErrorDoesNotStopBatch(t *testing.T) {
	engine, products, logs := newTestEngine()
	ctx := context.Background()

	items := []models.SyncItem{
		{SKU: "", Name: "Sans SKU", Price: 5, Category: "misc"},
		{SKU: "VLT-020", Name: "Prix négatif", Price: -1, Category: "misc"},
		{SKU: "VLT-021", Name: "Valide", Price: 20, Category: "misc", Stock: 3},
	}
	result, err := engine.SyncBatch(ctx, items, models.SyncSourceManual, syncActor())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 2, result.Errors)
	assert.Equal(t, result.Total, result.Created+result.Updated+result.Errors)

	_, err = products.GetBySKU(ctx, "VLT-021")
	assert.NoError(t, err)

	// Le résumé passe en warning dès qu'une erreur est comptée
	entries, err := logs.Find(ctx, models.LogFilter{Operation: models.OpSync})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.LevelWarning, entries[0].Level)

	failures, err := logs.Find(ctx, models.LogFilter{Level: models.LevelError})
	require.NoError(t, err)
	assert.Len(t, failures, 2)
}

func TestSyncBatch_DuplicateSKUKeepsLastWrite(t *testing.T) {
	engine, products, _ := newTestEngine()
	ctx := context.Background()

	items := []models.SyncItem{
		{SKU: "VLT-030", Name: "Première version", Price: 10, Category: "misc"},
		{SKU: "VLT-030", Name: "Seconde version", Price: 12, Category: "misc"},
	}
	result, err := engine.SyncBatch(ctx, items, models.SyncSourceAPI, syncActor())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)

	p, err := products.GetBySKU(ctx, "VLT-030")
	require.NoError(t, err)
	assert.Equal(t, "Seconde version", p.Name)
	assert.Equal(t, 12.0, p.Price)
}

func TestSyncBatch_InvalidSource(t *testing.T) {
	engine, _, logs := newTestEngine()
	ctx := context.Background()

	result, err := engine.SyncBatch(ctx, []models.SyncItem{{SKU: "X"}}, models.SyncSource("ftp"), syncActor())
	require.Error(t, err)
	assert.Nil(t, result)

	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "source", vErr.Field)

	// Rien ne doit être journalisé pour un lot refusé d'emblée
	entries, err := logs.Find(ctx, models.LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSyncBatch_EmptyBatch(t *testing.T) {
	engine, _, logs := newTestEngine()
	ctx := context.Background()

	result, err := engine.SyncBatch(ctx, nil, models.SyncSourceAPI, syncActor())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Created)

	entries, err := logs.Find(ctx, models.LogFilter{Operation: models.OpSync})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.LevelSuccess, entries[0].Level)
}

func TestSyncBatch_Idempotent(t *testing.T) {
	engine, products, _ := newTestEngine()
	ctx := context.Background()

	items := []models.SyncItem{
		{SKU: "VLT-040", Name: "Écran 27 pouces", Price: 249, Category: "displays", Stock: 8},
	}

	first, err := engine.SyncBatch(ctx, items, models.SyncSourceXML, syncActor())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := engine.SyncBatch(ctx, items, models.SyncSourceXML, syncActor())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)

	all, err := products.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
