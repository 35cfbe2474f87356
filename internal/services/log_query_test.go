package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veltra_back_end/internal/models"
	"veltra_back_end/internal/store"
)

func seedEntry(t *testing.T, logs *store.MemoryAuditLogStore, e models.AuditLogEntry) {
	t.Helper()
	require.NoError(t, logs.Insert(context.Background(), &e))
}

func TestList_Pagination(t *testing.T) {
	logs := store.NewMemoryAuditLogStore()
	svc := NewLogQueryService(logs)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		seedEntry(t, logs, models.AuditLogEntry{
			Operation:  models.OpCreate,
			EntityType: models.EntityProduct,
			Message:    fmt.Sprintf("entrée %d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := svc.List(ctx, models.LogFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Entries, 10)
	assert.Equal(t, 25, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.Pages)
	assert.True(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrev)

	// Plus récent d'abord
	assert.Equal(t, "entrée 24", page.Entries[0].Message)

	last, err := svc.List(ctx, models.LogFilter{}, 3, 10)
	require.NoError(t, err)
	assert.Len(t, last.Entries, 5)
	assert.False(t, last.Pagination.HasNext)
	assert.True(t, last.Pagination.HasPrev)

	// Page hors bornes : vide mais sans erreur
	beyond, err := svc.List(ctx, models.LogFilter{}, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond.Entries)

	// Page et taille invalides : retombent sur les valeurs par défaut
	fallback, err := svc.List(ctx, models.LogFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.Pagination.Page)
	assert.Len(t, fallback.Entries, DefaultLogPageSize)
}

func TestList_FilterByLevelAndSearch(t *testing.T) {
	logs := store.NewMemoryAuditLogStore()
	svc := NewLogQueryService(logs)
	ctx := context.Background()

	seedEntry(t, logs, models.AuditLogEntry{Operation: models.OpSync, Message: "Synchronisation terminée", Level: models.LevelSuccess})
	seedEntry(t, logs, models.AuditLogEntry{Operation: models.OpError, Message: "Échec synchronisation produit", Level: models.LevelError})
	seedEntry(t, logs, models.AuditLogEntry{Operation: models.OpCreate, Message: "Produit créé", Level: models.LevelSuccess})

	page, err := svc.List(ctx, models.LogFilter{Level: models.LevelError}, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, models.OpError, page.Entries[0].Operation)

	// Recherche insensible à la casse sur le message
	page, err = svc.List(ctx, models.LogFilter{Search: "SYNCHRONISATION"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)
}

func TestOverviewStats(t *testing.T) {
	logs := store.NewMemoryAuditLogStore()
	svc := NewLogQueryService(logs)
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 3; i++ {
		seedEntry(t, logs, models.AuditLogEntry{Operation: models.OpSync, Level: models.LevelInfo, CreatedAt: now.Add(-time.Duration(i) * time.Minute)})
	}
	seedEntry(t, logs, models.AuditLogEntry{Operation: models.OpCreate, Level: models.LevelSuccess, CreatedAt: now.Add(-24 * time.Hour)})
	seedEntry(t, logs, models.AuditLogEntry{Operation: models.OpDelete, Level: models.LevelInfo, CreatedAt: now.AddDate(0, 0, -5)})

	stats, err := svc.OverviewStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Today)
	assert.Equal(t, 1, stats.Yesterday)
	assert.Equal(t, 2, stats.Delta)

	// Répartition triée par volume décroissant
	require.NotEmpty(t, stats.ByOperation)
	assert.Equal(t, models.OpSync, stats.ByOperation[0].Operation)
	assert.Equal(t, 3, stats.ByOperation[0].Count)

	require.NotEmpty(t, stats.ByLevel)
	assert.Equal(t, models.LevelInfo, stats.ByLevel[0].Level)
	assert.Equal(t, 4, stats.ByLevel[0].Count)

	assert.LessOrEqual(t, len(stats.Recent), 10)
}

func TestTimeline_SparseBucketsSortedByDate(t *testing.T) {
	logs := store.NewMemoryAuditLogStore()
	svc := NewLogQueryService(logs)
	ctx := context.Background()

	now := time.Now()
	// Deux jours actifs séparés par un jour vide
	seedEntry(t, logs, models.AuditLogEntry{Level: models.LevelInfo, CreatedAt: now})
	seedEntry(t, logs, models.AuditLogEntry{Level: models.LevelError, CreatedAt: now})
	seedEntry(t, logs, models.AuditLogEntry{Level: models.LevelInfo, CreatedAt: now.AddDate(0, 0, -2)})
	// Hors fenêtre
	seedEntry(t, logs, models.AuditLogEntry{Level: models.LevelInfo, CreatedAt: now.AddDate(0, 0, -30)})

	timeline, err := svc.Timeline(ctx, 7)
	require.NoError(t, err)
	require.Len(t, timeline, 2)

	assert.Equal(t, now.AddDate(0, 0, -2).Format("2006-01-02"), timeline[0].Date)
	assert.Equal(t, 1, timeline[0].Total)

	assert.Equal(t, now.Format("2006-01-02"), timeline[1].Date)
	assert.Equal(t, 2, timeline[1].Total)
	assert.Equal(t, 1, timeline[1].Levels[models.LevelError])
}

func TestExportCSV_QuotingAndSystemFallback(t *testing.T) {
	logs := store.NewMemoryAuditLogStore()
	svc := NewLogQueryService(logs)
	ctx := context.Background()

	created := time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)
	seedEntry(t, logs, models.AuditLogEntry{
		Operation:  models.OpSync,
		EntityType: models.EntityProduct,
		Message:    `Import "quotidien", 3 erreurs`,
		Level:      models.LevelWarning,
		Source:     models.SourceSync,
		IPAddress:  "10.0.0.5",
		CreatedAt:  created,
	})

	csv, err := svc.ExportCSV(ctx, models.LogFilter{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, CSVHeader, lines[0])

	// Message toujours entre guillemets, guillemets internes doublés ;
	// utilisateur absent rendu comme System
	assert.Equal(t,
		`2026-08-30,14:05:09,warning,sync,product,"Import ""quotidien"", 3 erreurs",System,sync,10.0.0.5`,
		lines[1])
}

func TestExportCSV_CapsAtMaxRows(t *testing.T) {
	logs := store.NewMemoryAuditLogStore()
	svc := NewLogQueryService(logs)
	ctx := context.Background()

	base := time.Now().Add(-48 * time.Hour)
	for i := 0; i < ExportMaxRows+25; i++ {
		seedEntry(t, logs, models.AuditLogEntry{
			Message:   fmt.Sprintf("entrée %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	csv, err := svc.ExportCSV(ctx, models.LogFilter{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	assert.Len(t, lines, ExportMaxRows+1) // en-tête inclus
}
