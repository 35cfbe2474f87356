package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"veltra_back_end/internal/cache"
	"veltra_back_end/internal/database"
	"veltra_back_end/internal/middleware"
	"veltra_back_end/internal/models"
	"veltra_back_end/internal/services"
	"veltra_back_end/internal/store"
)

// GetLogs récupère les logs d'audit avec filtres et pagination
func GetLogs(c *gin.Context) {
	filter, ok := parseLogFilter(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logs, err := store.Logs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	svc := services.NewLogQueryService(logs)
	result, err := svc.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture logs: " + err.Error()})
		return
	}
	if result.Entries == nil {
		result.Entries = []models.AuditLogEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":       result.Entries,
		"pagination": result.Pagination,
	})
}

// GetLogStats récupère les statistiques globales du journal d'audit
func GetLogStats(c *gin.Context) {
	ctx := context.Background()

	// ✅ Cache court : les stats d'aperçu sont coûteuses à recalculer
	if database.Redis != nil {
		if val, err := database.Redis.Get(ctx, cache.StatsKey).Result(); err == nil && val != "" {
			var cached services.OverviewStats
			if json.Unmarshal([]byte(val), &cached) == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	logs, err := store.Logs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	svc := services.NewLogQueryService(logs)
	stats, err := svc.OverviewStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul statistiques: " + err.Error()})
		return
	}

	if database.Redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			database.Redis.Set(ctx, cache.StatsKey, data, cache.StatsCacheTTL)
		}
	}

	c.JSON(http.StatusOK, stats)
}

// GetLogTimeline récupère l'activité du journal jour par jour
func GetLogTimeline(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days < 1 {
		days = services.DefaultTimelineDays
	}

	logs, err := store.Logs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	svc := services.NewLogQueryService(logs)
	timeline, err := svc.Timeline(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul chronologie: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"timeline": timeline, "days": days})
}

// ExportLogs exporte les logs filtrés au format CSV
func ExportLogs(c *gin.Context) {
	filter, ok := parseLogFilter(c)
	if !ok {
		return
	}

	logs, err := store.Logs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	svc := services.NewLogQueryService(logs)
	csv, err := svc.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur export: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("sync-logs-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", []byte(csv))
}

// CleanupLogs purge les entrées plus anciennes que le seuil demandé
func CleanupLogs(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 {
		days = services.DefaultRetentionDays
	}

	logs, err := store.Logs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	svc := services.NewRetentionService(logs)
	deleted, err := svc.PurgeOlderThan(c.Request.Context(), days, middleware.ActorFromContext(c))
	if err != nil {
		if err == services.ErrAdminRequired {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur purge: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted_count": deleted, "days": days})
}

// parseLogFilter construit le filtre depuis les paramètres de requête.
// Répond 400 et retourne false si un paramètre énuméré est invalide.
func parseLogFilter(c *gin.Context) (models.LogFilter, bool) {
	filter := models.LogFilter{
		Operation:  models.Operation(c.Query("operation")),
		EntityType: models.EntityType(c.Query("entity_type")),
		Level:      models.LogLevel(c.Query("level")),
		Source:     models.LogSource(c.Query("source")),
		UserID:     c.Query("user_id"),
		Search:     c.Query("search"),
	}

	if filter.Operation != "" && !filter.Operation.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Opération invalide: " + string(filter.Operation)})
		return filter, false
	}
	if filter.EntityType != "" && !filter.EntityType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type d'entité invalide: " + string(filter.EntityType)})
		return filter, false
	}
	if filter.Level != "" && !filter.Level.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Niveau invalide: " + string(filter.Level)})
		return filter, false
	}
	if filter.Source != "" && !filter.Source.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Source invalide: " + string(filter.Source)})
		return filter, false
	}

	if raw := c.Query("start_date"); raw != "" {
		t, err := parseDate(raw, false)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date de début invalide: " + raw})
			return filter, false
		}
		filter.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := parseDate(raw, true)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date de fin invalide: " + raw})
			return filter, false
		}
		filter.EndDate = &t
	}

	return filter, true
}

// parseDate accepte RFC3339 ou une date seule ; une date seule en borne
// de fin est étendue à la fin de journée pour rester inclusive
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
