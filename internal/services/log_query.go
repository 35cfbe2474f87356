package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"veltra_back_end/internal/models"
	"veltra_back_end/internal/store"
)

const (
	DefaultLogPageSize  = 20
	MaxLogPageSize      = 100
	DefaultTimelineDays = 7

	// Plafond dur de l'export CSV : les 5000 entrées les plus récentes
	ExportMaxRows = 5000
)

// CSVHeader est la ligne d'en-tête de l'export
const CSVHeader = "Date,Time,Level,Operation,Entity Type,Message,User,Source,IP Address"

// LogQueryService construit les prédicats de filtrage du journal et
// sert listings paginés, statistiques agrégées, chronologies et export
type LogQueryService struct {
	logs store.AuditLogStore
}

func NewLogQueryService(logs store.AuditLogStore) *LogQueryService {
	return &LogQueryService{logs: logs}
}

type Pagination struct {
	Page    int  `json:"page"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

type LogPage struct {
	Entries    []models.AuditLogEntry `json:"logs"`
	Pagination Pagination             `json:"pagination"`
}

// List retourne une page d'entrées filtrées, de la plus récente à la
// plus ancienne
func (s *LogQueryService) List(ctx context.Context, f models.LogFilter, page, pageSize int) (*LogPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultLogPageSize
	}
	if pageSize > MaxLogPageSize {
		pageSize = MaxLogPageSize
	}

	entries, err := s.logs.Find(ctx, f)
	if err != nil {
		return nil, err
	}

	total := len(entries)
	pages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &LogPage{
		Entries: entries[start:end],
		Pagination: Pagination{
			Page:    page,
			Pages:   pages,
			Total:   total,
			HasNext: page < pages,
			HasPrev: page > 1,
		},
	}, nil
}

type OperationCount struct {
	Operation models.Operation `json:"operation"`
	Count     int              `json:"count"`
}

type LevelCount struct {
	Level models.LogLevel `json:"level"`
	Count int             `json:"count"`
}

type OverviewStats struct {
	Total       int                    `json:"total"`
	Today       int                    `json:"today"`
	Yesterday   int                    `json:"yesterday"`
	Delta       int                    `json:"delta"`
	ByOperation []OperationCount       `json:"by_operation"`
	ByLevel     []LevelCount           `json:"by_level"`
	Recent      []models.AuditLogEntry `json:"recent"`
}

// OverviewStats agrège le journal complet : totaux, comparaison
// aujourd'hui/hier sur les minuits locaux, répartitions par opération et
// par niveau, et les 10 entrées les plus récentes
func (s *LogQueryService) OverviewStats(ctx context.Context) (*OverviewStats, error) {
	entries, err := s.logs.Find(ctx, models.LogFilter{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	stats := &OverviewStats{Total: len(entries)}
	byOp := make(map[models.Operation]int)
	byLevel := make(map[models.LogLevel]int)

	for i := range entries {
		e := &entries[i]
		if !e.CreatedAt.Before(todayStart) {
			stats.Today++
		} else if !e.CreatedAt.Before(yesterdayStart) {
			stats.Yesterday++
		}
		byOp[e.Operation]++
		byLevel[e.Level]++
	}
	stats.Delta = stats.Today - stats.Yesterday

	for op, count := range byOp {
		stats.ByOperation = append(stats.ByOperation, OperationCount{Operation: op, Count: count})
	}
	sort.Slice(stats.ByOperation, func(i, j int) bool {
		if stats.ByOperation[i].Count != stats.ByOperation[j].Count {
			return stats.ByOperation[i].Count > stats.ByOperation[j].Count
		}
		return stats.ByOperation[i].Operation < stats.ByOperation[j].Operation
	})

	for level, count := range byLevel {
		stats.ByLevel = append(stats.ByLevel, LevelCount{Level: level, Count: count})
	}
	sort.Slice(stats.ByLevel, func(i, j int) bool {
		if stats.ByLevel[i].Count != stats.ByLevel[j].Count {
			return stats.ByLevel[i].Count > stats.ByLevel[j].Count
		}
		return stats.ByLevel[i].Level < stats.ByLevel[j].Level
	})

	recent := entries
	if len(recent) > 10 {
		recent = recent[:10]
	}
	stats.Recent = recent

	return stats, nil
}

type TimelineBucket struct {
	Date   string                  `json:"date"`
	Levels map[models.LogLevel]int `json:"levels"`
	Total  int                     `json:"total"`
}

// Timeline retourne l'activité des N derniers jours, groupée par date
// locale. Les jours sans activité ne produisent pas de seau : la série
// est creuse, c'est à l'appelant de la compléter s'il veut du zéro.
func (s *LogQueryService) Timeline(ctx context.Context, days int) ([]TimelineBucket, error) {
	if days < 1 {
		days = DefaultTimelineDays
	}

	now := time.Now()
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -days)

	entries, err := s.logs.Find(ctx, models.LogFilter{StartDate: &windowStart})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*TimelineBucket)
	for i := range entries {
		e := &entries[i]
		date := e.CreatedAt.Format("2006-01-02")
		bucket, ok := byDate[date]
		if !ok {
			bucket = &TimelineBucket{Date: date, Levels: make(map[models.LogLevel]int)}
			byDate[date] = bucket
		}
		bucket.Levels[e.Level]++
		bucket.Total++
	}

	timeline := make([]TimelineBucket, 0, len(byDate))
	for _, bucket := range byDate {
		timeline = append(timeline, *bucket)
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Date < timeline[j].Date
	})
	return timeline, nil
}

// ExportCSV applique les mêmes règles de filtrage que List et rend les
// entrées les plus récentes en CSV. Le message est systématiquement
// entre guillemets, guillemets internes doublés ; les horodatages sont
// découpés en date et heure UTC.
func (s *LogQueryService) ExportCSV(ctx context.Context, f models.LogFilter) (string, error) {
	entries, err := s.logs.Find(ctx, f)
	if err != nil {
		return "", err
	}
	if len(entries) > ExportMaxRows {
		entries = entries[:ExportMaxRows]
	}

	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteString("\n")

	for i := range entries {
		e := &entries[i]
		ts := e.CreatedAt.UTC()
		user := e.Username
		if user == "" {
			user = "System"
		}
		b.WriteString(ts.Format("2006-01-02"))
		b.WriteString(",")
		b.WriteString(ts.Format("15:04:05"))
		b.WriteString(",")
		b.WriteString(string(e.Level))
		b.WriteString(",")
		b.WriteString(string(e.Operation))
		b.WriteString(",")
		b.WriteString(string(e.EntityType))
		b.WriteString(",")
		b.WriteString(`"` + strings.ReplaceAll(e.Message, `"`, `""`) + `"`)
		b.WriteString(",")
		b.WriteString(user)
		b.WriteString(",")
		b.WriteString(string(e.Source))
		b.WriteString(",")
		b.WriteString(e.IPAddress)
		b.WriteString("\n")
	}

	return b.String(), nil
}
