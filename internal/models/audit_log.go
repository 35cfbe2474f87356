package models

import (
	"strings"
	"time"

	"github.com/gocql/gocql"
)

// Opération enregistrée dans le journal d'audit
type Operation string

const (
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
	OpSync    Operation = "sync"
	OpError   Operation = "error"
	OpInfo    Operation = "info"
	OpWarning Operation = "warning"
)

func (o Operation) IsValid() bool {
	switch o {
	case OpCreate, OpUpdate, OpDelete, OpSync, OpError, OpInfo, OpWarning:
		return true
	}
	return false
}

// Type d'entité concernée par une entrée
type EntityType string

const (
	EntityProduct EntityType = "product"
	EntityUser    EntityType = "user"
	EntitySystem  EntityType = "system"
	EntityAuth    EntityType = "auth"
)

func (e EntityType) IsValid() bool {
	switch e {
	case EntityProduct, EntityUser, EntitySystem, EntityAuth:
		return true
	}
	return false
}

// Niveau de gravité d'une entrée
type LogLevel string

const (
	LevelInfo    LogLevel = "info"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
	LevelSuccess LogLevel = "success"
)

func (l LogLevel) IsValid() bool {
	switch l {
	case LevelInfo, LevelWarning, LevelError, LevelSuccess:
		return true
	}
	return false
}

// Provenance d'une entrée
type LogSource string

const (
	SourceAPI    LogSource = "api"
	SourceWeb    LogSource = "web"
	SourceSystem LogSource = "system"
	SourceSync   LogSource = "sync"
)

func (s LogSource) IsValid() bool {
	switch s {
	case SourceAPI, SourceWeb, SourceSystem, SourceSync:
		return true
	}
	return false
}

// Statut d'exécution de l'action journalisée
type LogStatus string

const (
	StatusSuccess LogStatus = "success"
	StatusFailed  LogStatus = "failed"
	StatusPending LogStatus = "pending"
)

// AuditLogEntry est immuable une fois créée : le journal est en
// append-only, seule la purge par ancienneté supprime des entrées.
type AuditLogEntry struct {
	ID         gocql.UUID             `json:"id" db:"log_id"`
	Operation  Operation              `json:"operation" db:"operation"`
	EntityType EntityType             `json:"entity_type" db:"entity_type"`
	EntityID   string                 `json:"entity_id,omitempty" db:"entity_id"`
	Message    string                 `json:"message" db:"message"`
	Details    map[string]interface{} `json:"details,omitempty" db:"details"`
	UserID     string                 `json:"user_id,omitempty" db:"user_id"`
	Username   string                 `json:"username,omitempty" db:"username"`
	Level      LogLevel               `json:"level" db:"level"`
	Source     LogSource              `json:"source" db:"source"`
	IPAddress  string                 `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  string                 `json:"user_agent,omitempty" db:"user_agent"`
	Duration   int64                  `json:"duration,omitempty" db:"duration"`
	Status     LogStatus              `json:"status" db:"status"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}

// ApplyDefaults renseigne les valeurs par défaut des champs énumérés
func (e *AuditLogEntry) ApplyDefaults() {
	if e.Level == "" {
		e.Level = LevelInfo
	}
	if e.Source == "" {
		e.Source = SourceWeb
	}
	if e.Status == "" {
		e.Status = StatusSuccess
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
}

// LogFilter restreint une requête sur le journal d'audit.
// Tous les critères sont optionnels et combinés en ET logique.
type LogFilter struct {
	Operation  Operation
	EntityType EntityType
	Level      LogLevel
	Source     LogSource
	UserID     string
	Search     string     // sous-chaîne insensible à la casse sur le message
	StartDate  *time.Time // bornes incluses
	EndDate    *time.Time
}

// Matches indique si une entrée satisfait tous les critères du filtre
func (f LogFilter) Matches(e *AuditLogEntry) bool {
	if f.Operation != "" && e.Operation != f.Operation {
		return false
	}
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.StartDate != nil && e.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.CreatedAt.After(*f.EndDate) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(e.Message), strings.ToLower(f.Search)) {
		return false
	}
	return true
}
