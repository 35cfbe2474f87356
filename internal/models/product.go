package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statut d'un produit dans le catalogue
type ProductStatus string

const (
	ProductActive       ProductStatus = "active"
	ProductInactive     ProductStatus = "inactive"
	ProductDiscontinued ProductStatus = "discontinued"
)

func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductActive, ProductInactive, ProductDiscontinued:
		return true
	}
	return false
}

// Source d'une synchronisation
type SyncSource string

const (
	SyncSourceManual SyncSource = "manual"
	SyncSourceAPI    SyncSource = "api"
	SyncSourceCSV    SyncSource = "csv"
	SyncSourceXML    SyncSource = "xml"
)

func (s SyncSource) IsValid() bool {
	switch s {
	case SyncSourceManual, SyncSourceAPI, SyncSourceCSV, SyncSourceXML:
		return true
	}
	return false
}

// État de synchronisation d'un produit
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

type ProductImage struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type ProductSyncError struct {
	Field     string    `json:"field"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Product struct {
	ID           gocql.UUID         `json:"id" db:"product_id"`
	Name         string             `json:"name" db:"name"`
	SKU          string             `json:"sku" db:"sku"`
	Description  string             `json:"description" db:"description"`
	Price        float64            `json:"price" db:"price"`
	Category     string             `json:"category" db:"category"`
	Stock        int                `json:"stock" db:"stock"`
	Status       ProductStatus      `json:"status" db:"status"`
	Images       []ProductImage     `json:"images" db:"images"`
	Tags         []string           `json:"tags" db:"tags"`
	Vendor       string             `json:"vendor" db:"vendor"`
	LastSyncedAt *time.Time         `json:"last_synced_at,omitempty" db:"last_synced_at"`
	SyncSource   SyncSource         `json:"sync_source,omitempty" db:"sync_source"`
	SyncStatus   SyncStatus         `json:"sync_status,omitempty" db:"sync_status"`
	SyncErrors   []ProductSyncError `json:"sync_errors,omitempty" db:"sync_errors"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
}

// Validate vérifie les champs obligatoires d'un produit
func (p *Product) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "Le champ 'name' est obligatoire"}
	}
	if p.SKU == "" {
		return &ValidationError{Field: "sku", Message: "Le champ 'sku' est obligatoire"}
	}
	if p.Price < 0 {
		return &ValidationError{Field: "price", Message: "Le prix ne peut pas être négatif"}
	}
	if p.Category == "" {
		return &ValidationError{Field: "category", Message: "Le champ 'category' est obligatoire"}
	}
	if p.Stock < 0 {
		return &ValidationError{Field: "stock", Message: "Le stock ne peut pas être négatif"}
	}
	if p.Status == "" {
		p.Status = ProductActive
	}
	if !p.Status.IsValid() {
		return &ValidationError{Field: "status", Message: "Statut produit invalide: " + string(p.Status)}
	}
	return nil
}

// ValidationError signale un champ manquant ou invalide
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProductFilter restreint un listing de produits
type ProductFilter struct {
	Category string
	Status   ProductStatus
}

func (f ProductFilter) Matches(p *Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	return true
}
