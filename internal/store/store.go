// Package store expose les collections persistées (produits et journal
// d'audit) derrière des interfaces injectées dans les services, afin de
// pouvoir les construire en isolation dans les tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"

	"veltra_back_end/internal/models"
)

var (
	// ErrNotFound : le produit ou l'entrée référencé n'existe pas
	ErrNotFound = errors.New("enregistrement introuvable")

	// ErrDuplicateSKU : un produit vivant porte déjà ce SKU
	ErrDuplicateSKU = errors.New("un produit avec ce SKU existe déjà")
)

// ProductStore gère la collection de produits, indexée par SKU unique
type ProductStore interface {
	GetByID(ctx context.Context, id gocql.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id gocql.UUID) error
}

// AuditLogStore gère le journal d'audit en append-only.
// Find retourne les entrées correspondantes, de la plus récente à la
// plus ancienne. La seule suppression possible est la purge par âge.
type AuditLogStore interface {
	Insert(ctx context.Context, e *models.AuditLogEntry) error
	Find(ctx context.Context, f models.LogFilter) ([]models.AuditLogEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
