package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"veltra_back_end/internal/database"
	"veltra_back_end/internal/models"
)

// ScyllaProductStore persiste les produits dans ScyllaDB.
// L'unicité du SKU est garantie par la table de correspondance
// products_by_sku, alimentée en LWT (INSERT ... IF NOT EXISTS).
type ScyllaProductStore struct {
	session *gocql.Session
}

func NewScyllaProductStore(session *gocql.Session) *ScyllaProductStore {
	return &ScyllaProductStore{session: session}
}

const productColumns = `product_id, name, sku, description, price, category, stock, status,
	images, tags, vendor, last_synced_at, sync_source, sync_status, sync_errors,
	created_at, updated_at`

func (s *ScyllaProductStore) scanProduct(scanner interface {
	Scan(...interface{}) error
}) (*models.Product, error) {
	var (
		p              models.Product
		status         string
		imagesJSON     string
		syncSource     string
		syncStatus     string
		syncErrorsJSON string
		lastSynced     time.Time
	)
	if err := scanner.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.Price, &p.Category,
		&p.Stock, &status, &imagesJSON, &p.Tags, &p.Vendor, &lastSynced,
		&syncSource, &syncStatus, &syncErrorsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = models.ProductStatus(status)
	p.SyncSource = models.SyncSource(syncSource)
	p.SyncStatus = models.SyncStatus(syncStatus)
	if !lastSynced.IsZero() {
		p.LastSyncedAt = &lastSynced
	}
	// Les listes structurées sont stockées en JSON (pas d'UDT à gérer côté driver)
	if imagesJSON != "" {
		_ = json.Unmarshal([]byte(imagesJSON), &p.Images)
	}
	if syncErrorsJSON != "" {
		_ = json.Unmarshal([]byte(syncErrorsJSON), &p.SyncErrors)
	}
	return &p, nil
}

func (s *ScyllaProductStore) GetByID(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	q := s.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).WithContext(ctx)
	p, err := s.scanProduct(q)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lecture produit: %w", err)
	}
	return p, nil
}

func (s *ScyllaProductStore) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	// Chemin chaud du moteur de synchronisation : prepared statement si
	// disponible
	q := database.GetPreparedGetProductBySKU()
	if q == nil {
		q = s.session.Query(`SELECT product_id FROM products_by_sku WHERE sku = ?`)
	}
	var id gocql.UUID
	err := q.Bind(sku).WithContext(ctx).Scan(&id)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lecture index SKU: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ScyllaProductStore) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	// Scan complet puis filtre en mémoire : ScyllaDB ne permet pas de
	// combiner librement category et status sans index dédié
	iter := s.session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()
	scanner := iter.Scanner()
	var products []models.Product
	for scanner.Next() {
		p, err := s.scanProduct(scanner)
		if err != nil {
			return nil, fmt.Errorf("erreur listing produits: %w", err)
		}
		if f.Matches(p) {
			products = append(products, *p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("erreur listing produits: %w", err)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

func (s *ScyllaProductStore) Insert(ctx context.Context, p *models.Product) error {
	// Réserve d'abord le SKU en LWT pour garantir l'unicité
	applied, err := s.session.Query(
		`INSERT INTO products_by_sku (sku, product_id) VALUES (?, ?) IF NOT EXISTS`,
		p.SKU, p.ID).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("erreur réservation SKU: %w", err)
	}
	if !applied {
		return ErrDuplicateSKU
	}
	if err := s.write(ctx, p); err != nil {
		// Libère la réservation pour ne pas laisser un SKU orphelin
		s.session.Query(`DELETE FROM products_by_sku WHERE sku = ?`, p.SKU).WithContext(ctx).Exec()
		return err
	}
	return nil
}

func (s *ScyllaProductStore) Update(ctx context.Context, p *models.Product) error {
	existing, err := s.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if existing.SKU != p.SKU {
		applied, err := s.session.Query(
			`INSERT INTO products_by_sku (sku, product_id) VALUES (?, ?) IF NOT EXISTS`,
			p.SKU, p.ID).WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return fmt.Errorf("erreur réservation SKU: %w", err)
		}
		if !applied {
			return ErrDuplicateSKU
		}
		s.session.Query(`DELETE FROM products_by_sku WHERE sku = ?`, existing.SKU).WithContext(ctx).Exec()
	}
	return s.write(ctx, p)
}

func (s *ScyllaProductStore) write(ctx context.Context, p *models.Product) error {
	imagesJSON, _ := json.Marshal(p.Images)
	syncErrorsJSON, _ := json.Marshal(p.SyncErrors)
	var lastSynced time.Time
	if p.LastSyncedAt != nil {
		lastSynced = *p.LastSyncedAt
	}
	query := `INSERT INTO products (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if err := s.session.Query(query,
		p.ID, p.Name, p.SKU, p.Description, p.Price, p.Category, p.Stock, string(p.Status),
		string(imagesJSON), p.Tags, p.Vendor, lastSynced, string(p.SyncSource),
		string(p.SyncStatus), string(syncErrorsJSON), p.CreatedAt, p.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("erreur écriture produit: %w", err)
	}
	return nil
}

func (s *ScyllaProductStore) Delete(ctx context.Context, id gocql.UUID) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.session.Query(`DELETE FROM products WHERE product_id = ?`, id).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("erreur suppression produit: %w", err)
	}
	return s.session.Query(`DELETE FROM products_by_sku WHERE sku = ?`, p.SKU).WithContext(ctx).Exec()
}

// ScyllaAuditLogStore persiste le journal d'audit dans ScyllaDB
type ScyllaAuditLogStore struct {
	session *gocql.Session
}

func NewScyllaAuditLogStore(session *gocql.Session) *ScyllaAuditLogStore {
	return &ScyllaAuditLogStore{session: session}
}

func (s *ScyllaAuditLogStore) Insert(ctx context.Context, e *models.AuditLogEntry) error {
	e.ApplyDefaults()
	if e.ID == (gocql.UUID{}) {
		e.ID = gocql.TimeUUID()
	}
	detailsJSON, _ := json.Marshal(e.Details)
	metadataJSON, _ := json.Marshal(e.Metadata)
	query := `INSERT INTO audit_logs (
		log_id, operation, entity_type, entity_id, message, details,
		user_id, username, level, source, ip_address, user_agent,
		duration, status, metadata, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if err := s.session.Query(query,
		e.ID, string(e.Operation), string(e.EntityType), e.EntityID, e.Message, string(detailsJSON),
		e.UserID, e.Username, string(e.Level), string(e.Source), e.IPAddress, e.UserAgent,
		e.Duration, string(e.Status), string(metadataJSON), e.CreatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("erreur écriture log audit: %w", err)
	}
	return nil
}

func (s *ScyllaAuditLogStore) Find(ctx context.Context, f models.LogFilter) ([]models.AuditLogEntry, error) {
	// Construit la requête dynamiquement selon les filtres exacts ;
	// la recherche plein-texte sur le message est appliquée en mémoire
	// pendant le scan (pas de LIKE natif côté ScyllaDB)
	baseQuery := `SELECT log_id, operation, entity_type, entity_id, message, details,
		user_id, username, level, source, ip_address, user_agent,
		duration, status, metadata, created_at FROM audit_logs`

	var conditions []string
	var args []interface{}

	if f.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, string(f.Operation))
	}
	if f.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, string(f.EntityType))
	}
	if f.Level != "" {
		conditions = append(conditions, "level = ?")
		args = append(args, string(f.Level))
	}
	if f.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, string(f.Source))
	}
	if f.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *f.EndDate)
	}

	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ") + " ALLOW FILTERING"
	}

	iter := s.session.Query(query, args...).WithContext(ctx).Iter()
	var entries []models.AuditLogEntry
	var (
		e                         models.AuditLogEntry
		operation, entityType     string
		level, source, status     string
		detailsJSON, metadataJSON string
	)
	for iter.Scan(&e.ID, &operation, &entityType, &e.EntityID, &e.Message, &detailsJSON,
		&e.UserID, &e.Username, &level, &source, &e.IPAddress, &e.UserAgent,
		&e.Duration, &status, &metadataJSON, &e.CreatedAt) {
		e.Operation = models.Operation(operation)
		e.EntityType = models.EntityType(entityType)
		e.Level = models.LogLevel(level)
		e.Source = models.LogSource(source)
		e.Status = models.LogStatus(status)
		e.Details = nil
		e.Metadata = nil
		if detailsJSON != "" && detailsJSON != "null" {
			_ = json.Unmarshal([]byte(detailsJSON), &e.Details)
		}
		if metadataJSON != "" && metadataJSON != "null" {
			_ = json.Unmarshal([]byte(metadataJSON), &e.Metadata)
		}
		if f.Search == "" || f.Matches(&e) {
			entries = append(entries, e)
		}
		e = models.AuditLogEntry{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erreur lecture logs audit: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *ScyllaAuditLogStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	iter := s.session.Query(`SELECT log_id, created_at FROM audit_logs`).WithContext(ctx).Iter()
	var (
		id        gocql.UUID
		createdAt time.Time
		toDelete  []gocql.UUID
	)
	for iter.Scan(&id, &createdAt) {
		if createdAt.Before(cutoff) {
			toDelete = append(toDelete, id)
		}
	}
	if err := iter.Close(); err != nil {
		return 0, fmt.Errorf("erreur scan purge: %w", err)
	}
	for _, id := range toDelete {
		if err := s.session.Query(`DELETE FROM audit_logs WHERE log_id = ?`, id).WithContext(ctx).Exec(); err != nil {
			return 0, fmt.Errorf("erreur suppression log %s: %w", id, err)
		}
	}
	return len(toDelete), nil
}
