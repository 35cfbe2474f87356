package store

import (
	"sync"

	"veltra_back_end/internal/database"
)

var (
	providerMu       sync.Mutex
	productsOverride ProductStore
	logsOverride     AuditLogStore
)

// UseMemory remplace les stores ScyllaDB par des stores en mémoire
// (mode DB_DRIVER=memory, sans base externe)
func UseMemory() {
	providerMu.Lock()
	defer providerMu.Unlock()
	productsOverride = NewMemoryProductStore()
	logsOverride = NewMemoryAuditLogStore()
}

// Products retourne le store de produits actif
func Products() (ProductStore, error) {
	providerMu.Lock()
	if productsOverride != nil {
		defer providerMu.Unlock()
		return productsOverride, nil
	}
	providerMu.Unlock()

	session, err := database.GetCatalogSession()
	if err != nil {
		return nil, err
	}
	return NewScyllaProductStore(session), nil
}

// Logs retourne le store du journal d'audit actif
func Logs() (AuditLogStore, error) {
	providerMu.Lock()
	if logsOverride != nil {
		defer providerMu.Unlock()
		return logsOverride, nil
	}
	providerMu.Unlock()

	session, err := database.GetLogsSession()
	if err != nil {
		return nil, err
	}
	return NewScyllaAuditLogStore(session), nil
}
