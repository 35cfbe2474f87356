package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"veltra_back_end/internal/database"
	"veltra_back_end/internal/models"
)

const (
	ProductCacheTTL = 10 * time.Minute
	StatsCacheTTL   = 1 * time.Minute

	ProductListKey = "products:all"
	StatsKey       = "logs:stats:overview"
)

// GetProductList récupère le listing produits depuis Redis
func GetProductList(ctx context.Context) ([]models.Product, bool) {
	if database.Redis == nil {
		return nil, false
	}
	val, err := database.Redis.Get(ctx, ProductListKey).Result()
	if err != nil || val == "" {
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(val), &products); err != nil {
		return nil, false
	}
	return products, true
}

// SetProductList met le listing produits en cache
func SetProductList(ctx context.Context, products []models.Product) {
	if database.Redis == nil {
		return
	}
	if data, err := json.Marshal(products); err == nil {
		database.Redis.Set(ctx, ProductListKey, data, ProductCacheTTL)
	}
}

// InvalidateProducts purge le cache produits après une écriture
func InvalidateProducts(ctx context.Context) {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(ctx, ProductListKey)
}

// --- Tokens de réinitialisation de mot de passe ---

// StoreResetToken stocke un token de réinitialisation pour un utilisateur
func StoreResetToken(ctx context.Context, token, userID string, duration time.Duration) error {
	if database.Redis == nil {
		return fmt.Errorf("Redis non initialisé")
	}
	key := fmt.Sprintf("reset:%s", token)
	return database.Redis.Set(ctx, key, userID, duration).Err()
}

// GetResetToken retourne l'utilisateur associé à un token de réinitialisation
func GetResetToken(ctx context.Context, token string) (string, error) {
	if database.Redis == nil {
		return "", fmt.Errorf("Redis non initialisé")
	}
	key := fmt.Sprintf("reset:%s", token)
	return database.Redis.Get(ctx, key).Result()
}

// DeleteResetToken invalide un token après usage
func DeleteResetToken(ctx context.Context, token string) {
	if database.Redis == nil {
		return
	}
	key := fmt.Sprintf("reset:%s", token)
	database.Redis.Del(ctx, key)
}
