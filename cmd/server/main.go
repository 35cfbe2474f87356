package main

import (
	"context"
	"log"
	"os"
	"strings"
	"veltra_back_end/internal/config"
	"veltra_back_end/internal/database"
	"veltra_back_end/internal/routes"
	"veltra_back_end/internal/store"
	"veltra_back_end/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()

	if strings.EqualFold(os.Getenv("DB_DRIVER"), "memory") {
		// Mode développement : tout en mémoire, aucune base externe requise
		store.UseMemory()
		log.Println("⚠️  Mode mémoire activé — ScyllaDB, Redis et MinIO désactivés")
	} else {
		database.ConnectDatabases()

		// ✅ Initialiser les prepared statements pour améliorer les performances
		database.InitPreparedStatements()

		// ✅ Pré-chauffer le cache Redis
		warmupRedisCache()
	}

	// Brancher le journal d'audit sur le store actif
	if logs, err := store.Logs(); err != nil {
		log.Println("⚠️ Journal d'audit indisponible:", err)
	} else {
		utils.SetAuditStore(logs)
	}

	r := gin.Default()
	r.Use(corsMiddleware())
	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Veltra lancé sur le port", port)
	r.Run(":" + port)
}

func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		cfg.AllowOrigins = []string{"http://localhost:5173"}
	}
	cfg.AllowCredentials = true
	cfg.AddAllowHeaders("Authorization")
	return cors.New(cfg)
}

// warmupRedisCache pré-chauffe le cache Redis pour éviter la latence du premier appel
func warmupRedisCache() {
	ctx := context.Background()
	if err := database.Redis.Ping(ctx).Err(); err == nil {
		log.Println("✅ Cache Redis pré-chauffé")
	}
}
